package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

type sessionController interface {
	NewGame(ctx context.Context, lineup entity.Lineup) (bool, error)
	SelectCell(ctx context.Context, cell entity.Coord) (bool, error)
	SelectQuadrant(ctx context.Context, quadrant entity.Quadrant) (bool, error)
	Rotate(ctx context.Context, direction entity.Direction) (bool, error)
	SetEngineConfig(ctx context.Context, side entity.Side, cfg entity.EngineConfig) error
	ResumeEngine(ctx context.Context) (bool, error)
	Snapshot(ctx context.Context) (entity.SessionView, error)
}

type handlerFunc func(ctx context.Context, c *client, payload json.RawMessage) error

type Server struct {
	logger     *slog.Logger
	hub        *Hub
	controller sessionController
	upgrader   websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, hub *Hub, controller sessionController) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		hub:        hub,
		controller: controller,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["cell:select"] = server.handleSelectCell
	server.handlers["quadrant:select"] = server.handleSelectQuadrant
	server.handlers["rotate"] = server.handleRotate
	server.handlers["engine:set"] = server.handleSetEngine
	server.handlers["resume"] = server.handleResume

	return server
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and processes its messages until the peer or the hub goes away.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(that.logger, conn)
	if !that.hub.register(c) {
		_ = conn.Close()
		return
	}

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	go func() {
		defer conn.Close()
		if err := c.writeLoop(); err != nil {
			log.Debug("write loop stopped", "error", err)
		}
	}()

	that.handleMessages(ctx, c)

	that.hub.unregister(c)
	log.Info("WebSocket connection closed", "remote", r.RemoteAddr)
}

func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("failed to read message", "error", err)
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			that.sendError(c, "", "malformed message")
			continue
		}

		handler, ok := that.handlers[msg.Type]
		if !ok {
			that.sendError(c, msg.Type, "unknown action")
			continue
		}

		if err = handler(ctx, c, msg.Payload); err != nil {
			log.Error("error processing message", "type", msg.Type, "error", err)
			that.sendError(c, msg.Type, err.Error())
		}
	}
}
