package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

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

type sessionReader interface {
	GetByID(ctx context.Context, id string) (*entity.Session, error)
}

type resultLister interface {
	List(ctx context.Context, limit int) ([]entity.Result, error)
}

type Server struct {
	logger *slog.Logger
	echo   *echo.Echo
	srv    *http.Server
}

func New(logger *slog.Logger, controller sessionController, sessions sessionReader, results resultLister) *Server {
	logger = logger.With("component", "rest")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "requestID", v.RequestID}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	}))

	handler := newSessionHandler(logger, controller, sessions, results)

	e.GET("/ping", ping)

	e.GET("/session", handler.Snapshot)
	e.POST("/session", handler.NewGame)
	e.PUT("/session/engines/:side", handler.SetEngineConfig)
	e.POST("/session/resume", handler.ResumeEngine)
	e.POST("/session/cell", handler.SelectCell)
	e.POST("/session/quadrant", handler.SelectQuadrant)
	e.POST("/session/rotate", handler.Rotate)

	e.GET("/sessions/:id", handler.GetSession)
	e.GET("/results", handler.ListResults)

	return &Server{
		logger: logger,
		echo:   e,
		srv: &http.Server{
			Handler:      e,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// Start - serves the control API until Shutdown is called.
func (that *Server) Start(port string) error {
	that.srv.Addr = ":" + port

	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func ping(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "pong")
}
