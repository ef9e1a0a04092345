package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 16
	idlePing     = 30 * time.Second
	writeTimeout = 10 * time.Second
)

type client struct {
	logger *slog.Logger
	conn   *websocket.Conn
	send   chan []byte
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *client {
	return &client{
		logger: logger.With("component", "ws-client", "remote", remoteAddr(conn)),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

func remoteAddr(conn *websocket.Conn) string {
	if conn == nil {
		return ""
	}

	return conn.RemoteAddr().String()
}

// sendMessage queues msg, dropping it if the client is not keeping up. Callers hold the hub lock.
func (that *client) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		that.logger.Error("failed to marshal message", "type", msg.Type, "error", err)
		return
	}

	select {
	case that.send <- data:
	default:
		that.logger.Warn("client send buffer full, message dropped", "type", msg.Type)
	}
}

// writeLoop drains send to the connection and pings an idle peer. It returns when send is closed.
func (that *client) writeLoop() error {
	ticker := time.NewTicker(idlePing)
	defer ticker.Stop()

	lastWrite := time.Now()
	ping, err := json.Marshal(Message{Type: messagePing})
	if err != nil {
		return fmt.Errorf("failed to marshal ping: %w", err)
	}

	for {
		select {
		case data, ok := <-that.send:
			if !ok {
				_ = that.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
				return nil
			}
			if err = that.write(data); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePing {
				continue
			}
			if err = that.write(ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func (that *client) write(data []byte) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
