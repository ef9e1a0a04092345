package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

const (
	messageSession  = "session"
	messageProgress = "progress"
	messageAck      = "ack"
	messageError    = "error"
	messagePing     = "ping"
)

const broadcastBuffer = 64

// Message is the envelope of every frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans session and progress updates out to every connected client.
type Hub struct {
	logger *slog.Logger

	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan Message
	closed    bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:    logger.With("component", "hub"),
		clients:   make(map[*client]struct{}),
		broadcast: make(chan Message, broadcastBuffer),
	}
}

// Run delivers broadcasts until ctx is done, then disconnects every client.
func (that *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			that.mu.Lock()
			for c := range that.clients {
				delete(that.clients, c)
				close(c.send)
			}
			that.closed = true
			that.mu.Unlock()
			return
		case msg := <-that.broadcast:
			that.mu.Lock()
			for c := range that.clients {
				c.sendMessage(msg)
			}
			that.mu.Unlock()
		}
	}
}

func (that *Hub) PublishSession(view entity.SessionView) {
	that.publish(messageSession, view)
}

func (that *Hub) PublishProgress(view entity.ProgressView) {
	that.publish(messageProgress, view)
}

func (that *Hub) publish(kind string, payload any) {
	log := that.logger.With("method", "publish")

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal payload", "type", kind, "error", err)
		return
	}

	select {
	case that.broadcast <- Message{Type: kind, Payload: data}:
	default:
		log.Warn("broadcast queue full, update dropped", "type", kind)
	}
}

// reply sends msg to c alone, if c is still connected.
func (that *Hub) reply(c *client, msg Message) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[c]; ok {
		c.sendMessage(msg)
	}
}

func (that *Hub) register(c *client) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	that.clients[c] = struct{}{}
	return true
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[c]; ok {
		delete(that.clients, c)
		close(c.send)
	}
}

func (that *Hub) count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.clients)
}
