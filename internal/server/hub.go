package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ChatMessage is the wire shape shared with chat clients. Type is "message",
// "image", "notification", or "history".
type ChatMessage struct {
	Type      string        `json:"type"`
	Text      string        `json:"text,omitempty"`
	Image     string        `json:"image,omitempty"` // base64 data URL
	User      string        `json:"user,omitempty"`
	Status    string        `json:"status,omitempty"`
	Timestamp string        `json:"timestamp,omitempty"`
	Messages  []ChatMessage `json:"messages,omitempty"` // history replay
}

// client wraps a connection with a write lock. gorilla/websocket allows only
// one concurrent writer per connection, and broadcasts arrive from every read
// loop plus the background processing goroutines.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msg ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub tracks connected chat clients, replays bounded history to newcomers,
// and broadcasts messages to everyone. Processing of message content is the
// caller's business; the hub only moves frames.
type Hub struct {
	logger       *slog.Logger
	historyLimit int

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
	history []ChatMessage
}

func NewHub(historyLimit int, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &Hub{
		logger:       logger,
		historyLimit: historyLimit,
		clients:      make(map[*websocket.Conn]*client),
	}
}

// Register adds a connection and replays history to it.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[conn] = c
	replay := make([]ChatMessage, len(h.history))
	copy(replay, h.history)
	h.mu.Unlock()

	if len(replay) > 0 {
		_ = c.write(ChatMessage{Type: "history", Messages: replay})
	}
}

// Unregister drops a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Broadcast appends msg to history and fans it out. Write failures drop the
// offending client; one stuck connection must not stall the room.
func (h *Hub) Broadcast(msg ChatMessage) {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().Format("15:04")
	}

	h.mu.Lock()
	h.history = append(h.history, msg)
	if len(h.history) > h.historyLimit {
		h.history = h.history[len(h.history)-h.historyLimit:]
	}
	conns := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.write(msg); err != nil {
			h.logger.Warn("ws write failed, dropping client", "error", err)
			h.Unregister(c.conn)
		}
	}
}

// Notify broadcasts a processing outcome to the room.
func (h *Hub) Notify(ctx context.Context, text, status string) {
	h.Broadcast(ChatMessage{
		Type:   "notification",
		Text:   text,
		Status: status,
	})
}
