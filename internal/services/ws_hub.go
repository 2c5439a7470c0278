package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsSendBuffer = 256

	// WSPongWait is how long a viewer may stay silent before its
	// connection is dropped. Pings go out more often than that.
	WSPongWait   = 60 * time.Second
	wsPingPeriod = WSPongWait * 9 / 10
)

var errSendQueueFull = errors.New("send queue full")

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type        string `json:"type"`
	PhotoID     int64  `json:"photo_id,omitempty"`
	LikeCounter *int   `json:"like_counter,omitempty"`
	Message     string `json:"message,omitempty"`
}

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}
}

// enqueue never blocks. It reports false when the client is gone or
// too slow to keep up.
func (c *wsClient) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WSHub manages WebSocket connections of gallery viewers
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
	}
}

// Register adds a connection, starts its writer and returns its id
func (h *WSHub) Register(conn *websocket.Conn) string {
	id := uuid.NewString()
	client := newWSClient(conn)

	h.mu.Lock()
	h.connections[id] = client
	h.mu.Unlock()

	go h.writePump(id, client)

	log.Info().Str("conn_id", id).Msg("WebSocket connection registered")
	return id
}

// Unregister removes a connection. Its writer sends a close frame and
// closes the socket.
func (h *WSHub) Unregister(id string) {
	h.mu.Lock()
	client, exists := h.connections[id]
	delete(h.connections, id)
	h.mu.Unlock()

	if exists {
		client.close()
		log.Info().Str("conn_id", id).Msg("WebSocket connection unregistered")
	}
}

// Count returns the number of open connections
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SendTo queues a message for one connection
func (h *WSHub) SendTo(id string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[id]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection %s is not registered", id)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if !client.enqueue(data) {
		h.Unregister(id)
		return fmt.Errorf("failed to send message: %w", errSendQueueFull)
	}
	return nil
}

// Broadcast queues a message for every connection and returns without
// waiting for delivery. Connections whose queue is full are dropped.
func (h *WSHub) Broadcast(message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("type", message.Type).Msg("Failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	clients := make(map[string]*wsClient, len(h.connections))
	for id, client := range h.connections {
		clients[id] = client
	}
	h.mu.RUnlock()

	for id, client := range clients {
		if !client.enqueue(data) {
			log.Warn().Str("conn_id", id).Msg("Dropping slow WebSocket viewer")
			h.Unregister(id)
		}
	}
}

// NotifyLikeChanged tells every viewer the new like counter of a photo
func (h *WSHub) NotifyLikeChanged(photoID int64, likeCounter int) {
	h.Broadcast(WSMessage{
		Type:        "like_updated",
		PhotoID:     photoID,
		LikeCounter: &likeCounter,
	})
}

func (h *WSHub) writePump(id string, client *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("conn_id", id).Msg("Failed to write WebSocket message")
				h.Unregister(id)
				return
			}

		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unregister(id)
				return
			}
		}
	}
}
