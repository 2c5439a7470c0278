package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"photo-gallery-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams like counter updates to gallery viewers
type WebSocketHandler struct {
	hub      *services.WSHub
	pongWait time.Duration
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, pongWait: services.WSPongWait}
}

// HandleWebSocket handles GET /ws. Viewers may be anonymous; the
// connection only receives broadcasts and answers pings.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	connID := h.hub.Register(conn)
	defer h.hub.Unregister(connID)

	// silent peers time out; the hub's ping keeps live ones going
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("conn_id", connID).Msg("WebSocket error")
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.reply(connID, services.WSMessage{Type: "error", Message: "Invalid message format"})
			continue
		}

		switch msg.Type {
		case "ping":
			h.reply(connID, services.WSMessage{Type: "pong"})
		default:
			h.reply(connID, services.WSMessage{Type: "error", Message: "Unknown message type"})
		}
	}
}

func (h *WebSocketHandler) reply(connID string, msg services.WSMessage) {
	if err := h.hub.SendTo(connID, msg); err != nil {
		log.Error().Err(err).Str("conn_id", connID).Str("type", msg.Type).Msg("Failed to reply")
	}
}
