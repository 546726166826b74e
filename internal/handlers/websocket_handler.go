package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/easygallery/server/internal/middleware"
	"github.com/easygallery/server/internal/observability"
	"github.com/easygallery/server/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now - can be restricted in production
		return true
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub *services.WebSocketHub
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *services.WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleConnection upgrades HTTP to WebSocket and manages the connection.
// The route sits behind SessionAuth, so the session user is already on
// the request context. Clients are bound to their user so sync progress
// and selection events reach them, and admins may join the admin topic.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	clientID := uuid.New().String()
	client := h.hub.NewClient(clientID, conn)

	if user != nil {
		h.hub.SetUserID(client, user.ID)
		h.hub.Subscribe(client, services.TopicGallery+":"+user.ID)
		if user.IsAdmin {
			h.hub.Subscribe(client, services.TopicSync)
			h.hub.Subscribe(client, services.TopicAdmin)
		}
	}

	h.hub.Register(client)

	// Start the write pump in a goroutine
	go client.WritePump()

	isAdmin := user != nil && user.IsAdmin

	// Run the read pump (blocks until connection closes)
	client.ReadPump(func(c *services.WSClient, messageType int, data []byte) {
		h.handleMessage(c, messageType, data, isAdmin)
	})
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(client *services.WSClient, messageType int, data []byte, isAdmin bool) {
	if messageType != websocket.TextMessage {
		return
	}

	var msg services.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		observability.Warnf("Invalid WebSocket message: %v", err)
		return
	}

	switch msg.Type {
	case services.WSTypeSubscribe:
		if topic := topicFromPayload(msg.Payload); topic != "" && topicAllowed(topic, isAdmin) {
			h.hub.Subscribe(client, topic)
		}

	case services.WSTypeUnsubscribe:
		if topic := topicFromPayload(msg.Payload); topic != "" {
			h.hub.Unsubscribe(client, topic)
		}

	case services.WSTypePing:
		response := services.WSMessage{
			Type:    services.WSTypePong,
			Payload: nil,
		}
		if data, err := json.Marshal(response); err == nil {
			client.Send <- data
		}

	default:
		observability.Debugf("Unknown WebSocket message type: %s", msg.Type)
	}
}

// topicAllowed restricts the sync and admin topics to admin sessions.
// A client's remaining topics are its own business.
func topicAllowed(topic string, isAdmin bool) bool {
	if topic == services.TopicSync || topic == services.TopicAdmin {
		return isAdmin
	}
	return true
}

func topicFromPayload(payload interface{}) string {
	if topic, ok := payload.(string); ok {
		return topic
	}
	if m, ok := payload.(map[string]interface{}); ok {
		if topic, ok := m["topic"].(string); ok {
			return topic
		}
	}
	return ""
}

// GetHub returns the WebSocket hub (for other services to send notifications)
func (h *WebSocketHandler) GetHub() *services.WebSocketHub {
	return h.hub
}
