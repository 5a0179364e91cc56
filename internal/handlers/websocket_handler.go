package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The gallery is a local single-profile app
		return true
	},
}

// WebSocketHandler streams gallery change events to views
type WebSocketHandler struct {
	hub *services.WebSocketHub
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *services.WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleConnection upgrades HTTP to WebSocket and manages the connection.
// New connections are subscribed to the gallery topic; clients may add
// album:{id} or photo:{id} topics with a subscribe message.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.WithContext(r.Context()).Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	client := h.hub.NewClient(uuid.New().String(), conn)
	h.hub.Register(client)
	h.hub.Subscribe(client, services.TopicGallery)

	// Start the write pump in a goroutine
	go client.WritePump()

	// Run the read pump (blocks until connection closes)
	client.ReadPump(h.handleMessage)
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(client *services.WSClient, messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var msg services.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		client.Reply(services.WSMessage{Type: services.WSTypeError, Payload: "invalid message"})
		return
	}

	switch msg.Type {
	case services.WSTypeSubscribe:
		if err := h.hub.Subscribe(client, topicFromPayload(msg.Payload)); err != nil {
			client.Reply(services.WSMessage{Type: services.WSTypeError, Payload: err.Error()})
		}

	case services.WSTypeUnsubscribe:
		h.hub.Unsubscribe(client, topicFromPayload(msg.Payload))

	case services.WSTypePing:
		client.Reply(services.WSMessage{Type: services.WSTypePong})

	default:
		client.Reply(services.WSMessage{Type: services.WSTypeError, Payload: "unknown message type: " + msg.Type})
	}
}

// topicFromPayload accepts either "topic" or {"topic": "..."}
func topicFromPayload(payload interface{}) string {
	switch p := payload.(type) {
	case string:
		return p
	case map[string]interface{}:
		if topic, ok := p["topic"].(string); ok {
			return topic
		}
	}
	return ""
}
