package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/photogallery/server/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
	queueSize      = 256
)

// Control message types; change events use the ChangeType values
const (
	WSTypeError       = "error"
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
)

// TopicGallery receives every change event
const TopicGallery = "gallery"

var ErrInvalidTopic = errors.New("topic must be gallery, album:{id} or photo:{id}")

// AlbumTopic names the topic for changes touching one album
func AlbumTopic(albumID int64) string {
	return "album:" + strconv.FormatInt(albumID, 10)
}

// PhotoTopic names the topic for changes touching one photo
func PhotoTopic(photoID int64) string {
	return "photo:" + strconv.FormatInt(photoID, 10)
}

// ValidateTopic accepts gallery and album:{id} / photo:{id} with a positive id
func ValidateTopic(topic string) error {
	if topic == TopicGallery {
		return nil
	}
	kind, id, ok := strings.Cut(topic, ":")
	if !ok || (kind != "album" && kind != "photo") {
		return ErrInvalidTopic
	}
	if n, err := strconv.ParseInt(id, 10, 64); err != nil || n <= 0 {
		return ErrInvalidTopic
	}
	return nil
}

// WSMessage is the envelope of every frame sent or received
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSClient is one connected view. Its send channel is owned by the hub and
// closed when the client is dropped.
type WSClient struct {
	ID     string
	Conn   *websocket.Conn
	hub    *WebSocketHub
	send   chan []byte
	topics map[string]struct{}
	once   sync.Once
}

type outbound struct {
	topic string
	data  []byte
}

// WebSocketHub fans gallery change events out to subscribed views.
// Membership is guarded by mu; Run drains the outbound queue so that
// publishers never block on slow connections.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
	topics  map[string]map[*WSClient]struct{}
	closed  bool

	queue  chan outbound
	logger *observability.Logger
}

// NewWebSocketHub creates a new WebSocket hub
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients: make(map[*WSClient]struct{}),
		topics:  make(map[string]map[*WSClient]struct{}),
		queue:   make(chan outbound, queueSize),
		logger:  observability.WithField("component", "websocket_hub"),
	}
}

// NewClient wraps conn for this hub; call Register before the pumps
func (h *WebSocketHub) NewClient(id string, conn *websocket.Conn) *WSClient {
	return &WSClient{
		ID:     id,
		Conn:   conn,
		hub:    h,
		send:   make(chan []byte, sendBuffer),
		topics: make(map[string]struct{}),
	}
}

// Run delivers queued messages until ctx is cancelled, then disconnects
// every client.
func (h *WebSocketHub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.queue:
			h.deliver(msg)
		}
	}
}

func (h *WebSocketHub) deliver(msg outbound) {
	var slow []*WSClient

	h.mu.RLock()
	for client := range h.topics[msg.topic] {
		select {
		case client.send <- msg.data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.WithField("client_id", client.ID).Warn("WebSocket client too slow, disconnecting")
		client.Close()
	}
}

func (h *WebSocketHub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// Register adds a client. A hub that has stopped closes the connection.
func (h *WebSocketHub) Register(client *WSClient) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(client.send)
		return
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("client_id", client.ID).Debug("WebSocket client connected")
}

// Unregister drops a client and its subscriptions
func (h *WebSocketHub) Unregister(client *WSClient) {
	h.mu.Lock()
	removed := h.removeLocked(client)
	h.mu.Unlock()

	if removed {
		h.logger.WithField("client_id", client.ID).Debug("WebSocket client disconnected")
	}
}

func (h *WebSocketHub) removeLocked(client *WSClient) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	for topic := range client.topics {
		h.dropTopicLocked(client, topic)
	}
	close(client.send)
	return true
}

func (h *WebSocketHub) dropTopicLocked(client *WSClient, topic string) {
	delete(client.topics, topic)
	if members, ok := h.topics[topic]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Subscribe adds a registered client to topic
func (h *WebSocketHub) Subscribe(client *WSClient, topic string) error {
	if err := ValidateTopic(topic); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return nil
	}
	client.topics[topic] = struct{}{}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*WSClient]struct{})
	}
	h.topics[topic][client] = struct{}{}
	return nil
}

// Unsubscribe removes a client from topic
func (h *WebSocketHub) Unsubscribe(client *WSClient, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropTopicLocked(client, topic)
}

// BroadcastToTopic queues msg for every subscriber of topic. When the queue
// is full the message is dropped rather than blocking the caller.
func (h *WebSocketHub) BroadcastToTopic(topic string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}

	select {
	case h.queue <- outbound{topic: topic, data: data}:
	default:
		h.logger.WithField("topic", topic).Warn("WebSocket broadcast queue full, dropping message")
	}
}

// PublishChange forwards a store change to the gallery topic and to the
// topics of the affected album and photo.
func (h *WebSocketHub) PublishChange(ev ChangeEvent) {
	msg := WSMessage{Type: string(ev.Type), Payload: ev}

	h.BroadcastToTopic(TopicGallery, msg)
	if ev.AlbumID != 0 {
		h.BroadcastToTopic(AlbumTopic(ev.AlbumID), msg)
	}
	if ev.PhotoID != 0 {
		h.BroadcastToTopic(PhotoTopic(ev.PhotoID), msg)
	}
}

// GetClientCount returns the number of connected clients
func (h *WebSocketHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetTopicSubscriberCount returns the number of subscribers for a topic
func (h *WebSocketHub) GetTopicSubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Reply queues a message for this client only. It is dropped if the client
// is gone or its buffer is full.
func (c *WSClient) Reply(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Close unregisters the client and closes its connection
func (c *WSClient) Close() {
	c.once.Do(func() {
		c.hub.Unregister(c)
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// WritePump writes queued messages and keepalive pings until the hub
// drops the client or a write fails.
func (c *WSClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump hands incoming frames to onMessage until the connection fails.
// A nil onMessage discards them.
func (c *WSClient) ReadPump(onMessage func(client *WSClient, messageType int, data []byte)) {
	defer c.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithField("client_id", c.ID).Warnf("WebSocket error: %v", err)
			}
			return
		}
		if onMessage != nil {
			onMessage(c, messageType, message)
		}
	}
}
