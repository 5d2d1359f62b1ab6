package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes to the conn
}

func (c *client) sendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks connected clients and their per-video subscriptions, and
// broadcasts processing progress to subscribers.
type Hub struct {
	mu          sync.Mutex
	clients     map[string]*client
	subscribers map[string]map[string]struct{} // videoID -> clientIDs
	logger      zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*client),
		subscribers: make(map[string]map[string]struct{}),
		logger:      logger.With().Str("component", "ws").Logger(),
	}
}

// wsMessage is the envelope for both directions.
type wsMessage struct {
	Type    string `json:"type"`
	VideoID string `json:"video_id,omitempty"`
}

// Serve upgrades the connection and runs the subscribe/unsubscribe/ping
// loop until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, clientID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[clientID] = c
	h.mu.Unlock()
	defer h.disconnect(clientID, conn)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "subscribe":
			if msg.VideoID != "" {
				h.subscribe(clientID, msg.VideoID)
				c.sendJSON(map[string]any{"type": "subscribed", "video_id": msg.VideoID})
			}
		case "unsubscribe":
			if msg.VideoID != "" {
				h.unsubscribe(clientID, msg.VideoID)
				c.sendJSON(map[string]any{"type": "unsubscribed", "video_id": msg.VideoID})
			}
		case "ping":
			c.sendJSON(map[string]any{"type": "pong"})
		}
	}
}

func (h *Hub) disconnect(clientID string, conn *websocket.Conn) {
	conn.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, clientID)
	for videoID, subs := range h.subscribers {
		delete(subs, clientID)
		if len(subs) == 0 {
			delete(h.subscribers, videoID)
		}
	}
}

func (h *Hub) subscribe(clientID, videoID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[videoID] == nil {
		h.subscribers[videoID] = make(map[string]struct{})
	}
	h.subscribers[videoID][clientID] = struct{}{}
}

func (h *Hub) unsubscribe(clientID, videoID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.subscribers[videoID]; subs != nil {
		delete(subs, clientID)
		if len(subs) == 0 {
			delete(h.subscribers, videoID)
		}
	}
}

func (h *Hub) broadcast(videoID string, payload map[string]any) {
	h.mu.Lock()
	targets := make([]*client, 0)
	for clientID := range h.subscribers[videoID] {
		if c, ok := h.clients[clientID]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.sendJSON(payload); err != nil {
			h.logger.Debug().Err(err).Msg("broadcast write failed")
		}
	}
}

// NotifyProgress pushes a status/progress update to a video's subscribers.
func (h *Hub) NotifyProgress(videoID, status string, progress int, message string) {
	h.broadcast(videoID, map[string]any{
		"type":     "progress",
		"video_id": videoID,
		"status":   status,
		"progress": progress,
		"message":  message,
	})
}

func (h *Hub) NotifyCompleted(videoID string, highlightsCount int) {
	h.broadcast(videoID, map[string]any{
		"type":             "completed",
		"video_id":         videoID,
		"highlights_count": highlightsCount,
	})
}

func (h *Hub) NotifyError(videoID, errorMessage string) {
	h.broadcast(videoID, map[string]any{
		"type":     "error",
		"video_id": videoID,
		"error":    errorMessage,
	})
}
