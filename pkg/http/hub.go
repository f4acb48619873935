package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/analysis"
)

// AnalysisEvent is a live update pushed to feed subscribers whenever an
// interview finishes analyzing
type AnalysisEvent struct {
	Source           string         `json:"source"`
	Segments         int            `json:"segments"`
	Gaps             int            `json:"gaps"`
	MeanSentiment    float64        `json:"mean_sentiment"`
	SymptomFrequency map[string]int `json:"symptom_frequency"`
	ThemeFrequency   map[string]int `json:"theme_frequency"`
	Warnings         int            `json:"warnings"`
	Timestamp        time.Time      `json:"timestamp"`
}

// NewAnalysisEvent builds the feed event for a finished record
func NewAnalysisEvent(record *analysis.AnalysisRecord) *AnalysisEvent {
	return &AnalysisEvent{
		Source:           record.Source,
		Segments:         record.SegmentCount(),
		Gaps:             len(record.Gaps),
		MeanSentiment:    record.MeanSentiment,
		SymptomFrequency: record.SymptomFrequency,
		ThemeFrequency:   record.ThemeFrequency,
		Warnings:         len(record.Warnings),
		Timestamp:        time.Now().UTC(),
	}
}

// Client represents a connected WebSocket client
type Client struct {
	hub    *AnalysisHub
	conn   *websocket.Conn
	send   chan []byte
	logger *logrus.Logger
	source string // If client subscribes to a specific interview source
}

// AnalysisHub manages WebSocket clients and broadcasts analysis events
type AnalysisHub struct {
	logger            *logrus.Logger
	clients           map[*Client]bool
	sourceSubscribers map[string]map[*Client]bool
	broadcast         chan *AnalysisEvent
	register          chan *Client
	unregister        chan *Client
	mutex             sync.RWMutex
}

// WebSocketUpgrader configures the WebSocket connection
var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all connections
		return true
	},
}

// NewAnalysisHub creates a new analysis feed hub
func NewAnalysisHub(logger *logrus.Logger) *AnalysisHub {
	return &AnalysisHub{
		logger:            logger,
		clients:           make(map[*Client]bool),
		sourceSubscribers: make(map[string]map[*Client]bool),
		broadcast:         make(chan *AnalysisEvent),
		register:          make(chan *Client),
		unregister:        make(chan *Client),
	}
}

// Run starts the analysis hub
func (h *AnalysisHub) Run(ctx context.Context) {
	h.logger.Info("Starting WebSocket analysis hub")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Shutting down WebSocket analysis hub")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true

			// If client subscribes to a specific source
			if client.source != "" {
				if _, exists := h.sourceSubscribers[client.source]; !exists {
					h.sourceSubscribers[client.source] = make(map[*Client]bool)
				}
				h.sourceSubscribers[client.source][client] = true
				h.logger.WithField("source", client.source).Info("Client subscribed to specific interview")
			}

			h.mutex.Unlock()
			h.logger.Info("Client connected to WebSocket")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				if client.source != "" {
					if subscribers, exists := h.sourceSubscribers[client.source]; exists {
						delete(subscribers, client)
						if len(subscribers) == 0 {
							delete(h.sourceSubscribers, client.source)
						}
					}
				}

				h.logger.Info("Client disconnected from WebSocket")
			}
			h.mutex.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.WithError(err).Error("Failed to marshal analysis event")
				continue
			}

			h.mutex.RLock()

			// Send to subscribers of this specific source
			if subscribers, exists := h.sourceSubscribers[event.Source]; exists && len(subscribers) > 0 {
				for client := range subscribers {
					select {
					case client.send <- data:
					default:
						close(client.send)
						delete(h.clients, client)
						delete(subscribers, client)
					}
				}
			}

			// Also broadcast to clients that want every interview
			for client := range h.clients {
				if client.source != "" {
					continue
				}

				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}

			h.mutex.RUnlock()
		}
	}
}

// BroadcastRecord pushes a finished record to all relevant clients
func (h *AnalysisHub) BroadcastRecord(record *analysis.AnalysisRecord) {
	h.broadcast <- NewAnalysisEvent(record)
}

// ServeWs handles WebSocket requests from clients
func (h *AnalysisHub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade connection to WebSocket")
		return
	}

	// Get source from query parameter (optional)
	source := r.URL.Query().Get("source")

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: h.logger,
		source: source,
	}

	client.hub.register <- client

	go client.writePump()
}

// ClientCount returns the number of connected clients
func (h *AnalysisHub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(60 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// Send ping to keep connection alive
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
