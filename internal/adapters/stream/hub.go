// Package stream pushes freshly stored signal bundles to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/unisignals/internal/domain/signals"
	"github.com/okian/unisignals/internal/domain/sport"
	"github.com/okian/unisignals/pkg/logger"
	"github.com/okian/unisignals/pkg/metrics"
)

const (
	defaultBuffer    = 64
	defaultHeartbeat = 30 * time.Second
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 512
	broadcastBacklog = 256
)

// EventType names a stream message.
type EventType string

const (
	EventSignals   EventType = "signals"
	EventHeartbeat EventType = "heartbeat"
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type      EventType  `json:"type"`
	MatchID   string     `json:"match_id,omitempty"`
	Sport     sport.Type `json:"sport,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Data      any        `json:"data,omitempty"`
}

// Hub manages websocket subscribers and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	broadcast  chan Event
	register   chan *client
	unregister chan *client
	done       chan struct{}

	buffer    int
	heartbeat time.Duration
	upgrader  websocket.Upgrader
	logger    logger.Logger
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	subMu  sync.RWMutex
	sports map[sport.Type]bool // empty means every sport
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan Event, broadcastBacklog),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		buffer:     defaultBuffer,
		heartbeat:  defaultHeartbeat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS layer in front of the API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.Get().Named("stream"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run delivers events until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.UpdateStreamClients(n)
			h.logger.Debug(ctx, "client connected", logger.Int("clients", n))
		case c := <-h.unregister:
			h.remove(c)
		case e := <-h.broadcast:
			h.deliver(ctx, e)
		case <-heartbeat.C:
			h.deliver(ctx, Event{Type: EventHeartbeat, Timestamp: time.Now(), Data: map[string]int{"clients": h.ClientCount()}})
		}
	}
}

func (h *Hub) closeAll() {
	close(h.done)
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	metrics.UpdateStreamClients(0)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateStreamClients(n)
}

func (h *Hub) deliver(ctx context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error(ctx, "failed to marshal event", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if e.Type == EventSignals && !c.wants(e.Sport) {
			continue
		}
		select {
		case c.send <- data:
			metrics.RecordStreamMessage()
		default:
			// Buffer full: disconnect the subscriber.
			delete(h.clients, c)
			close(c.send)
			metrics.RecordStreamDropped()
		}
	}
	metrics.UpdateStreamClients(len(h.clients))
}

// Broadcast queues an event for delivery. Events are dropped when the
// backlog is full or the hub has stopped.
func (h *Hub) Broadcast(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case <-h.done:
	case h.broadcast <- e:
	default:
		metrics.RecordStreamDropped()
	}
}

// Publish broadcasts a stored bundle to subscribers of its sport.
func (h *Hub) Publish(matchID string, s signals.UniversalSignals) {
	h.Broadcast(Event{Type: EventSignals, MatchID: matchID, Sport: s.Sport, Data: s})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers a subscriber. The optional
// "sport" query parameter takes a comma-separated list of sport names.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.buffer),
		sports: map[sport.Type]bool{},
	}
	c.subscribe(strings.Split(r.URL.Query().Get("sport"), ","))

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) subscribe(names []string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			c.sports[sport.Classify(n)] = true
		}
	}
}

func (c *client) unsubscribe(names []string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, n := range names {
		delete(c.sports, sport.Classify(n))
	}
}

func (c *client) wants(t sport.Type) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.sports) == 0 || c.sports[t]
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleMessage(message)
	}
}

// handleMessage applies {"type":"subscribe"|"unsubscribe","sports":[...]}.
func (c *client) handleMessage(message []byte) {
	var msg struct {
		Type   string   `json:"type"`
		Sports []string `json:"sports"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	switch msg.Type {
	case "subscribe":
		c.subscribe(msg.Sports)
	case "unsubscribe":
		c.unsubscribe(msg.Sports)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
