// Package realtime is the process-wide broadcast channel. One hub is
// bound to the network listener at startup and injected into the feed
// pipeline; Emit fans a mutation event out to every currently-connected
// websocket client. Delivery is best-effort at-most-once: clients that
// connect after emission miss the event, slow clients are disconnected
// rather than blocking the fan-out, nothing is acknowledged or retried.
// Each individual connection receives events in emission order.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"example.com/feedapp/internal/logger"
	"example.com/feedapp/internal/models"
)

var logg = logger.New()

// Emitter is what the feed pipeline needs from the broadcast channel.
type Emitter interface {
	Emit(action string, payload any)
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// sendBuffer bounds how far a client may lag before it is dropped.
const sendBuffer = 16

func New() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			// the HTTP layer already answers CORS for the app's clients
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// --- Process-wide handle ---

var (
	defaultMu  sync.Mutex
	defaultHub *Hub
)

// Register binds h as the process-wide hub. Called once when the
// network listener starts.
func Register(h *Hub) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultHub = h
}

// Get returns the process-wide hub. Using it before Register is a
// programming error, not a recoverable condition.
func Get() *Hub {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultHub == nil {
		panic("realtime: hub not initialized")
	}
	return defaultHub
}

// ServeHTTP upgrades the request to a websocket and keeps the client
// registered until its connection dies.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logg.Error("realtime", "Websocket upgrade failed", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logg.Info("realtime", "Client connected")

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Emit fans one mutation event out to every connected client. A client
// whose send buffer is full is dropped instead of stalling the others.
func (h *Hub) Emit(action string, payload any) {
	data, err := json.Marshal(models.MutationEvent{Action: action, Post: payload})
	if err != nil {
		logg.Error("realtime", "Failed to marshal mutation event", err)
		return
	}

	var stale []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		logg.Warn("realtime", "Dropping slow client")
		h.drop(c)
	}
}

// writeLoop drains the client's send queue onto its connection. The
// queue channel is closed by drop, which ends the loop.
func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
			return
		}
	}
	c.conn.Close()
}

// readLoop discards inbound frames; its only job is noticing when the
// peer goes away.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, registered := h.clients[c]
	if registered {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if registered {
		c.conn.Close()
		logg.Info("realtime", "Client disconnected")
	}
}

// Close disconnects every client, for graceful shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
}
