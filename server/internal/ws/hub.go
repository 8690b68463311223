package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/locavail/locavail/server/internal/availability"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16
)

// Events sent to clients.
const (
	EventHello   = "hello"
	EventRefresh = "refresh"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
	// Pages are served from the same origin; cross-origin policy belongs to
	// the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TierCount is the number of available locations in one tier.
type TierCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string      `json:"event"`
	At    time.Time   `json:"at"`
	Tiers []TierCount `json:"tiers,omitempty"`
}

// RefreshMessage describes a manual refresh and, when v is non-nil, the
// tier counts the refreshing session saw afterwards.
func RefreshMessage(v *availability.View) Message {
	msg := Message{Event: EventRefresh, At: time.Now().UTC()}
	if v != nil {
		for _, t := range v.Tiers {
			msg.Tiers = append(msg.Tiers, TierCount{Priority: string(t.Priority), Count: t.Count()})
		}
	}
	return msg
}

// Hub tracks WebSocket clients and fans messages out to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the connection, greets the client and keeps it
// registered until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	if data, err := json.Marshal(Message{Event: EventHello, At: time.Now().UTC()}); err == nil {
		h.trySend(c, data)
	}

	go c.writePump()
	c.readPump() // blocks until connection closes
}

// Broadcast sends msg to every connected client. Clients whose buffer is
// full are disconnected.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws: encode message", "event", msg.Event, "err", err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.trySend(c, data)
	}
	slog.Debug("ws: broadcast", "event", msg.Event, "clients", len(targets))
}

// trySend queues data for c, dropping c if its buffer is full. The send
// happens under the read lock so it cannot race with close(c.send).
func (h *Hub) trySend(c *client, data []byte) {
	h.mu.RLock()
	_, live := h.clients[c]
	full := false
	if live {
		select {
		case c.send <- data:
		default:
			full = true
		}
	}
	h.mu.RUnlock()
	if full {
		h.unregister(c)
	}
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump drains the client's send channel to the connection and sends
// periodic pings. Runs in its own goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes control frames and detects disconnects. Blocks until
// the connection closes.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
