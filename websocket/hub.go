package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

const (
	broadcastBuffer = 64
	writeWait       = 5 * time.Second
)

// subscriber is the part of *websocket.Conn the hub writes to.
type subscriber interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub fans class events out to every connected live-feed client.
type Hub struct {
	clients   map[subscriber]struct{}
	clientsMu sync.RWMutex

	register   chan subscriber
	unregister chan subscriber
	broadcast  chan models.ClassEvent
	quit       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[subscriber]struct{}),
		register:   make(chan subscriber),
		unregister: make(chan subscriber),
		broadcast:  make(chan models.ClassEvent, broadcastBuffer),
		quit:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)

	for {
		select {
		case <-ctx.Done():
			h.clientsMu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.clientsMu.Unlock()
			return
		case conn := <-h.register:
			h.clientsMu.Lock()
			h.clients[conn] = struct{}{}
			h.clientsMu.Unlock()
		case conn := <-h.unregister:
			h.clientsMu.Lock()
			delete(h.clients, conn)
			h.clientsMu.Unlock()
		case event := <-h.broadcast:
			h.send(event)
		}
	}
}

// send writes outside the lock so a slow client never blocks Subscribers.
// Only Run mutates the client set, so the snapshot stays current.
func (h *Hub) send(event models.ClassEvent) {
	h.clientsMu.RLock()
	conns := make([]subscriber, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clientsMu.RUnlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Error sending %s event to live feed client: %v", event.Type, err)
			conn.Close()
			h.clientsMu.Lock()
			delete(h.clients, conn)
			h.clientsMu.Unlock()
		}
	}
}

// Publish never blocks the request that triggered the event; when the buffer
// is full the event is dropped.
func (h *Hub) Publish(event models.ClassEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("⚠️ Live feed backlog full, dropping %s event for class %s", event.Type, event.ClassID)
	}
}

func (h *Hub) Subscribers() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) join(conn subscriber) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) leave(conn subscriber) {
	select {
	case h.unregister <- conn:
	case <-h.quit:
	}
}

// Serve is the websocket handler for the live class feed. Clients only
// listen; anything they send is discarded.
func (h *Hub) Serve(c *websocket.Conn) {
	if !h.join(c) {
		c.Close()
		return
	}
	defer h.leave(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
