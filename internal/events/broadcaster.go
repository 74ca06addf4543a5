package events

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"star-fee-distributor/internal/domain"
)

const (
	writeTimeout  = 10 * time.Second
	clientBacklog = 64 // per-client buffered envelopes before it is dropped
)

// Broadcaster fans distribution events out to websocket subscribers. It is
// both a Sink and an http.Handler (mount it on /ws).
type Broadcaster struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan Envelope
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster(logger *log.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
}

// Compile-time interface check.
var _ Sink = (*Broadcaster)(nil)

// ServeHTTP upgrades the connection and streams envelopes until the peer
// disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan Envelope, clientBacklog)}

	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	go b.writeLoop(c)
	b.readLoop(c)
}

// Emit queues the event for every subscriber. Slow subscribers are
// disconnected rather than allowed to block the crank path.
func (b *Broadcaster) Emit(_ context.Context, e domain.Event) {
	env, err := Wrap(e)
	if err != nil {
		b.logger.Printf("drop event %s: %v", e.EventType(), err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		select {
		case c.send <- env:
		default:
			b.dropLocked(c)
		}
	}
}

// SubscriberCount returns the number of connected clients.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close disconnects all subscribers.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		b.dropLocked(c)
	}
}

func (b *Broadcaster) writeLoop(c *client) {
	for env := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(env); err != nil {
			b.remove(c)
			return
		}
	}
	_ = c.conn.Close()
}

// readLoop discards inbound frames; it exists to detect disconnects.
func (b *Broadcaster) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			b.remove(c)
			return
		}
	}
}

func (b *Broadcaster) remove(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropLocked(c)
}

func (b *Broadcaster) dropLocked(c *client) {
	if _, ok := b.clients[c]; !ok {
		return
	}
	delete(b.clients, c)
	close(c.send)
}
