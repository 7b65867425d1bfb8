// Package notify pushes mall change events to dashboards over WebSocket.
// The channel is broadcast-only: client messages are logged and only a
// ping gets an answer.
package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"mall_admin/internal/adapters/observability"
	"mall_admin/internal/domain"
)

const (
	sendQueue      = 64
	broadcastQueue = 256
)

// Hub owns the set of connected clients. Register/unregister and fan-out
// all happen on the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu    sync.RWMutex
	count int
}

type outbound struct {
	typ  string
	body []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan outbound, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			log.Info().Str("component", "websocket-hub").Msg("websocket hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount()
			log.Debug().Uint64("client", c.id).Int("total_clients", len(h.clients)).Msg("websocket client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				log.Debug().Uint64("client", c.id).Int("total_clients", len(h.clients)).Msg("websocket client disconnected")
			}

		case m := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- m.body:
				default:
					// a client that cannot keep up is disconnected rather than blocking the rest
					log.Warn().Uint64("client", c.id).Str("type", m.typ).Msg("websocket client too slow, dropping")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
	observability.WSClients.Set(float64(len(h.clients)))
}

// ClientCount is safe to call from any goroutine.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Broadcast queues ev for every connected client. It never blocks; when the
// queue is full the event is dropped and counted.
func (h *Hub) Broadcast(ev domain.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("marshal broadcast event failed")
		return
	}
	select {
	case h.broadcast <- outbound{typ: ev.Type, body: b}:
		observability.ObserveBroadcast(ev.Type, true)
	default:
		observability.ObserveBroadcast(ev.Type, false)
		log.Warn().Str("type", ev.Type).Msg("broadcast channel full, dropping event")
	}
}
