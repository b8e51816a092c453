// Package ws is the realtime presentation surface: one client per connected
// user, intents in, state frames out. The hub tracks connected clients and
// drives presence off register/unregister.
package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/ninahidul9/connect-chat/internal/presence"
)

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	clients  map[string]*Client
	presence *presence.Tracker
	log      *slog.Logger
	done     chan struct{}
}

func NewHub(pres *presence.Tracker, log *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		presence:   pres,
		log:        log.With("component", "ws"),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			// A reconnect replaces the previous socket for the same user.
			if old, ok := h.clients[client.userID]; ok {
				old.shutdown()
			}
			h.clients[client.userID] = client
			h.withTimeout(func(ctx context.Context) {
				h.presence.Connected(ctx, client.userID)
			})

		case client := <-h.Unregister:
			if cur, ok := h.clients[client.userID]; ok && cur == client {
				delete(h.clients, client.userID)
				h.withTimeout(func(ctx context.Context) {
					h.presence.Disconnected(ctx, client.userID)
				})
			}
			client.shutdown()

		case <-h.done:
			for _, client := range h.clients {
				client.shutdown()
			}
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) withTimeout(fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fn(ctx)
}
