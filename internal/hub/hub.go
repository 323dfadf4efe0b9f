// Package hub fans device events out to authenticated websocket subscribers.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"telemetry-hub/internal/auth"
	"telemetry-hub/internal/metrics"

	"github.com/google/uuid"
)

const DefaultSendBuffer = 256

type Config struct {
	SendBuffer int
	Metrics    *metrics.Metrics
}

// Hub is the subscriber registry. Subscribers are keyed by an opaque
// connection id assigned at registration.
type Hub struct {
	sendBuffer int
	metrics    *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]*Client
}

func New(cfg Config) *Hub {
	h := &Hub{
		sendBuffer: cfg.SendBuffer,
		metrics:    cfg.Metrics,
		clients:    make(map[string]*Client),
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = DefaultSendBuffer
	}
	if h.metrics == nil {
		h.metrics = metrics.NewNop()
	}
	return h
}

// Register adds an authenticated subscriber. Only resolved identities may be
// registered.
func (h *Hub) Register(identity auth.Identity) *Client {
	c := &Client{
		ID:       uuid.NewString(),
		Identity: identity,
		send:     make(chan []byte, h.sendBuffer),
	}
	h.mu.Lock()
	h.clients[c.ID] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.Subscribers.Set(float64(count))
	slog.Info("Subscriber registered", "conn_id", c.ID, "user_id", identity.UserID, "role", identity.Role)
	return c
}

// Unregister removes a subscriber and closes its outbound queue. Unknown ids
// are ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.metrics.Subscribers.Set(float64(count))
		slog.Info("Subscriber unregistered", "conn_id", id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast serializes ev once and queues it for every subscriber allowed to
// see events owned by ownerID ("" means no owner). Delivery is best effort:
// a subscriber whose queue is full misses the event. Returns the number of
// subscribers the event was queued for.
func (h *Hub) Broadcast(ctx context.Context, ev Event, ownerID string) int {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.ErrorContext(ctx, "Error marshalling event", "error", err, "device_id", ev.DeviceID)
		return 0
	}

	sent, dropped := 0, 0
	h.mu.RLock()
	for _, c := range h.clients {
		if !c.Identity.CanSee(ownerID) {
			continue
		}
		select {
		case c.send <- payload:
			sent++
		default:
			dropped++
		}
	}
	h.mu.RUnlock()

	h.metrics.Deliveries.WithLabelValues("sent").Add(float64(sent))
	if dropped > 0 {
		h.metrics.Deliveries.WithLabelValues("dropped").Add(float64(dropped))
		slog.WarnContext(ctx, "Dropped event for slow subscribers", "device_id", ev.DeviceID, "dropped", dropped)
	}
	return sent
}
