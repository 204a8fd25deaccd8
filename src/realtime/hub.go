// Package realtime pushes like/comment deltas to connected clients.
// Delivery is best-effort and at-most-once per process: a publish never
// blocks the mutation that triggered it, and a client that is slow or
// disconnected simply misses the event until its next full fetch.
package realtime

import (
	"log/slog"
	"sync"
)

// Event is one broadcast frame. Name matches what the frontend listens
// for ("likeUpdated", "commentAdded"); Data carries the updated state.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Publisher is the capability the post handlers depend on. Decoupled from
// any transport so mutations can be tested without sockets.
type Publisher interface {
	Publish(event Event)
}

// Hub fans every published event out to all subscribers, mirroring the
// original global socket broadcast; clients filter by postId themselves.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]chan Event),
		buffer:      16,
	}
}

// Subscribe registers a client and returns its event channel. The channel
// is closed by Unsubscribe, never by the publisher side.
func (h *Hub) Subscribe(id string) <-chan Event {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	// Una suscripción repetida con el mismo id reemplaza la anterior
	if old, ok := h.subscribers[id]; ok {
		close(old)
	}
	h.subscribers[id] = ch

	return ch
}

// Unsubscribe removes the client and closes its channel. Idempotent.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

// Publish delivers the event to every subscriber without blocking. A full
// channel means the client is too slow; the event is dropped for it.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			slog.Warn("dropping realtime event for slow subscriber", "subscriber", id, "event", event.Name)
		}
	}
}

// Len reports the current subscriber count.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
