package telemetry

import (
	"context"
	"sync"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// subscriberBuffer is per subscriber; slow readers lose events instead of stalling transforms.
const subscriberBuffer = 100

// Hub fans transform activity out to live SSE subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan domain.TransformEvent]struct{}
	dropped     func()
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan domain.TransformEvent]struct{}),
	}
}

// OnDrop registers a callback fired whenever an event is dropped for a full subscriber.
// Call it before the hub is shared.
func (h *Hub) OnDrop(fn func()) {
	h.dropped = fn
}

// Subscribe adds a new client to the activity stream
func (h *Hub) Subscribe() chan domain.TransformEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan domain.TransformEvent, subscriberBuffer)
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a client channel and closes it
func (h *Hub) Unsubscribe(ch chan domain.TransformEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// Subscribers reports the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast sends an event to all listeners without blocking
func (h *Hub) Broadcast(event domain.TransformEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default: // Drop message if buffer is full to preserve SLA stability
			if h.dropped != nil {
				h.dropped()
			}
		}
	}
}

// ObserveTransform lets the hub sit directly behind the transform service.
func (h *Hub) ObserveTransform(_ context.Context, event domain.TransformEvent) {
	h.Broadcast(event)
}
