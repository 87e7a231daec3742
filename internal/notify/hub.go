package notify

import (
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

// Hub fans match events out to in-process subscribers (the SSE endpoint).
// Slow subscribers are skipped rather than blocking the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan MatchEvent
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan MatchEvent)}
}

// Subscribe registers a new listener and returns its id and channel.
func (h *Hub) Subscribe() (string, <-chan MatchEvent) {
	ch := make(chan MatchEvent, subscriberBuffer)
	id := uuid.NewString()

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers the event to every subscriber with room in its buffer.
func (h *Hub) Publish(event MatchEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Len returns the current subscriber count.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
