package state

import (
	"sync"
	"time"

	"LiftLink/internal/protocol"
)

// Update is published for every change of the live record.
// Event is nil for connection transitions.
type Update struct {
	At       time.Time
	Snapshot Snapshot
	Event    *protocol.Event
}

// Hub fans updates out from the single producer to every subscriber.
// A subscriber whose buffer is full misses the update; the producer never blocks.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription receives updates until Unsubscribe or Hub.Close.
type Subscription struct {
	ch  chan Update
	hub *Hub
}

// DefaultSubscriptionBuffer is the per-subscriber queue length.
const DefaultSubscriptionBuffer = 16

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber. On a closed hub the returned
// subscription's channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan Update, DefaultSubscriptionBuffer), hub: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish delivers u to every subscriber with room in its buffer.
func (h *Hub) Publish(u Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- u:
		default:
		}
	}
}

// Close closes every subscription channel. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
	}
}

// C returns the update channel.
func (s *Subscription) C() <-chan Update {
	return s.ch
}

// Unsubscribe stops delivery and closes the channel. Safe to call twice.
func (s *Subscription) Unsubscribe() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}
