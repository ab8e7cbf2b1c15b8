// Package broadcast implements the change-notification channel shared by
// every client of the content store and event log. Signals carry only a
// topic name; subscribers must re-fetch canonical state rather than trust
// any payload.
package broadcast

import (
	"sync"

	"go.uber.org/zap"
)

// Topics published by the stores.
const (
	TopicContent = "content"
	TopicEvents  = "events"
)

// Subscription receives topic names on C until Close is called.
type Subscription struct {
	C   chan string
	hub *Hub
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.hub.unsubscribe(s)
}

// Hub fans topic signals out to all subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	logger *zap.Logger
}

// New creates an empty hub.
func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new listener. The channel is buffered; a slow
// listener drops signals, which is safe because signals carry no payload and
// every consumer re-loads on receipt anyway.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		C:   make(chan string, 8),
		hub: h,
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Publish notifies every subscriber that the topic changed. Never blocks.
func (h *Hub) Publish(topic string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.C <- topic:
		default:
			h.logger.Debug("dropped change signal", zap.String("topic", topic))
		}
	}
}

// Subscribers returns the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// Close detaches and closes every subscription. Stream handlers observe the
// closed channel and end their response.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		close(sub.C)
		sub.hub = nil
		delete(h.subs, sub)
	}
}
