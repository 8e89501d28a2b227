// Package broadcast fans stored notifications out to live dashboard viewers.
package broadcast

import (
	"sync"

	"isp_billing_panel/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

const defaultBuffer = 16

// Hub implements notification.Publisher. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	logger *logrus.Entry
	closed bool
}

// Subscription is one live viewer. Events is closed on Unsubscribe or Hub.Close.
type Subscription struct {
	Events <-chan *notification.Notification
	ch     chan *notification.Notification
	hub    *Hub
	once   sync.Once
}

func NewHub(buffer int, logger *logrus.Entry) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: map[*Subscription]struct{}{}, buffer: buffer, logger: logger}
}

func (h *Hub) Subscribe() *Subscription {
	ch := make(chan *notification.Notification, h.buffer)
	sub := &Subscription{Events: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.close()
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

func (s *Subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.subs[s]; ok {
		delete(s.hub.subs, s)
		s.close()
	}
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

func (h *Hub) Publish(n *notification.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- n:
		default:
			h.logger.WithField("notification_id", n.ID).Warn("Live subscriber is lagging, event dropped")
		}
	}
}

// Subscribers returns the number of live viewers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription. Later Subscribe calls get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for sub := range h.subs {
		sub.close()
		delete(h.subs, sub)
	}
}
