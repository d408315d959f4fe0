// Package event provides the in-process publish/subscribe channel used to
// signal "something changed" to interested observers. No payload crosses the
// bus: subscribers re-query the store, so they can never observe a stale or
// partial value smuggled through the event itself.
package event

import "sync"

// Topics published by the workflow services.
const (
	TopicApprovalsChanged     = "approvals-changed"
	TopicNotificationsChanged = "notifications-changed"
)

// Handler is invoked with the topic that fired.
type Handler func(topic string)

// Bus is a single-process topic bus. Publish runs handlers synchronously on
// the caller's goroutine, strictly after the write being announced has
// committed (callers only publish on success).
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers handler for topic and returns an unsubscribe func.
// Unsubscribing is safe during delivery and idempotent.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers topic to every current subscriber. Handlers are invoked
// outside the bus lock from a snapshot, so a handler may subscribe or
// unsubscribe without deadlocking; a handler unsubscribed mid-delivery may
// still receive this publication (at-least-once).
func (b *Bus) Publish(topic string) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(topic)
	}
}
