package events

import (
	"sync"

	"github.com/ikkim/kicks-storefront/pkg/logger"
)

// Topic names a broadcast channel on the bus.
type Topic string

// TopicOpenCart asks every cart summary view to open itself.
const TopicOpenCart Topic = "cart:open"

type subscription struct {
	id int
	fn func()
}

// Bus is an in-process publish/subscribe channel keyed by topic.
// Messages carry no payload; handlers run synchronously on the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscription
	nextID int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers fn for topic and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(topic Topic, fn func()) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, id) })
	}
}

func (b *Bus) unsubscribe(topic Topic, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[topic]
	for i, s := range list {
		if s.id == id {
			b.subs[topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Publish fires topic and returns how many handlers were invoked.
// A panicking handler is logged and does not stop the others.
func (b *Bus) Publish(topic Topic) int {
	b.mu.RLock()
	handlers := make([]subscription, len(b.subs[topic]))
	copy(handlers, b.subs[topic])
	b.mu.RUnlock()

	for _, h := range handlers {
		dispatch(topic, h.fn)
	}
	return len(handlers)
}

// Subscribers reports the number of handlers on topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func dispatch(topic Topic, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event handler panicked", nil, map[string]interface{}{
				"topic": string(topic),
				"panic": r,
			})
		}
	}()
	fn()
}
