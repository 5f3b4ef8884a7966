// Package push fans upstream change notifications out to in-process subscribers.
package push

import (
	"encoding/json"
	"sync"
)

// AnyEvent subscribes to every event name.
const AnyEvent = "*"

// Event is one frame of the push channel.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"-"`
}

type Handler func(Event)

// Publisher is the sending side of the broker.
type Publisher interface {
	Publish(Event)
}

// Subscriber is the receiving side of the broker.
type Subscriber interface {
	Subscribe(event string, h Handler) (unsubscribe func())
}

type subscription struct {
	id uint64
	h  Handler
}

// Broker is an in-memory publish/subscribe hub keyed by event name.
// Handlers run on the publishing goroutine and must not block.
type Broker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]subscription)}
}

// Subscribe registers h for event and returns the function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Broker) Subscribe(event string, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscription{id: id, h: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(event, id) })
	}
}

func (b *Broker) remove(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[event]
	for i, s := range subs {
		if s.id == id {
			b.subs[event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[event]) == 0 {
		delete(b.subs, event)
	}
}

func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Name])+len(b.subs[AnyEvent]))
	for _, s := range b.subs[e.Name] {
		handlers = append(handlers, s.h)
	}
	if e.Name != AnyEvent {
		for _, s := range b.subs[AnyEvent] {
			handlers = append(handlers, s.h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Subscribers returns the number of handlers registered for event.
func (b *Broker) Subscribers(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[event])
}
