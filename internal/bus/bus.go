package bus

import (
	"strings"
	"sync"
	"time"
)

// Bus is an in-process publish/subscribe event bus. Subscribers select
// events by kind prefix ("channel." receives "channel.selected").
type Bus struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
	now  func() time.Time
}

type subscription struct {
	prefixes []string
	ch       chan Event
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]*subscription),
		now:  time.Now,
	}
}

// Publish delivers evt to every matching subscriber without blocking.
// A subscriber whose buffer is full misses the event.
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = b.now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.matches(evt.Kind) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Emit publishes an event of the given kind stamped with the current time.
func (b *Bus) Emit(kind string, payload any) {
	b.Publish(Event{Kind: kind, Payload: payload})
}

// Subscribe returns a channel receiving events whose kind starts with prefix,
// and a function that cancels the subscription.
func (b *Bus) Subscribe(prefix string, bufSize int) (<-chan Event, func()) {
	return b.SubscribeAny(bufSize, prefix)
}

// SubscribeAny is Subscribe for several prefixes. Matching events arrive on
// one channel in publish order.
func (b *Bus) SubscribeAny(bufSize int, prefixes ...string) (<-chan Event, func()) {
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = &subscription{prefixes: prefixes, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (s *subscription) matches(kind string) bool {
	for _, p := range s.prefixes {
		if strings.HasPrefix(kind, p) {
			return true
		}
	}
	return false
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
