// Package events fans store change notifications out to independent subscribers.
package events

import (
	"sort"
	"sync"
)

// Kind identifies what changed.
type Kind int

const (
	TrackersChanged Kind = iota + 1
	RecordsChanged
	CategoriesChanged
	SettingsChanged
)

func (k Kind) String() string {
	switch k {
	case TrackersChanged:
		return "trackers"
	case RecordsChanged:
		return "records"
	case CategoriesChanged:
		return "categories"
	case SettingsChanged:
		return "settings"
	default:
		return "unknown"
	}
}

// Event says that data of UserID changed.
type Event struct {
	Kind   Kind
	UserID uint
}

// Handler receives events in the publisher's goroutine.
type Handler func(Event)

// Notifier is the publishing side, implemented by Bus.
type Notifier interface {
	Publish(Event)
}

// Subscriber is the listening side, implemented by Bus.
type Subscriber interface {
	Subscribe(h Handler) (unsubscribe func())
}

// Bus is a synchronous publish/subscribe hub. Safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every subscriber in registration order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Discard is a Notifier that drops every event.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Publish(Event) {}
