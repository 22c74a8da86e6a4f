package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversToEverySubscriberInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(e Event) { got = append(got, "first:"+e.Kind.String()) })
	bus.Subscribe(func(e Event) { got = append(got, "second:"+e.Kind.String()) })

	bus.Publish(Event{Kind: RecordsChanged, UserID: 7})

	assert.Equal(t, []string{"first:records", "second:records"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(func(Event) { calls++ })

	bus.Publish(Event{Kind: TrackersChanged})
	unsubscribe()
	unsubscribe()
	bus.Publish(Event{Kind: TrackersChanged})

	assert.Equal(t, 1, calls)
}

func TestBus_HandlerMaySubscribe(t *testing.T) {
	bus := NewBus()
	inner := 0
	bus.Subscribe(func(Event) {
		bus.Subscribe(func(Event) { inner++ })
	})

	bus.Publish(Event{Kind: CategoriesChanged})
	bus.Publish(Event{Kind: CategoriesChanged})

	assert.Equal(t, 1, inner)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Kind: RecordsChanged})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Publish(Event{Kind: SettingsChanged}) })
	assert.Equal(t, "unknown", Kind(0).String())
}
