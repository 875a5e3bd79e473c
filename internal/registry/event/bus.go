package event

import (
	"context"
	"sync"
)

const subscriberBuffer = 64

// Bus fans persisted events out to live subscribers. Delivery is best-effort:
// a subscriber that falls more than subscriberBuffer events behind misses the
// overflow and should re-read the durable log from its last seen Seq.
type Bus struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan Event
	closed      bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Subscribe registers a listener. The channel closes when ctx is done, the
// returned cancel function runs, or the bus closes.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	subID := b.nextID
	b.nextID++
	b.subscribers[subID] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if existing, ok := b.subscribers[subID]; ok {
				delete(b.subscribers, subID)
				close(existing)
			}
			b.mu.Unlock()
		})
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return ch, cancel
}

// Publish delivers events to every current subscriber without blocking.
func (b *Bus) Publish(events ...Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, evt := range events {
		for _, ch := range b.subscribers {
			select {
			case ch <- evt:
			default:
				// Subscriber is behind; it recovers from the durable log.
			}
		}
	}
}

// Close drops all subscribers and closes their channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for subID, ch := range b.subscribers {
		delete(b.subscribers, subID)
		close(ch)
	}
}
