package transport

import "sync"

// InvalidationBus fans out session-invalidated events. The transport publishes
// exactly one event per 401 response; subscribers (the session manager, the
// console gate) react by dropping authenticated state. Publishing never blocks:
// each subscriber channel is buffered and a pending event is not duplicated.
type InvalidationBus struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// NewInvalidationBus creates an empty bus.
func NewInvalidationBus() *InvalidationBus {
	return &InvalidationBus{subs: make(map[int]chan struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release the subscription.
func (b *InvalidationBus) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Notify publishes one invalidation event to every subscriber.
func (b *InvalidationBus) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
