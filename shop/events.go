package shop

import (
	"context"
	"sync"
)

// Topic names a cache whose server-side data may have changed.
type Topic string

const (
	TopicCart         Topic = "cart"
	TopicFavorites    Topic = "favorites"
	TopicTransactions Topic = "transactions"
)

// Bus is an in-process invalidation bus. Flows that mutate server
// state owned by another synchronizer publish the affected topics;
// each synchronizer subscribes its own refresh at wiring time, so
// dependent caches never silently go stale.
type Bus struct {
	mu   sync.Mutex
	subs map[Topic][]func(context.Context)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]func(context.Context))}
}

// Subscribe registers fn to run whenever topic is published.
func (b *Bus) Subscribe(topic Topic, fn func(context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], fn)
}

// Publish runs every subscriber of the given topics synchronously, in
// subscription order. Handlers are expected to swallow their own
// failures (refreshes log and keep stale data).
func (b *Bus) Publish(ctx context.Context, topics ...Topic) {
	b.mu.Lock()
	var fns []func(context.Context)
	for _, t := range topics {
		fns = append(fns, b.subs[t]...)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}
