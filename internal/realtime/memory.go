package realtime

import (
	"context"
	"sync"
)

// MemoryBroker delivers notifications inside a single process.
type MemoryBroker struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]chan struct{}
}

// NewMemoryBroker creates an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{listeners: make(map[string]map[int]chan struct{})}
}

// Publish notifies every listener of topic.
func (b *MemoryBroker) Publish(_ context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.listeners[topic] {
		notify(ch)
	}
	return nil
}

// Listen registers a listener on topic.
func (b *MemoryBroker) Listen(_ context.Context, topic string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.listeners[topic] == nil {
		b.listeners[topic] = make(map[int]chan struct{})
	}
	b.listeners[topic][id] = ch
	b.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners[topic], id)
			if len(b.listeners[topic]) == 0 {
				delete(b.listeners, topic)
			}
		})
	}
	return ch, stop, nil
}

// Listeners returns the number of active listeners on topic.
func (b *MemoryBroker) Listeners(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[topic])
}

// Close drops every listener.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = make(map[string]map[int]chan struct{})
	return nil
}
