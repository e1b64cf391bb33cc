package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Query loads the current result set of a live view.
type Query[T any] func(ctx context.Context) ([]T, error)

// Feed turns broker notifications into full result-set snapshots.
type Feed[T any] struct {
	broker Broker
	logger *zap.Logger
}

// NewFeed creates a feed over broker.
func NewFeed[T any](broker Broker, logger *zap.Logger) *Feed[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed[T]{broker: broker, logger: logger}
}

// Subscribe delivers the result of query to onUpdate once right away and again after every
// change notification on topic. Notifications arriving while a query runs collapse into a
// single re-query. Query failures are logged and the subscription keeps listening.
//
// The returned function stops the subscription; it is idempotent and safe to call from
// onUpdate. No callback starts after it returns. Cancelling ctx also stops the subscription.
func (f *Feed[T]) Subscribe(ctx context.Context, topic string, query Query[T], onUpdate func([]T)) (func(), error) {
	changes, stopListen, err := f.broker.Listen(ctx, topic)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	var (
		mu         sync.Mutex
		stopped    atomic.Bool
		delivering atomic.Bool
		once       sync.Once
	)
	unsubscribe := func() {
		once.Do(func() {
			stopped.Store(true)
			cancel()
			stopListen()
		})
		// a call from inside onUpdate already holds mu
		if !delivering.Load() {
			mu.Lock()
			mu.Unlock()
		}
	}

	deliver := func() {
		items, err := query(ctx)
		if err != nil {
			if ctx.Err() == nil {
				f.logger.Warn("live query failed", zap.String("topic", topic), zap.Error(err))
			}
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if stopped.Load() {
			return
		}
		delivering.Store(true)
		defer delivering.Store(false)
		onUpdate(items)
	}

	go func() {
		defer unsubscribe()
		deliver()
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				deliver()
			}
		}
	}()

	return unsubscribe, nil
}
