package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker relays notifications over Redis pub/sub so every API replica sees changes
// made through any other.
type RedisBroker struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisBroker builds a broker on an existing client.
func NewRedisBroker(client *redis.Client, prefix string, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{client: client, prefix: prefix, logger: logger}
}

func (b *RedisBroker) channel(topic string) string {
	return channelName(b.prefix, topic, ":")
}

// Publish sends an empty message on the topic channel.
func (b *RedisBroker) Publish(ctx context.Context, topic string) error {
	if err := b.client.Publish(ctx, b.channel(topic), "1").Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Listen subscribes to the topic channel and waits for the subscription to be confirmed.
func (b *RedisBroker) Listen(ctx context.Context, topic string) (<-chan struct{}, func(), error) {
	channel := b.channel(topic)
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		for range pubsub.Channel() {
			notify(out)
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				b.logger.Debug("redis unsubscribe failed", zap.String("channel", channel), zap.Error(err))
			}
		})
	}
	return out, stop, nil
}

// Close is a no-op; the client is owned by the persistence layer.
func (b *RedisBroker) Close() error {
	return nil
}
