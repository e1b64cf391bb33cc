package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSBroker relays notifications over core NATS subjects.
type NATSBroker struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// NewNATSBroker builds a broker on an existing connection.
func NewNATSBroker(conn *nats.Conn, prefix string, logger *zap.Logger) *NATSBroker {
	return &NATSBroker{conn: conn, prefix: prefix, logger: logger}
}

func (b *NATSBroker) subject(topic string) string {
	return channelName(b.prefix, topic, ".")
}

// Publish sends an empty message on the topic subject.
func (b *NATSBroker) Publish(_ context.Context, topic string) error {
	if err := b.conn.Publish(b.subject(topic), nil); err != nil {
		return fmt.Errorf("nats publish %s: %w", topic, err)
	}
	return nil
}

// Listen subscribes to the topic subject.
func (b *NATSBroker) Listen(_ context.Context, topic string) (<-chan struct{}, func(), error) {
	subject := b.subject(topic)
	out := make(chan struct{}, 1)
	sub, err := b.conn.Subscribe(subject, func(*nats.Msg) {
		notify(out)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil {
				b.logger.Debug("nats unsubscribe failed", zap.String("subject", subject), zap.Error(err))
			}
		})
	}
	return out, stop, nil
}

// Close is a no-op; the connection is owned by the persistence layer.
func (b *NATSBroker) Close() error {
	return nil
}
