package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/realtime"
)

// changeNotifier fans a completed write out to live feeds and domain event subscribers.
// Both are best-effort: the write already happened.
type changeNotifier struct {
	broker     realtime.Broker
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func newChangeNotifier(broker realtime.Broker, dispatcher events.Dispatcher, logger *zap.Logger) changeNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return changeNotifier{broker: broker, dispatcher: dispatcher, logger: logger}
}

func (n changeNotifier) notify(ctx context.Context, topics ...string) {
	if n.broker == nil {
		return
	}
	for _, topic := range topics {
		if err := n.broker.Publish(ctx, topic); err != nil {
			n.logger.Warn("change notification failed", zap.String("topic", topic), zap.Error(err))
		}
	}
}

func (n changeNotifier) publishEvent(ctx context.Context, event events.Event) {
	if n.dispatcher == nil {
		return
	}
	_ = n.dispatcher.Publish(ctx, event)
}
