package realtime

import (
	"context"
	"strings"
)

// ChatsTopic carries a notification for every change to any chat document.
const ChatsTopic = "chats"

// MessagesTopic returns the topic notified when a chat's transcript changes.
func MessagesTopic(chatID string) string {
	return ChatsTopic + "/" + chatID + "/messages"
}

// Broker fans out change notifications. Notifications carry no payload: listeners re-read
// the store, so a dropped or merged notification only delays an update.
type Broker interface {
	Publish(ctx context.Context, topic string) error
	// Listen returns a channel that receives a value after changes on topic and a stop
	// function releasing the listener. The channel is never closed.
	Listen(ctx context.Context, topic string) (<-chan struct{}, func(), error)
	Close() error
}

// notify performs a non-blocking send; a pending notification already covers this one.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// channelName joins prefix and topic with sep, mapping topic path separators to sep so
// that "chats/42/messages" becomes "console.chats.42.messages" on NATS.
func channelName(prefix, topic, sep string) string {
	topic = strings.ReplaceAll(topic, sep, "_")
	topic = strings.ReplaceAll(topic, "/", sep)
	if prefix == "" {
		return topic
	}
	return prefix + sep + topic
}
