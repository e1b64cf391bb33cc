package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventChatCreated         EventType = "chat_created"
	EventChatStatusChanged   EventType = "chat_status_changed"
	EventChatPriorityChanged EventType = "chat_priority_changed"
	EventChatAssigned        EventType = "chat_assigned"
	EventChatNotesUpdated    EventType = "chat_notes_updated"
	EventChatMessageAdded    EventType = "chat_message_added"
)

// ChatEventTypes lists every chat event, in the order they are usually emitted.
var ChatEventTypes = []EventType{
	EventChatCreated,
	EventChatStatusChanged,
	EventChatPriorityChanged,
	EventChatAssigned,
	EventChatNotesUpdated,
	EventChatMessageAdded,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ChatID    string    `json:"chat_id"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps a fresh id and timestamp. An empty actorID is recorded as no actor.
func NewEvent(eventType EventType, chatID, actorID string, payload any) Event {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ChatID:    chatID,
		ActorID:   actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ChatCreatedPayload payload.
type ChatCreatedPayload struct {
	UserID   string              `json:"user_id"`
	Subject  string              `json:"subject"`
	Category string              `json:"category"`
	Status   domain.ChatStatus   `json:"status"`
	Priority domain.ChatPriority `json:"priority"`
}

// ChatStatusChangedPayload payload.
type ChatStatusChangedPayload struct {
	OldStatus domain.ChatStatus `json:"old_status"`
	NewStatus domain.ChatStatus `json:"new_status"`
}

// ChatPriorityChangedPayload payload.
type ChatPriorityChangedPayload struct {
	OldPriority domain.ChatPriority `json:"old_priority"`
	NewPriority domain.ChatPriority `json:"new_priority"`
}

// ChatAssignedPayload payload.
type ChatAssignedPayload struct {
	PreviousAdminID *string `json:"previous_admin_id,omitempty"`
	AdminID         string  `json:"admin_id"`
	AdminName       string  `json:"admin_name"`
}

// ChatNotesUpdatedPayload payload.
type ChatNotesUpdatedPayload struct {
	OldNotes string `json:"old_notes"`
	NewNotes string `json:"new_notes"`
}

// ChatMessageAddedPayload payload.
type ChatMessageAddedPayload struct {
	MessageID   string            `json:"message_id"`
	SenderID    string            `json:"sender_id"`
	SenderRole  domain.SenderRole `json:"sender_role"`
	BodyPreview string            `json:"body_preview"`
	Attachments int               `json:"attachments"`
}
