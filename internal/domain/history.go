package domain

import "time"

// ChatChangeType captures what changed in a history entry.
type ChatChangeType string

const (
	ChangeTypeCreated  ChatChangeType = "CREATED"
	ChangeTypeStatus   ChatChangeType = "STATUS_CHANGE"
	ChangeTypePriority ChatChangeType = "PRIORITY_CHANGE"
	ChangeTypeAssignee ChatChangeType = "ASSIGNEE_CHANGE"
	ChangeTypeNotes    ChatChangeType = "NOTES_CHANGE"
	ChangeTypeMessage  ChatChangeType = "MESSAGE_ADDED"
)

// ChatHistory is an immutable audit trail entry.
type ChatHistory struct {
	ID         string
	ChatID     string
	ActorID    *string
	ChangeType ChatChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
