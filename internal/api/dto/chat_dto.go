package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// CreateChatRequest payload. Presence of user_name, user_email and subject is checked by the
// directory so that every missing field is reported together.
type CreateChatRequest struct {
	UserID       string              `json:"user_id"`
	UserName     string              `json:"user_name"`
	UserEmail    string              `json:"user_email"`
	Subject      string              `json:"subject" validate:"max=300"`
	Category     string              `json:"category" validate:"max=64"`
	Status       domain.ChatStatus   `json:"status" validate:"omitempty,oneof=active waiting closed resolved"`
	Priority     domain.ChatPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Participants []string            `json:"participants"`
	Tags         []string            `json:"tags"`
	Notes        string              `json:"notes" validate:"max=10000"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.ChatStatus `json:"status" validate:"required,oneof=active waiting closed resolved"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.ChatPriority `json:"priority" validate:"required,oneof=low medium high urgent"`
}

// UpdateNotesRequest payload. Empty notes clear the field.
type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

// AssignRequest payload. Both fields empty assigns the caller.
type AssignRequest struct {
	AdminID   string `json:"admin_id"`
	AdminName string `json:"admin_name" validate:"required_with=AdminID"`
}

// SendMessageRequest payload.
type SendMessageRequest struct {
	Body        string              `json:"body" validate:"max=4000"`
	Attachments []AttachmentRequest `json:"attachments" validate:"max=10,dive"`
}

// AttachmentRequest describes an uploaded file.
type AttachmentRequest struct {
	Type     string `json:"type" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size" validate:"min=0"`
}

// ChatResponse represents a directory entry.
type ChatResponse struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	UserName       string              `json:"user_name"`
	UserEmail      string              `json:"user_email"`
	Status         domain.ChatStatus   `json:"status"`
	Priority       domain.ChatPriority `json:"priority"`
	Subject        string              `json:"subject"`
	Category       string              `json:"category"`
	Participants   []string            `json:"participants"`
	AssignedTo     *string             `json:"assigned_to"`
	AssignedToName *string             `json:"assigned_to_name"`
	LastMessage    string              `json:"last_message"`
	LastMessageAt  *time.Time          `json:"last_message_at"`
	UnreadCount    int                 `json:"unread_count"`
	Notes          string              `json:"notes"`
	Tags           []string            `json:"tags"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	ClosedAt       *time.Time          `json:"closed_at,omitempty"`
	ClosedBy       *string             `json:"closed_by,omitempty"`
}

// MessageResponse represents a transcript entry.
type MessageResponse struct {
	ID          string               `json:"id"`
	ChatID      string               `json:"chat_id"`
	SenderID    string               `json:"sender_id"`
	SenderRole  domain.SenderRole    `json:"sender_role"`
	Body        string               `json:"body"`
	SentAt      time.Time            `json:"sent_at"`
	Status      domain.MessageStatus `json:"status"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
	Type        domain.MessageType   `json:"type"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// HistoryResponse represents an audit entry.
type HistoryResponse struct {
	ID         string                `json:"id"`
	ChatID     string                `json:"chat_id"`
	ActorID    *string               `json:"actor_id"`
	ChangeType domain.ChatChangeType `json:"change_type"`
	OldValue   map[string]any        `json:"old_value,omitempty"`
	NewValue   map[string]any        `json:"new_value,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// DomainAttachments converts request attachments.
func (r SendMessageRequest) DomainAttachments() []domain.Attachment {
	out := make([]domain.Attachment, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		out = append(out, domain.Attachment{Type: a.Type, URL: a.URL, FileName: a.FileName, FileSize: a.FileSize})
	}
	return out
}

// ChatFromDomain maps a chat.
func ChatFromDomain(c *domain.Chat) ChatResponse {
	return ChatResponse{
		ID:             c.ID,
		UserID:         c.UserID,
		UserName:       c.UserName,
		UserEmail:      c.UserEmail,
		Status:         c.Status,
		Priority:       c.Priority,
		Subject:        c.Subject,
		Category:       c.Category,
		Participants:   nonNil(c.Participants),
		AssignedTo:     c.AssignedTo,
		AssignedToName: c.AssignedToName,
		LastMessage:    c.LastMessage,
		LastMessageAt:  c.LastMessageAt,
		UnreadCount:    c.UnreadCount,
		Notes:          c.Notes,
		Tags:           nonNil(c.Tags),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		ClosedAt:       c.ClosedAt,
		ClosedBy:       c.ClosedBy,
	}
}

// ChatsFromDomain maps a chat list.
func ChatsFromDomain(chats []domain.Chat) []ChatResponse {
	out := make([]ChatResponse, 0, len(chats))
	for i := range chats {
		out = append(out, ChatFromDomain(&chats[i]))
	}
	return out
}

// MessageFromDomain maps a message.
func MessageFromDomain(m *domain.ChatMessage) MessageResponse {
	atts := make([]AttachmentResponse, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		atts = append(atts, AttachmentResponse{Type: a.Type, URL: a.URL, FileName: a.FileName, FileSize: a.FileSize})
	}
	return MessageResponse{
		ID:          m.ID,
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		SenderRole:  m.SenderRole,
		Body:        m.Body,
		SentAt:      m.SentAt,
		Status:      m.Status,
		ReadAt:      m.ReadAt,
		Type:        m.Type,
		Attachments: atts,
	}
}

// MessagesFromDomain maps a transcript.
func MessagesFromDomain(msgs []domain.ChatMessage) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, MessageFromDomain(&msgs[i]))
	}
	return out
}

// HistoryFromDomain maps audit entries.
func HistoryFromDomain(entries []domain.ChatHistory) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, HistoryResponse{
			ID:         h.ID,
			ChatID:     h.ChatID,
			ActorID:    h.ActorID,
			ChangeType: h.ChangeType,
			OldValue:   h.OldValue,
			NewValue:   h.NewValue,
			CreatedAt:  h.CreatedAt,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
