package domain

import "time"

// SenderRole indicates which side of the conversation wrote a message.
type SenderRole string

const (
	SenderRoleAdmin SenderRole = "admin"
	SenderRoleUser  SenderRole = "user"
)

// MessageStatus tracks delivery state. The send path only produces sent; read is set by
// mark-read. Delivered is accepted on read for documents written by other clients.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// MessageType differentiates body kinds.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// Sender id markers used by clients that post on behalf of the support side.
const (
	AdminSenderMarker   = "admin"
	SupportSenderMarker = "support"
)

// IsSupportMarker reports whether senderID is one of the shared support-side markers.
func IsSupportMarker(senderID string) bool {
	return senderID == AdminSenderMarker || senderID == SupportSenderMarker
}

// ChatMessage is a single transcript entry. Immutable except for Status/ReadAt.
type ChatMessage struct {
	ID          string
	ChatID      string
	SenderID    string
	SenderRole  SenderRole
	Body        string
	SentAt      time.Time
	Status      MessageStatus
	ReadAt      *time.Time
	Type        MessageType
	Attachments []Attachment
}

// IsRead reports whether the message has been marked read.
func (m *ChatMessage) IsRead() bool {
	return m.Status == MessageStatusRead
}

// Attachment describes a file linked to a message.
type Attachment struct {
	Type     string
	URL      string
	FileName string
	FileSize int64
}
