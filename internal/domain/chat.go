package domain

import "time"

// ChatStatus enumerates lifecycle states for support conversations.
type ChatStatus string

const (
	ChatStatusActive   ChatStatus = "active"
	ChatStatusWaiting  ChatStatus = "waiting"
	ChatStatusClosed   ChatStatus = "closed"
	ChatStatusResolved ChatStatus = "resolved"
)

// IsTerminal reports whether the status closes the conversation.
func (s ChatStatus) IsTerminal() bool {
	return s == ChatStatusClosed || s == ChatStatusResolved
}

// Valid reports whether s is a known status.
func (s ChatStatus) Valid() bool {
	switch s {
	case ChatStatusActive, ChatStatusWaiting, ChatStatusClosed, ChatStatusResolved:
		return true
	}
	return false
}

// ChatPriority enumerates triage urgency.
type ChatPriority string

const (
	ChatPriorityLow    ChatPriority = "low"
	ChatPriorityMedium ChatPriority = "medium"
	ChatPriorityHigh   ChatPriority = "high"
	ChatPriorityUrgent ChatPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p ChatPriority) Valid() bool {
	switch p {
	case ChatPriorityLow, ChatPriorityMedium, ChatPriorityHigh, ChatPriorityUrgent:
		return true
	}
	return false
}

// Known chat categories. Stored values are free text.
const (
	ChatCategoryGeneral     = "general"
	ChatCategoryTechnical   = "technical"
	ChatCategoryBilling     = "billing"
	ChatCategoryKYC         = "kyc"
	ChatCategoryTransaction = "transaction"
	ChatCategoryOther       = "other"
)

// SupportPool is the participant marker standing for the shared support queue.
const SupportPool = "support"

// Chat is a support conversation between one end-user and the support pool.
type Chat struct {
	ID             string
	UserID         string
	UserName       string
	UserEmail      string
	Status         ChatStatus
	Priority       ChatPriority
	Subject        string
	Category       string
	Participants   []string
	AssignedTo     *string
	AssignedToName *string
	LastMessage    string
	LastMessageAt  *time.Time
	UnreadCount    int
	Notes          string
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
	ClosedBy       *string
}

// HasParticipant reports whether id is listed among the participants.
func (c *Chat) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// ChatStats summarizes the directory.
type ChatStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Waiting    int `json:"waiting"`
	Closed     int `json:"closed"`
	Resolved   int `json:"resolved"`
	Urgent     int `json:"urgent"`
	High       int `json:"high"`
	Unassigned int `json:"unassigned"`
}

// ComputeChatStats counts chats per status and priority bucket.
func ComputeChatStats(chats []Chat) ChatStats {
	stats := ChatStats{Total: len(chats)}
	for i := range chats {
		switch chats[i].Status {
		case ChatStatusActive:
			stats.Active++
		case ChatStatusWaiting:
			stats.Waiting++
		case ChatStatusClosed:
			stats.Closed++
		case ChatStatusResolved:
			stats.Resolved++
		}
		switch chats[i].Priority {
		case ChatPriorityUrgent:
			stats.Urgent++
		case ChatPriorityHigh:
			stats.High++
		}
		if chats[i].AssignedTo == nil || *chats[i].AssignedTo == "" {
			stats.Unassigned++
		}
	}
	return stats
}
