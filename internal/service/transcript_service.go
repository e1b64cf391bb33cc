package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/realtime"
	"github.com/spec-kit/support-console/internal/repository"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// DefaultMessageListLimit bounds one-shot transcript reads.
const DefaultMessageListLimit = 100

const previewRunes = 140

// TranscriptService reads and appends chat messages.
type TranscriptService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	feed     *realtime.Feed[domain.ChatMessage]
	changeNotifier
}

// TranscriptDependencies bundles collaborators for transcripts.
type TranscriptDependencies struct {
	ChatRepo    repository.ChatRepository
	MessageRepo repository.MessageRepository
	Broker      realtime.Broker
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// SendInput describes an outgoing message. An empty SenderRole is derived from SenderID.
type SendInput struct {
	ChatID      string
	SenderID    string
	SenderRole  domain.SenderRole
	Body        string
	Attachments []domain.Attachment
}

// NewTranscriptService constructs the service.
func NewTranscriptService(deps TranscriptDependencies) *TranscriptService {
	notifier := newChangeNotifier(deps.Broker, deps.Dispatcher, deps.Logger)
	return &TranscriptService{
		chats:          deps.ChatRepo,
		messages:       deps.MessageRepo,
		feed:           realtime.NewFeed[domain.ChatMessage](deps.Broker, notifier.logger),
		changeNotifier: notifier,
	}
}

// Subscribe delivers the full transcript, oldest first, now and after every change. An empty
// chat id yields an inert subscription: no callbacks and a no-op unsubscribe.
func (s *TranscriptService) Subscribe(ctx context.Context, chatID string, onUpdate func([]domain.ChatMessage)) (func(), error) {
	if strings.TrimSpace(chatID) == "" {
		return func() {}, nil
	}
	query := func(ctx context.Context) ([]domain.ChatMessage, error) {
		return s.messages.ListByChat(ctx, chatID, 0)
	}
	return s.feed.Subscribe(ctx, realtime.MessagesTopic(chatID), query, onUpdate)
}

// List returns up to limit messages oldest first.
func (s *TranscriptService) List(ctx context.Context, chatID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultMessageListLimit
	}
	return s.messages.ListByChat(ctx, chatID, limit)
}

// Send appends a message and then refreshes the chat summary: preview, last message time and
// an unread counter of 1 for end-user messages or 0 for admin ones.
//
// The two writes are not atomic. If the summary update fails the message stays stored, the
// failure is logged and the directory preview remains stale until the next message.
func (s *TranscriptService) Send(ctx context.Context, input SendInput) (*domain.ChatMessage, error) {
	if strings.TrimSpace(input.ChatID) == "" {
		return nil, apperrors.NewValidationError("chat_id required", nil)
	}
	if strings.TrimSpace(input.SenderID) == "" {
		return nil, apperrors.NewValidationError("sender_id required", nil)
	}
	if strings.TrimSpace(input.Body) == "" && len(input.Attachments) == 0 {
		return nil, apperrors.NewValidationError("body or attachments required", nil)
	}

	if _, err := s.chats.GetByID(ctx, input.ChatID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("chat", map[string]any{"chat_id": input.ChatID})
		}
		return nil, err
	}

	role := input.SenderRole
	if role == "" {
		role = domain.SenderRoleUser
		if domain.IsSupportMarker(input.SenderID) {
			role = domain.SenderRoleAdmin
		}
	}

	msg := &domain.ChatMessage{
		ChatID:      input.ChatID,
		SenderID:    input.SenderID,
		SenderRole:  role,
		Body:        input.Body,
		Type:        messageType(input.Attachments),
		Attachments: input.Attachments,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	unread := 0
	if role == domain.SenderRoleUser {
		unread = 1
	}
	if err := s.chats.RecordLastMessage(ctx, input.ChatID, input.Body, unread); err != nil {
		s.logger.Warn("chat summary update failed",
			zap.String("chat_id", input.ChatID),
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	s.notify(ctx, realtime.MessagesTopic(input.ChatID), realtime.ChatsTopic)
	actor := ""
	if role == domain.SenderRoleAdmin {
		actor = input.SenderID
	}
	s.publishEvent(ctx, events.NewEvent(events.EventChatMessageAdded, input.ChatID, actor, events.ChatMessageAddedPayload{
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		SenderRole:  msg.SenderRole,
		BodyPreview: preview(strings.TrimSpace(input.Body)),
		Attachments: len(msg.Attachments),
	}))
	return msg, nil
}

func messageType(attachments []domain.Attachment) domain.MessageType {
	if len(attachments) == 0 {
		return domain.MessageTypeText
	}
	if strings.HasPrefix(attachments[0].Type, "image") {
		return domain.MessageTypeImage
	}
	return domain.MessageTypeFile
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewRunes {
		return body
	}
	return string([]rune(body)[:previewRunes]) + "…"
}
