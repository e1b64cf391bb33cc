package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/repository"
)

// AuditService records chat events as history rows. Recording is best-effort.
type AuditService struct {
	dispatcher events.Dispatcher
	history    repository.ChatHistoryRepository
	logger     *zap.Logger
}

// NewAuditService creates the service. A nil history repository disables recording.
func NewAuditService(dispatcher events.Dispatcher, history repository.ChatHistoryRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, history: history, logger: logger}
}

// RegisterHandlers subscribes to every chat event.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil || a.history == nil {
		return
	}
	for _, eventType := range events.ChatEventTypes {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

// ListHistory returns the chat's entries, newest first.
func (a *AuditService) ListHistory(ctx context.Context, chatID string, limit int) ([]domain.ChatHistory, error) {
	if a.history == nil {
		return []domain.ChatHistory{}, nil
	}
	entries, err := a.history.ListByChat(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.ChatHistory{}
	}
	return entries, nil
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	entry, err := historyFromEvent(event)
	if err != nil {
		a.logger.Warn("unrecognized chat event", zap.String("event_type", string(event.Type)), zap.Error(err))
		return nil
	}
	if err := a.history.Create(ctx, entry); err != nil {
		a.logger.Error("chat history write failed",
			zap.String("chat_id", event.ChatID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return nil
}

func historyFromEvent(event events.Event) (*domain.ChatHistory, error) {
	entry := &domain.ChatHistory{ChatID: event.ChatID, ActorID: event.ActorID}
	switch p := event.Payload.(type) {
	case events.ChatCreatedPayload:
		entry.ChangeType = domain.ChangeTypeCreated
		entry.NewValue = map[string]any{
			"user_id":  p.UserID,
			"subject":  p.Subject,
			"category": p.Category,
			"status":   p.Status,
			"priority": p.Priority,
		}
	case events.ChatStatusChangedPayload:
		entry.ChangeType = domain.ChangeTypeStatus
		entry.OldValue = map[string]any{"status": p.OldStatus}
		entry.NewValue = map[string]any{"status": p.NewStatus}
	case events.ChatPriorityChangedPayload:
		entry.ChangeType = domain.ChangeTypePriority
		entry.OldValue = map[string]any{"priority": p.OldPriority}
		entry.NewValue = map[string]any{"priority": p.NewPriority}
	case events.ChatAssignedPayload:
		entry.ChangeType = domain.ChangeTypeAssignee
		if p.PreviousAdminID != nil {
			entry.OldValue = map[string]any{"admin_id": *p.PreviousAdminID}
		}
		entry.NewValue = map[string]any{"admin_id": p.AdminID, "admin_name": p.AdminName}
	case events.ChatNotesUpdatedPayload:
		entry.ChangeType = domain.ChangeTypeNotes
		entry.OldValue = map[string]any{"notes": p.OldNotes}
		entry.NewValue = map[string]any{"notes": p.NewNotes}
	case events.ChatMessageAddedPayload:
		entry.ChangeType = domain.ChangeTypeMessage
		entry.NewValue = map[string]any{
			"message_id":   p.MessageID,
			"sender_id":    p.SenderID,
			"sender_role":  p.SenderRole,
			"body_preview": p.BodyPreview,
			"attachments":  p.Attachments,
		}
	default:
		return nil, fmt.Errorf("payload %T for %s", event.Payload, event.Type)
	}
	return entry, nil
}
