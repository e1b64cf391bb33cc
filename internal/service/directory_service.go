package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/realtime"
	"github.com/spec-kit/support-console/internal/repository"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// DefaultChatListLimit bounds one-shot directory listings.
const DefaultChatListLimit = 50

// DirectoryService maintains the support conversation directory.
type DirectoryService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	feed     *realtime.Feed[domain.Chat]
	changeNotifier
}

// DirectoryDependencies bundles collaborators for the directory.
type DirectoryDependencies struct {
	ChatRepo    repository.ChatRepository
	MessageRepo repository.MessageRepository
	Broker      realtime.Broker
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ChatFilter narrows the directory. Search matches user name, subject and email, ignoring case.
type ChatFilter struct {
	Status domain.ChatStatus
	Search string
	Limit  int
}

// ChatCreateInput describes a new conversation.
type ChatCreateInput struct {
	UserID       string
	UserName     string
	UserEmail    string
	Subject      string
	Category     string
	Status       domain.ChatStatus
	Priority     domain.ChatPriority
	Participants []string
	Tags         []string
	Notes        string
}

// ChatWithMessages pairs a chat with its transcript.
type ChatWithMessages struct {
	Chat     domain.Chat
	Messages []domain.ChatMessage
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	notifier := newChangeNotifier(deps.Broker, deps.Dispatcher, deps.Logger)
	return &DirectoryService{
		chats:          deps.ChatRepo,
		messages:       deps.MessageRepo,
		feed:           realtime.NewFeed[domain.Chat](deps.Broker, notifier.logger),
		changeNotifier: notifier,
	}
}

// Subscribe delivers the filtered directory, most recently updated first, now and after every
// chat change until the returned function is called or ctx ends.
func (s *DirectoryService) Subscribe(ctx context.Context, filter ChatFilter, onUpdate func([]domain.Chat)) (func(), error) {
	query := func(ctx context.Context) ([]domain.Chat, error) {
		chats, err := s.chats.List(ctx, repository.ChatListFilter{Status: filter.Status, Limit: filter.Limit})
		if err != nil {
			return nil, err
		}
		return matchSearch(chats, filter.Search), nil
	}
	return s.feed.Subscribe(ctx, realtime.ChatsTopic, query, onUpdate)
}

// List returns one snapshot of the directory.
func (s *DirectoryService) List(ctx context.Context, filter ChatFilter) ([]domain.Chat, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultChatListLimit
	}
	chats, err := s.chats.List(ctx, repository.ChatListFilter{Status: filter.Status, Limit: limit})
	if err != nil {
		return nil, err
	}
	return matchSearch(chats, filter.Search), nil
}

// Get returns a single chat.
func (s *DirectoryService) Get(ctx context.Context, id string) (*domain.Chat, error) {
	chat, err := s.chats.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("chat", map[string]any{"chat_id": id})
		}
		return nil, err
	}
	return chat, nil
}

// Stats counts every chat per status and priority bucket.
func (s *DirectoryService) Stats(ctx context.Context) (domain.ChatStats, error) {
	chats, err := s.chats.List(ctx, repository.ChatListFilter{})
	if err != nil {
		return domain.ChatStats{}, err
	}
	return domain.ComputeChatStats(chats), nil
}

// ListForParticipant returns the chats a user takes part in, each with its transcript.
func (s *DirectoryService) ListForParticipant(ctx context.Context, userID string) ([]ChatWithMessages, error) {
	chats, err := s.chats.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ChatWithMessages, 0, len(chats))
	for _, chat := range chats {
		msgs, err := s.messages.ListByChat(ctx, chat.ID, DefaultMessageListLimit)
		if err != nil {
			return nil, fmt.Errorf("load transcript %s: %w", chat.ID, err)
		}
		out = append(out, ChatWithMessages{Chat: chat, Messages: msgs})
	}
	return out, nil
}

// Create stores a new conversation and returns its id. Only presence of user name, user email
// and subject is checked.
func (s *DirectoryService) Create(ctx context.Context, input ChatCreateInput) (string, error) {
	missing := []string{}
	if strings.TrimSpace(input.UserName) == "" {
		missing = append(missing, "user_name")
	}
	if strings.TrimSpace(input.UserEmail) == "" {
		missing = append(missing, "user_email")
	}
	if strings.TrimSpace(input.Subject) == "" {
		missing = append(missing, "subject")
	}
	if len(missing) > 0 {
		return "", apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}

	chat := &domain.Chat{
		UserID:       strings.TrimSpace(input.UserID),
		UserName:     strings.TrimSpace(input.UserName),
		UserEmail:    strings.TrimSpace(input.UserEmail),
		Subject:      strings.TrimSpace(input.Subject),
		Category:     strings.TrimSpace(input.Category),
		Status:       input.Status,
		Priority:     input.Priority,
		Participants: input.Participants,
		Tags:         input.Tags,
		Notes:        input.Notes,
		UnreadCount:  0,
	}
	if chat.Status == "" {
		chat.Status = domain.ChatStatusWaiting
	}
	if chat.Priority == "" {
		chat.Priority = domain.ChatPriorityMedium
	}
	if chat.Category == "" {
		chat.Category = domain.ChatCategoryGeneral
	}
	if len(chat.Participants) == 0 {
		chat.Participants = defaultParticipants(chat.UserID)
	}

	if err := s.chats.Create(ctx, chat); err != nil {
		return "", err
	}

	s.notify(ctx, realtime.ChatsTopic)
	s.publishEvent(ctx, events.NewEvent(events.EventChatCreated, chat.ID, "", events.ChatCreatedPayload{
		UserID:   chat.UserID,
		Subject:  chat.Subject,
		Category: chat.Category,
		Status:   chat.Status,
		Priority: chat.Priority,
	}))
	return chat.ID, nil
}

// UpdateStatus sets any status from any other. Closed and resolved also stamp the closure
// time and, when given, the acting admin.
func (s *DirectoryService) UpdateStatus(ctx context.Context, id string, status domain.ChatStatus, actingAdminID string) error {
	if !status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	chat, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.chats.UpdateStatus(ctx, id, status, actingAdminID); err != nil {
		return s.mapWriteError(err, id)
	}

	s.notify(ctx, realtime.ChatsTopic)
	s.publishEvent(ctx, events.NewEvent(events.EventChatStatusChanged, id, actingAdminID, events.ChatStatusChangedPayload{
		OldStatus: chat.Status,
		NewStatus: status,
	}))
	return nil
}

// UpdatePriority sets the triage priority.
func (s *DirectoryService) UpdatePriority(ctx context.Context, id string, priority domain.ChatPriority, actingAdminID string) error {
	if !priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	chat, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.chats.UpdatePriority(ctx, id, priority); err != nil {
		return s.mapWriteError(err, id)
	}

	s.notify(ctx, realtime.ChatsTopic)
	s.publishEvent(ctx, events.NewEvent(events.EventChatPriorityChanged, id, actingAdminID, events.ChatPriorityChangedPayload{
		OldPriority: chat.Priority,
		NewPriority: priority,
	}))
	return nil
}

// UpdateNotes replaces the internal notes. Concurrent edits are last-write-wins.
func (s *DirectoryService) UpdateNotes(ctx context.Context, id, notes, actingAdminID string) error {
	chat, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.chats.UpdateNotes(ctx, id, notes); err != nil {
		return s.mapWriteError(err, id)
	}

	s.notify(ctx, realtime.ChatsTopic)
	s.publishEvent(ctx, events.NewEvent(events.EventChatNotesUpdated, id, actingAdminID, events.ChatNotesUpdatedPayload{
		OldNotes: chat.Notes,
		NewNotes: notes,
	}))
	return nil
}

// Assign hands the chat to an admin. The participants become exactly the admin and the
// support pool, so a previous assignee is no longer a participant.
func (s *DirectoryService) Assign(ctx context.Context, id, adminID, adminName, actingAdminID string) error {
	if strings.TrimSpace(adminID) == "" {
		return apperrors.NewValidationError("admin_id required", nil)
	}
	chat, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.chats.Assign(ctx, id, adminID, adminName); err != nil {
		return s.mapWriteError(err, id)
	}

	s.notify(ctx, realtime.ChatsTopic)
	s.publishEvent(ctx, events.NewEvent(events.EventChatAssigned, id, actingAdminID, events.ChatAssignedPayload{
		PreviousAdminID: chat.AssignedTo,
		AdminID:         adminID,
		AdminName:       adminName,
	}))
	return nil
}

// MarkRead flips every unread end-user message to read, then resets the unread counter. It is
// best-effort: failures are logged, partial progress is kept and nothing is returned. The
// counter reset runs even when some message updates failed.
func (s *DirectoryService) MarkRead(ctx context.Context, id, adminID string) {
	logger := s.logger.With(zap.String("chat_id", id), zap.String("admin_id", adminID))

	msgs, err := s.messages.ListByChat(ctx, id, 0)
	if err != nil {
		logger.Warn("mark read: load transcript failed", zap.Error(err))
	} else {
		unread := make([]string, 0, len(msgs))
		for i := range msgs {
			if msgs[i].SenderRole != domain.SenderRoleAdmin && !msgs[i].IsRead() {
				unread = append(unread, msgs[i].ID)
			}
		}
		if len(unread) > 0 {
			if _, err := s.messages.MarkRead(ctx, id, unread); err != nil {
				logger.Warn("mark read: message update failed", zap.Int("pending", len(unread)), zap.Error(err))
			}
		}
	}

	if err := s.chats.ResetUnread(ctx, id); err != nil {
		logger.Warn("mark read: unread reset failed", zap.Error(err))
	}
	s.notify(ctx, realtime.ChatsTopic, realtime.MessagesTopic(id))
}

func (s *DirectoryService) mapWriteError(err error, id string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound("chat", map[string]any{"chat_id": id})
	}
	return err
}

func defaultParticipants(userID string) []string {
	if userID == "" {
		return []string{domain.SupportPool}
	}
	return []string{userID, domain.SupportPool}
}

func matchSearch(chats []domain.Chat, search string) []domain.Chat {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return chats
	}
	out := make([]domain.Chat, 0, len(chats))
	for _, chat := range chats {
		if strings.Contains(strings.ToLower(chat.UserName), term) ||
			strings.Contains(strings.ToLower(chat.Subject), term) ||
			strings.Contains(strings.ToLower(chat.UserEmail), term) {
			out = append(out, chat)
		}
	}
	return out
}
