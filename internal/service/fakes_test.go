package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
)

// clock hands out strictly increasing timestamps.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakeChatRepo struct {
	mu       sync.Mutex
	clock    *clock
	chats    map[string]*domain.Chat
	resetErr error
}

func newFakeChatRepo(c *clock) *fakeChatRepo {
	return &fakeChatRepo{clock: c, chats: map[string]*domain.Chat{}}
}

func (r *fakeChatRepo) Create(_ context.Context, chat *domain.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	ts := r.clock.now()
	chat.CreatedAt, chat.UpdatedAt = ts, ts
	cp := *chat
	r.chats[chat.ID] = &cp
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *chat
	return &cp, nil
}

func (r *fakeChatRepo) List(_ context.Context, filter repository.ChatListFilter) ([]domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Chat{}
	for _, chat := range r.chats {
		if filter.Status == "" || chat.Status == filter.Status {
			out = append(out, *chat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeChatRepo) ListByParticipant(ctx context.Context, participantID string) ([]domain.Chat, error) {
	all, _ := r.List(ctx, repository.ChatListFilter{})
	out := []domain.Chat{}
	for _, chat := range all {
		if chat.HasParticipant(participantID) {
			out = append(out, chat)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) update(id string, fn func(*domain.Chat)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	fn(chat)
	chat.UpdatedAt = r.clock.now()
	return nil
}

func (r *fakeChatRepo) UpdateStatus(_ context.Context, id string, status domain.ChatStatus, closedBy string) error {
	return r.update(id, func(c *domain.Chat) {
		c.Status = status
		if status.IsTerminal() {
			ts := r.clock.now()
			c.ClosedAt = &ts
			if closedBy != "" {
				c.ClosedBy = &closedBy
			}
		}
	})
}

func (r *fakeChatRepo) UpdatePriority(_ context.Context, id string, priority domain.ChatPriority) error {
	return r.update(id, func(c *domain.Chat) { c.Priority = priority })
}

func (r *fakeChatRepo) UpdateNotes(_ context.Context, id, notes string) error {
	return r.update(id, func(c *domain.Chat) { c.Notes = notes })
}

func (r *fakeChatRepo) Assign(_ context.Context, id, adminID, adminName string) error {
	return r.update(id, func(c *domain.Chat) {
		c.AssignedTo = &adminID
		c.AssignedToName = &adminName
		c.Participants = []string{adminID, domain.SupportPool}
	})
}

func (r *fakeChatRepo) RecordLastMessage(_ context.Context, id, body string, unreadCount int) error {
	return r.update(id, func(c *domain.Chat) {
		ts := r.clock.now()
		c.LastMessage = body
		c.LastMessageAt = &ts
		c.UnreadCount = unreadCount
	})
}

func (r *fakeChatRepo) ResetUnread(_ context.Context, id string) error {
	if r.resetErr != nil {
		return r.resetErr
	}
	return r.update(id, func(c *domain.Chat) { c.UnreadCount = 0 })
}

type fakeMessageRepo struct {
	mu          sync.Mutex
	clock       *clock
	msgs        []*domain.ChatMessage
	markReadErr error
	markCalls   int
}

func newFakeMessageRepo(c *clock) *fakeMessageRepo {
	return &fakeMessageRepo{clock: c}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.SentAt = r.clock.now()
	if msg.Status == "" {
		msg.Status = domain.MessageStatusSent
	}
	cp := *msg
	r.msgs = append(r.msgs, &cp)
	return nil
}

func (r *fakeMessageRepo) ListByChat(_ context.Context, chatID string, limit int) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ChatMessage{}
	for _, m := range r.msgs {
		if m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, chatID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls++
	if r.markReadErr != nil {
		return 0, r.markReadErr
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for _, m := range r.msgs {
		if m.ChatID == chatID && want[m.ID] && m.Status != domain.MessageStatusRead {
			ts := r.clock.now()
			m.Status = domain.MessageStatusRead
			m.ReadAt = &ts
			n++
		}
	}
	return n, nil
}

type fakeAdminRepo struct {
	mu       sync.Mutex
	admins   map[string]*domain.AdminUser
	uidErrs  map[string]error
	touched  []string
	touchErr error
}

func newFakeAdminRepo(admins ...domain.AdminUser) *fakeAdminRepo {
	r := &fakeAdminRepo{admins: map[string]*domain.AdminUser{}, uidErrs: map[string]error{}}
	for i := range admins {
		a := admins[i]
		r.admins[a.UID] = &a
	}
	return r
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *admin
	r.admins[admin.UID] = &cp
	return nil
}

func (r *fakeAdminRepo) GetByUID(_ context.Context, uid string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.uidErrs[uid]; err != nil {
		return nil, err
	}
	a, ok := r.admins[uid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeAdminRepo) List(_ context.Context) ([]domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.AdminUser{}
	for _, a := range r.admins {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *fakeAdminRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.admins)), nil
}

func (r *fakeAdminRepo) SetActive(_ context.Context, uid string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[uid]
	if !ok {
		return mongo.ErrNoDocuments
	}
	a.Active = active
	return nil
}

func (r *fakeAdminRepo) Update(_ context.Context, uid string, update repository.AdminUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[uid]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if update.Name != nil {
		a.Name = *update.Name
	}
	if update.Role != nil {
		a.Role = *update.Role
	}
	if update.Permissions != nil {
		a.Permissions = append([]string{}, (*update.Permissions)...)
	}
	return nil
}

func (r *fakeAdminRepo) TouchLastLogin(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.touchErr != nil {
		return r.touchErr
	}
	r.touched = append(r.touched, uid)
	return nil
}

type fakeCredentialRepo struct {
	creds map[string]*domain.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{creds: map[string]*domain.Credential{}}
}

func (r *fakeCredentialRepo) Create(_ context.Context, cred *domain.Credential) error {
	if _, ok := r.creds[cred.Email]; ok {
		return errors.New("duplicate email")
	}
	cp := *cred
	r.creds[cred.Email] = &cp
	return nil
}

func (r *fakeCredentialRepo) GetByEmail(_ context.Context, email string) (*domain.Credential, error) {
	cred, ok := r.creds[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *cred
	return &cp, nil
}

type fakeUserRepo struct {
	users     []domain.User
	kycErr    error
	kycStatus map[string]domain.KYCStatus
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	out := []domain.User{}
	for i, u := range r.users {
		if i < filter.Offset {
			continue
		}
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) SetKYCStatus(_ context.Context, id string, status domain.KYCStatus) error {
	if r.kycErr != nil {
		return r.kycErr
	}
	if r.kycStatus == nil {
		r.kycStatus = map[string]domain.KYCStatus{}
	}
	r.kycStatus[id] = status
	return nil
}

type fakeKYCRepo struct {
	subs  map[string]*domain.KYCSubmission
	stats domain.KYCStats
}

func (r *fakeKYCRepo) GetByID(_ context.Context, id string) (*domain.KYCSubmission, error) {
	sub, ok := r.subs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeKYCRepo) List(_ context.Context, filter repository.KYCFilter) ([]domain.KYCSubmission, error) {
	out := []domain.KYCSubmission{}
	for _, sub := range r.subs {
		if filter.Status == "" || sub.Status == filter.Status {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *fakeKYCRepo) Review(_ context.Context, id string, review repository.KYCReview) error {
	sub, ok := r.subs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	ts := time.Now().UTC()
	sub.Status = review.Status
	sub.AdminNotes = review.AdminNotes
	sub.RejectionReason = review.RejectionReason
	if review.Status == domain.KYCSubmissionPendingInfo {
		sub.InfoRequest = review.InfoRequest
		sub.InfoRequestedAt = &ts
	}
	sub.ReviewedAt = &ts
	sub.ReviewedBy = &review.ReviewedBy
	return nil
}

func (r *fakeKYCRepo) Stats(_ context.Context) (domain.KYCStats, error) {
	return r.stats, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.ChatHistory
	err     error
}

func (r *fakeHistoryRepo) Create(_ context.Context, h *domain.ChatHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	h.ID = uuid.NewString()
	h.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *h)
	return nil
}

func (r *fakeHistoryRepo) ListByChat(_ context.Context, chatID string, limit int) ([]domain.ChatHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ChatHistory{}
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ChatID == chatID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}
