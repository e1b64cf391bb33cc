package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// Pagination bounds for the record browsers.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// RecordsService browses customer records and reviews KYC submissions.
type RecordsService struct {
	users        repository.UserRepository
	accounts     repository.AccountRepository
	transactions repository.TransactionRepository
	kyc          repository.KYCRepository
	logger       *zap.Logger
}

// RecordsDependencies encapsulates repo requirements.
type RecordsDependencies struct {
	UserRepo        repository.UserRepository
	AccountRepo     repository.AccountRepository
	TransactionRepo repository.TransactionRepository
	KYCRepo         repository.KYCRepository
	Logger          *zap.Logger
}

// Page is a one-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize() (limit, offset int) {
	limit = p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// PageResult wraps one page of records.
type PageResult[T any] struct {
	Items   []T
	Page    int
	Limit   int
	HasMore bool
}

// UserListFilter narrows the user browser.
type UserListFilter struct {
	Search    string
	Status    domain.UserStatus
	KYCStatus domain.KYCStatus
	Page
}

// AccountListFilter narrows the account browser.
type AccountListFilter struct {
	UserID string
	Status domain.AccountStatus
	Type   string
	Search string
	Page
}

// TransactionListFilter narrows the transaction browser.
type TransactionListFilter struct {
	UserID    string
	AccountID string
	Status    domain.TransactionStatus
	Type      string
	From      *time.Time
	To        *time.Time
	Page
}

// KYCListFilter narrows the KYC queue.
type KYCListFilter struct {
	Status       domain.KYCSubmissionStatus
	Priority     string
	DocumentType string
	Page
}

// NewRecordsService builds the service.
func NewRecordsService(deps RecordsDependencies) *RecordsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsService{
		users:        deps.UserRepo,
		accounts:     deps.AccountRepo,
		transactions: deps.TransactionRepo,
		kyc:          deps.KYCRepo,
		logger:       logger,
	}
}

// paginate fetches one extra row to learn whether another page exists.
func paginate[T any](p Page, fetch func(limit, offset int) ([]T, error)) (*PageResult[T], error) {
	limit, offset := p.normalize()
	items, err := fetch(limit+1, offset)
	if err != nil {
		return nil, err
	}
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{Items: items, Page: offset/limit + 1, Limit: limit, HasMore: hasMore}, nil
}

func (s *RecordsService) ListUsers(ctx context.Context, filter UserListFilter) (*PageResult[domain.User], error) {
	return paginate(filter.Page, func(limit, offset int) ([]domain.User, error) {
		return s.users.List(ctx, repository.UserFilter{
			EmailPrefix: strings.ToLower(strings.TrimSpace(filter.Search)),
			Status:      filter.Status,
			KYCStatus:   filter.KYCStatus,
			Limit:       limit,
			Offset:      offset,
		})
	})
}

func (s *RecordsService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "user", id)
	}
	return user, nil
}

func (s *RecordsService) ListAccounts(ctx context.Context, filter AccountListFilter) (*PageResult[domain.Account], error) {
	return paginate(filter.Page, func(limit, offset int) ([]domain.Account, error) {
		return s.accounts.List(ctx, repository.AccountFilter{
			UserID:     filter.UserID,
			Status:     filter.Status,
			Type:       filter.Type,
			SearchTerm: strings.TrimSpace(filter.Search),
			Limit:      limit,
			Offset:     offset,
		})
	})
}

func (s *RecordsService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "account", id)
	}
	return account, nil
}

func (s *RecordsService) ListTransactions(ctx context.Context, filter TransactionListFilter) (*PageResult[domain.Transaction], error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperrors.NewValidationError("date range is inverted", map[string]any{"from": filter.From, "to": filter.To})
	}
	return paginate(filter.Page, func(limit, offset int) ([]domain.Transaction, error) {
		return s.transactions.List(ctx, repository.TransactionFilter{
			UserID:      filter.UserID,
			AccountID:   filter.AccountID,
			Status:      filter.Status,
			Type:        filter.Type,
			CreatedFrom: filter.From,
			CreatedTo:   filter.To,
			Limit:       limit,
			Offset:      offset,
		})
	})
}

func (s *RecordsService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "transaction", id)
	}
	return tx, nil
}

func (s *RecordsService) ListKYC(ctx context.Context, filter KYCListFilter) (*PageResult[domain.KYCSubmission], error) {
	return paginate(filter.Page, func(limit, offset int) ([]domain.KYCSubmission, error) {
		return s.kyc.List(ctx, repository.KYCFilter{
			Status:       filter.Status,
			Priority:     filter.Priority,
			DocumentType: filter.DocumentType,
			Limit:        limit,
			Offset:       offset,
		})
	})
}

func (s *RecordsService) GetKYC(ctx context.Context, id string) (*domain.KYCSubmission, error) {
	sub, err := s.kyc.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "kyc submission", id)
	}
	return sub, nil
}

// ApproveKYC marks the submission approved and the owner verified.
func (s *RecordsService) ApproveKYC(ctx context.Context, id, adminID, notes string) (*domain.KYCSubmission, error) {
	return s.review(ctx, id, repository.KYCReview{
		Status:     domain.KYCSubmissionApproved,
		ReviewedBy: adminID,
		AdminNotes: strings.TrimSpace(notes),
	}, domain.KYCStatusVerified)
}

// RejectKYC marks the submission rejected with a reason shown to the owner.
func (s *RecordsService) RejectKYC(ctx context.Context, id, adminID, reason string) (*domain.KYCSubmission, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason required", map[string]any{"field": "reason"})
	}
	return s.review(ctx, id, repository.KYCReview{
		Status:          domain.KYCSubmissionRejected,
		ReviewedBy:      adminID,
		RejectionReason: reason,
	}, domain.KYCStatusRejected)
}

// RequestMoreInfoKYC asks the owner for more documents. The owner's kycStatus is left as is.
func (s *RecordsService) RequestMoreInfoKYC(ctx context.Context, id, adminID, message string) (*domain.KYCSubmission, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("request message required", map[string]any{"field": "message"})
	}
	return s.review(ctx, id, repository.KYCReview{
		Status:      domain.KYCSubmissionPendingInfo,
		ReviewedBy:  adminID,
		InfoRequest: message,
	}, "")
}

// review writes the decision, then updates the owner's kycStatus when userStatus is set. The second write is not
// atomic with the first; a failure there is logged and the review stands.
func (s *RecordsService) review(ctx context.Context, id string, review repository.KYCReview, userStatus domain.KYCStatus) (*domain.KYCSubmission, error) {
	sub, err := s.GetKYC(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.kyc.Review(ctx, id, review); err != nil {
		return nil, notFoundAs(err, "kyc submission", id)
	}
	if sub.UserID != "" && userStatus != "" {
		if err := s.users.SetKYCStatus(ctx, sub.UserID, userStatus); err != nil {
			s.logger.Warn("user kyc status update failed",
				zap.String("kyc_id", id), zap.String("user_id", sub.UserID), zap.Error(err))
		}
	}
	return s.GetKYC(ctx, id)
}

func notFoundAs(err error, resource, id string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}
