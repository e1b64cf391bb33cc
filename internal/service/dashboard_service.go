package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/repository"
)

// Dashboard sizing.
const (
	DefaultDashboardUserLimit = 1000
	recentUsersCount          = 10
	recentTransactionsCount   = 5
	DefaultActivityLimit      = 20
	MaxActivityLimit          = 100
)

// Alert thresholds; an alert fires when the count exceeds the threshold.
const (
	PendingKYCAlertThreshold         = 10
	BlockedAccountsAlertThreshold    = 5
	FailedTransactionsAlertThreshold = 20
)

// Alert severities.
const (
	AlertWarning = "warning"
	AlertDanger  = "danger"
)

// Activity kinds.
const (
	ActivityTransaction = "transaction"
	ActivityKYC         = "kyc"
)

// DashboardService computes console statistics from a bounded snapshot of users. Accounts and
// transactions are taken from the users' embedded records; nothing is persisted.
type DashboardService struct {
	users     repository.UserRepository
	kyc       repository.KYCRepository
	chats     repository.ChatRepository
	userLimit int
	logger    *zap.Logger
}

// DashboardDependencies encapsulates repo requirements.
type DashboardDependencies struct {
	UserRepo  repository.UserRepository
	KYCRepo   repository.KYCRepository
	ChatRepo  repository.ChatRepository
	UserLimit int
	Logger    *zap.Logger
}

// DashboardStats is the full dashboard payload.
type DashboardStats struct {
	Overview           DashboardOverview
	Users              UserStats
	KYC                domain.KYCStats
	Accounts           AccountStats
	Transactions       TransactionStats
	Chats              domain.ChatStats
	RecentTransactions []RecentTransaction
	Alerts             []Alert
	RecentActivity     []Activity
	GeneratedAt        time.Time
}

// Alert flags a backlog that needs operator attention.
type Alert struct {
	Type     string
	Title    string
	Message  string
	Priority string
}

// Activity is one entry of the merged feed of recent transactions and KYC submissions.
type Activity struct {
	ID          string
	Kind        string
	Title       string
	Description string
	Timestamp   time.Time
	Status      string
	Amount      float64
	Priority    string
}

// DashboardOverview holds the headline counters.
type DashboardOverview struct {
	TotalUsers        int
	TotalRevenue      float64
	ActiveAccounts    int
	PendingKYC        int
	TotalTransactions int
	TotalAccounts     int
	OpenChats         int
}

// UserStats summarizes customers.
type UserStats struct {
	Total             int
	Verified          int
	Pending           int
	Unverified        int
	NewThisMonth      int
	NewLastMonth      int
	GrowthRatePercent float64
	Recent            []domain.User
}

// AccountStats summarizes embedded accounts.
type AccountStats struct {
	Total          int
	Active         int
	Blocked        int
	TotalBalance   float64
	AverageBalance float64
	NewThisMonth   int
}

// TransactionStats summarizes embedded transactions.
type TransactionStats struct {
	Total              int
	TotalAmount        float64
	Pending            int
	Completed          int
	Failed             int
	AverageAmount      float64
	SuccessRatePercent float64
	NewThisMonth       int
	NewRevenueMonth    float64
}

// RecentTransaction is a transaction labelled with its owner.
type RecentTransaction struct {
	domain.Transaction
	UserID   string
	UserName string
}

// NewDashboardService builds the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := deps.UserLimit
	if limit <= 0 {
		limit = DefaultDashboardUserLimit
	}
	return &DashboardService{
		users:     deps.UserRepo,
		kyc:       deps.KYCRepo,
		chats:     deps.ChatRepo,
		userLimit: limit,
		logger:    logger,
	}
}

// Stats computes the dashboard relative to now.
func (s *DashboardService) Stats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	users, err := s.users.List(ctx, repository.UserFilter{Limit: s.userLimit})
	if err != nil {
		return nil, err
	}
	kycStats, err := s.kyc.Stats(ctx)
	if err != nil {
		return nil, err
	}

	var chatStats domain.ChatStats
	if s.chats != nil {
		chats, err := s.chats.List(ctx, repository.ChatListFilter{})
		if err != nil {
			s.logger.Warn("dashboard chat stats unavailable", zap.Error(err))
		} else {
			chatStats = domain.ComputeChatStats(chats)
		}
	}

	var submissions []domain.KYCSubmission
	if subs, err := s.recentSubmissions(ctx, DefaultActivityLimit); err != nil {
		s.logger.Warn("dashboard kyc activity unavailable", zap.Error(err))
	} else {
		submissions = subs
	}

	thisMonth, lastMonth := monthStarts(now)
	userStats := computeUserStats(users, thisMonth, lastMonth)
	accountStats := computeAccountStats(users, thisMonth)
	txStats := computeTransactionStats(users, thisMonth)

	return &DashboardStats{
		Overview: DashboardOverview{
			TotalUsers:        userStats.Total,
			TotalRevenue:      txStats.TotalAmount,
			ActiveAccounts:    accountStats.Active,
			PendingKYC:        kycStats.Pending,
			TotalTransactions: txStats.Total,
			TotalAccounts:     accountStats.Total,
			OpenChats:         chatStats.Active + chatStats.Waiting,
		},
		Users:              userStats,
		KYC:                kycStats,
		Accounts:           accountStats,
		Transactions:       txStats,
		Chats:              chatStats,
		RecentTransactions: recentTransactions(users, recentTransactionsCount),
		Alerts:             computeAlerts(kycStats.Pending, accountStats.Blocked, txStats.Failed),
		RecentActivity:     mergeActivity(users, submissions, DefaultActivityLimit),
		GeneratedAt:        now,
	}, nil
}

// Alerts returns the threshold alerts of the current dashboard.
func (s *DashboardService) Alerts(ctx context.Context, now time.Time) ([]Alert, error) {
	stats, err := s.Stats(ctx, now)
	if err != nil {
		return nil, err
	}
	return stats.Alerts, nil
}

// RecentActivity merges the newest transactions and KYC submissions, newest first. Each
// source contributes at most half of limit.
func (s *DashboardService) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	users, err := s.users.List(ctx, repository.UserFilter{Limit: s.userLimit})
	if err != nil {
		return nil, err
	}
	subs, err := s.recentSubmissions(ctx, limit)
	if err != nil {
		return nil, err
	}
	return mergeActivity(users, subs, limit), nil
}

func (s *DashboardService) recentSubmissions(ctx context.Context, limit int) ([]domain.KYCSubmission, error) {
	return s.kyc.List(ctx, repository.KYCFilter{Limit: halfOf(limit)})
}

func halfOf(limit int) int {
	if limit < 2 {
		return 1
	}
	return limit / 2
}

func computeAlerts(pendingKYC, blockedAccounts, failedTransactions int) []Alert {
	alerts := []Alert{}
	if pendingKYC > PendingKYCAlertThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertWarning,
			Title:    "Pending KYC",
			Message:  fmt.Sprintf("%d KYC submissions are awaiting review", pendingKYC),
			Priority: "medium",
		})
	}
	if blockedAccounts > BlockedAccountsAlertThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertDanger,
			Title:    "Blocked accounts",
			Message:  fmt.Sprintf("%d accounts are currently blocked", blockedAccounts),
			Priority: "high",
		})
	}
	if failedTransactions > FailedTransactionsAlertThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertDanger,
			Title:    "Failed transactions",
			Message:  fmt.Sprintf("%d transactions have failed", failedTransactions),
			Priority: "high",
		})
	}
	return alerts
}

func mergeActivity(users []domain.User, subs []domain.KYCSubmission, limit int) []Activity {
	half := halfOf(limit)
	out := []Activity{}
	for _, rt := range recentTransactions(users, half) {
		description := rt.Description
		if description == "" {
			description = fmt.Sprintf("Transaction of %.2f %s", rt.Amount, rt.Currency)
		}
		out = append(out, Activity{
			ID:          rt.ID,
			Kind:        ActivityTransaction,
			Title:       strings.TrimSpace("Transaction " + rt.Type),
			Description: strings.TrimSpace(description),
			Timestamp:   rt.CreatedAt,
			Status:      string(rt.Status),
			Amount:      rt.Amount,
		})
	}

	kyc := append([]domain.KYCSubmission(nil), subs...)
	sort.SliceStable(kyc, func(i, j int) bool {
		return kyc[i].SubmittedAt.After(kyc[j].SubmittedAt)
	})
	if len(kyc) > half {
		kyc = kyc[:half]
	}
	for _, sub := range kyc {
		out = append(out, Activity{
			ID:          sub.ID,
			Kind:        ActivityKYC,
			Title:       "New KYC submission",
			Description: fmt.Sprintf("Document %s submitted", sub.DocumentType),
			Timestamp:   sub.SubmittedAt,
			Status:      string(sub.Status),
			Priority:    sub.Priority,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func monthStarts(now time.Time) (thisMonth, lastMonth time.Time) {
	thisMonth = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return thisMonth, thisMonth.AddDate(0, -1, 0)
}

// GrowthRate is the month-over-month change in percent, 0 when there is no baseline.
func GrowthRate(thisMonth, lastMonth int) float64 {
	if lastMonth <= 0 {
		return 0
	}
	return float64(thisMonth-lastMonth) / float64(lastMonth) * 100
}

func computeUserStats(users []domain.User, thisMonth, lastMonth time.Time) UserStats {
	stats := UserStats{Total: len(users)}
	for i := range users {
		switch users[i].KYCStatus {
		case domain.KYCStatusVerified:
			stats.Verified++
		case domain.KYCStatusPending:
			stats.Pending++
		case domain.KYCStatusUnverified:
			stats.Unverified++
		}
		created := users[i].CreatedAt
		switch {
		case !created.Before(thisMonth):
			stats.NewThisMonth++
		case !created.Before(lastMonth):
			stats.NewLastMonth++
		}
	}
	stats.GrowthRatePercent = GrowthRate(stats.NewThisMonth, stats.NewLastMonth)

	recent := append([]domain.User(nil), users...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentUsersCount {
		recent = recent[:recentUsersCount]
	}
	for i := range recent {
		recent[i].Accounts = nil
		recent[i].Transactions = nil
	}
	stats.Recent = recent
	return stats
}

func computeAccountStats(users []domain.User, thisMonth time.Time) AccountStats {
	var stats AccountStats
	for i := range users {
		for _, acc := range users[i].Accounts {
			stats.Total++
			switch acc.Status {
			case domain.AccountStatusActive:
				stats.Active++
			case domain.AccountStatusBlocked:
				stats.Blocked++
			}
			stats.TotalBalance += acc.Balance
			if !acc.CreatedAt.IsZero() && !acc.CreatedAt.Before(thisMonth) {
				stats.NewThisMonth++
			}
		}
	}
	if stats.Total > 0 {
		stats.AverageBalance = stats.TotalBalance / float64(stats.Total)
	}
	return stats
}

func computeTransactionStats(users []domain.User, thisMonth time.Time) TransactionStats {
	var stats TransactionStats
	for i := range users {
		for _, tx := range users[i].Transactions {
			stats.Total++
			stats.TotalAmount += tx.Amount
			switch tx.Status {
			case domain.TransactionStatusPending:
				stats.Pending++
			case domain.TransactionStatusCompleted:
				stats.Completed++
			case domain.TransactionStatusFailed:
				stats.Failed++
			}
			if !tx.CreatedAt.IsZero() && !tx.CreatedAt.Before(thisMonth) {
				stats.NewThisMonth++
				stats.NewRevenueMonth += tx.Amount
			}
		}
	}
	if stats.Total > 0 {
		stats.AverageAmount = stats.TotalAmount / float64(stats.Total)
		stats.SuccessRatePercent = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats
}

func recentTransactions(users []domain.User, n int) []RecentTransaction {
	out := []RecentTransaction{}
	for i := range users {
		name := strings.TrimSpace(users[i].FirstName + " " + users[i].LastName)
		if name == "" {
			name = users[i].Email
		}
		for _, tx := range users[i].Transactions {
			out = append(out, RecentTransaction{Transaction: tx, UserID: users[i].ID, UserName: name})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
