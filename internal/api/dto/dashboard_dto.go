package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/service"
)

// DashboardResponse is the console home payload.
type DashboardResponse struct {
	Overview           DashboardOverview      `json:"overview"`
	UserStats          DashboardUserStats     `json:"user_stats"`
	KYCStats           domain.KYCStats        `json:"kyc_stats"`
	AccountStats       DashboardAccountStats  `json:"account_stats"`
	TransactionStats   DashboardTxStats       `json:"transaction_stats"`
	ChatStats          domain.ChatStats       `json:"chat_stats"`
	RecentTransactions []RecentTransactionDTO `json:"recent_transactions"`
	Alerts             []AlertDTO             `json:"alerts"`
	RecentActivity     []ActivityDTO          `json:"recent_activity"`
	GeneratedAt        time.Time              `json:"generated_at"`
}

// DashboardOverview headline counters.
type DashboardOverview struct {
	TotalUsers        int     `json:"total_users"`
	TotalRevenue      float64 `json:"total_revenue"`
	ActiveAccounts    int     `json:"active_accounts"`
	PendingKYC        int     `json:"pending_kyc"`
	TotalTransactions int     `json:"total_transactions"`
	TotalAccounts     int     `json:"total_accounts"`
	OpenChats         int     `json:"open_chats"`
}

// DashboardUserStats customer counters.
type DashboardUserStats struct {
	Total             int            `json:"total_users"`
	Verified          int            `json:"verified_users"`
	Pending           int            `json:"pending_users"`
	Unverified        int            `json:"unverified_users"`
	NewThisMonth      int            `json:"new_users_this_month"`
	NewLastMonth      int            `json:"new_users_last_month"`
	GrowthRatePercent float64        `json:"user_growth_rate"`
	Recent            []UserResponse `json:"recent_users"`
}

// DashboardAccountStats account counters.
type DashboardAccountStats struct {
	Total          int     `json:"total_accounts"`
	Active         int     `json:"active_accounts"`
	Blocked        int     `json:"blocked_accounts"`
	TotalBalance   float64 `json:"total_balance"`
	AverageBalance float64 `json:"average_balance"`
	NewThisMonth   int     `json:"new_accounts_this_month"`
}

// DashboardTxStats transaction counters.
type DashboardTxStats struct {
	Total              int     `json:"total_transactions"`
	TotalAmount        float64 `json:"total_amount"`
	Pending            int     `json:"pending_transactions"`
	Completed          int     `json:"completed_transactions"`
	Failed             int     `json:"failed_transactions"`
	AverageAmount      float64 `json:"average_amount"`
	SuccessRatePercent float64 `json:"success_rate"`
	NewThisMonth       int     `json:"new_transactions_this_month"`
	NewRevenueMonth    float64 `json:"new_revenue_this_month"`
}

// RecentTransactionDTO is a transaction labelled with its owner.
type RecentTransactionDTO struct {
	TransactionResponse
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// AlertDTO is a dashboard alert.
type AlertDTO struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// ActivityDTO is one recent activity entry.
type ActivityDTO struct {
	ID          string    `json:"id"`
	Kind        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Amount      float64   `json:"amount,omitempty"`
	Priority    string    `json:"priority,omitempty"`
}

// AlertsFromService maps alerts.
func AlertsFromService(alerts []service.Alert) []AlertDTO {
	out := make([]AlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertDTO(a))
	}
	return out
}

// ActivityFromService maps the activity feed.
func ActivityFromService(items []service.Activity) []ActivityDTO {
	out := make([]ActivityDTO, 0, len(items))
	for _, a := range items {
		out = append(out, ActivityDTO(a))
	}
	return out
}
