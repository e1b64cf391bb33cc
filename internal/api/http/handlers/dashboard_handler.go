package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/service"
)

// DashboardHandler serves the console home statistics.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats GET /dashboard.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext(), time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(stats)})
}

// Alerts GET /dashboard/alerts.
func (h *DashboardHandler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.dashboard.Alerts(c.UserContext(), time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AlertsFromService(alerts)})
}

// Activity GET /dashboard/activity?limit=.
func (h *DashboardHandler) Activity(c *fiber.Ctx) error {
	items, err := h.dashboard.RecentActivity(c.UserContext(), parseInt(c.Query("limit"), service.DefaultActivityLimit))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ActivityFromService(items)})
}

func dashboardResponse(s *service.DashboardStats) dto.DashboardResponse {
	recent := make([]dto.RecentTransactionDTO, 0, len(s.RecentTransactions))
	for i := range s.RecentTransactions {
		rt := s.RecentTransactions[i]
		recent = append(recent, dto.RecentTransactionDTO{
			TransactionResponse: dto.TransactionFromDomain(&rt.Transaction),
			UserID:              rt.UserID,
			UserName:            rt.UserName,
		})
	}
	return dto.DashboardResponse{
		Overview: dto.DashboardOverview{
			TotalUsers:        s.Overview.TotalUsers,
			TotalRevenue:      s.Overview.TotalRevenue,
			ActiveAccounts:    s.Overview.ActiveAccounts,
			PendingKYC:        s.Overview.PendingKYC,
			TotalTransactions: s.Overview.TotalTransactions,
			TotalAccounts:     s.Overview.TotalAccounts,
			OpenChats:         s.Overview.OpenChats,
		},
		UserStats: dto.DashboardUserStats{
			Total:             s.Users.Total,
			Verified:          s.Users.Verified,
			Pending:           s.Users.Pending,
			Unverified:        s.Users.Unverified,
			NewThisMonth:      s.Users.NewThisMonth,
			NewLastMonth:      s.Users.NewLastMonth,
			GrowthRatePercent: s.Users.GrowthRatePercent,
			Recent:            dto.UsersFromDomain(s.Users.Recent),
		},
		KYCStats: s.KYC,
		AccountStats: dto.DashboardAccountStats{
			Total:          s.Accounts.Total,
			Active:         s.Accounts.Active,
			Blocked:        s.Accounts.Blocked,
			TotalBalance:   s.Accounts.TotalBalance,
			AverageBalance: s.Accounts.AverageBalance,
			NewThisMonth:   s.Accounts.NewThisMonth,
		},
		TransactionStats: dto.DashboardTxStats{
			Total:              s.Transactions.Total,
			TotalAmount:        s.Transactions.TotalAmount,
			Pending:            s.Transactions.Pending,
			Completed:          s.Transactions.Completed,
			Failed:             s.Transactions.Failed,
			AverageAmount:      s.Transactions.AverageAmount,
			SuccessRatePercent: s.Transactions.SuccessRatePercent,
			NewThisMonth:       s.Transactions.NewThisMonth,
			NewRevenueMonth:    s.Transactions.NewRevenueMonth,
		},
		ChatStats:          s.Chats,
		RecentTransactions: recent,
		Alerts:             dto.AlertsFromService(s.Alerts),
		RecentActivity:     dto.ActivityFromService(s.RecentActivity),
		GeneratedAt:        s.GeneratedAt,
	}
}
