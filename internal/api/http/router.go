package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/http/handlers"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Chats          *handlers.ChatsHandler
	Records        *handlers.RecordsHandler
	Dashboard      *handlers.DashboardHandler
	Admins         *handlers.AdminsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every route outside /health and /auth/login requires an
// active admin; each area is further gated by its console feature.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	protected.Get("/auth/me", cfg.Auth.Me)

	chats := protected.Group("/chats", auth.RequireFeature(domain.PermissionSupport))
	chats.Get("/", cfg.Chats.List)
	chats.Post("/", cfg.Chats.Create)
	chats.Get("/stats", cfg.Chats.Stats)
	chats.Get("/:id", cfg.Chats.Get)
	chats.Patch("/:id/status", cfg.Chats.UpdateStatus)
	chats.Patch("/:id/priority", cfg.Chats.UpdatePriority)
	chats.Patch("/:id/notes", cfg.Chats.UpdateNotes)
	chats.Post("/:id/assign", cfg.Chats.Assign)
	chats.Post("/:id/read", cfg.Chats.MarkRead)
	chats.Get("/:id/messages", cfg.Chats.ListMessages)
	chats.Post("/:id/messages", cfg.Chats.SendMessage)
	chats.Get("/:id/history", cfg.Chats.History)

	if cfg.Records != nil {
		users := protected.Group("/users", auth.RequireFeature(domain.PermissionUsers))
		users.Get("/", cfg.Records.ListUsers)
		users.Get("/:id", cfg.Records.GetUser)
		users.Get("/:id/chats", auth.RequireFeature(domain.PermissionSupport), cfg.Records.UserChats)

		accounts := protected.Group("/accounts", auth.RequireFeature(domain.PermissionAccounts))
		accounts.Get("/", cfg.Records.ListAccounts)
		accounts.Get("/:id", cfg.Records.GetAccount)

		transactions := protected.Group("/transactions", auth.RequireFeature(domain.PermissionTransactions))
		transactions.Get("/", cfg.Records.ListTransactions)
		transactions.Get("/:id", cfg.Records.GetTransaction)

		kyc := protected.Group("/kyc", auth.RequireFeature(domain.PermissionKYC))
		kyc.Get("/", cfg.Records.ListKYC)
		kyc.Get("/:id", cfg.Records.GetKYC)
		kyc.Post("/:id/approve", cfg.Records.ApproveKYC)
		kyc.Post("/:id/reject", cfg.Records.RejectKYC)
		kyc.Post("/:id/request-info", cfg.Records.RequestKYCInfo)
	}

	if cfg.Dashboard != nil {
		dashboard := protected.Group("/dashboard", auth.RequireFeature(domain.PermissionReports))
		dashboard.Get("/", cfg.Dashboard.Stats)
		dashboard.Get("/alerts", cfg.Dashboard.Alerts)
		dashboard.Get("/activity", cfg.Dashboard.Activity)
	}

	if cfg.Admins != nil {
		admins := protected.Group("/admins", auth.RequireFeature(domain.PermissionAdminManagement))
		admins.Get("/", cfg.Admins.List)
		admins.Post("/", cfg.Admins.Create)
		admins.Patch("/:id", cfg.Admins.Update)
		admins.Post("/:id/activate", cfg.Admins.Activate)
		admins.Post("/:id/deactivate", cfg.Admins.Deactivate)
	}
}
