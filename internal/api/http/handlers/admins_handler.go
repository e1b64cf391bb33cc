package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/service"
)

// AdminRegistry is the admin management surface of the access gate.
type AdminRegistry interface {
	ListAdmins(ctx context.Context) ([]domain.AdminUser, error)
	CreateAdmin(ctx context.Context, actor *domain.AdminUser, input service.CreateAdminInput) (*domain.AdminUser, error)
	UpdateAdmin(ctx context.Context, actor *domain.AdminUser, uid string, input service.UpdateAdminInput) (*domain.AdminUser, error)
	SetAdminActive(ctx context.Context, actor *domain.AdminUser, uid string, active bool) (*domain.AdminUser, error)
}

// AdminsHandler manages the admin registry.
type AdminsHandler struct {
	gate AdminRegistry
}

// NewAdminsHandler constructs handler.
func NewAdminsHandler(gate AdminRegistry) *AdminsHandler {
	return &AdminsHandler{gate: gate}
}

// List GET /admins.
func (h *AdminsHandler) List(c *fiber.Ctx) error {
	admins, err := h.gate.ListAdmins(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.AdminResponse, 0, len(admins))
	for i := range admins {
		out = append(out, dto.AdminFromDomain(&admins[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create POST /admins.
func (h *AdminsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.CreateAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	admin, err := h.gate.CreateAdmin(c.UserContext(), actor, service.CreateAdminInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Role:        req.Role,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AdminFromDomain(admin)})
}

// Update PATCH /admins/:id.
func (h *AdminsHandler) Update(c *fiber.Ctx) error {
	actor, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	admin, err := h.gate.UpdateAdmin(c.UserContext(), actor, c.Params("id"), service.UpdateAdminInput{
		Name:        req.Name,
		Role:        req.Role,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminFromDomain(admin)})
}

// Activate POST /admins/:id/activate.
func (h *AdminsHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

// Deactivate POST /admins/:id/deactivate.
func (h *AdminsHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *AdminsHandler) setActive(c *fiber.Ctx, active bool) error {
	actor, err := currentAdmin(c)
	if err != nil {
		return err
	}
	admin, err := h.gate.SetAdminActive(c.UserContext(), actor, c.Params("id"), active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminFromDomain(admin)})
}
