package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/service"
)

// AuthHandler exposes console sign-in.
type AuthHandler struct {
	gate *service.AccessGate
}

// NewAuthHandler constructs handler.
func NewAuthHandler(gate *service.AccessGate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.gate.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"admin": dto.AdminFromDomain(res.Admin),
			"auth":  dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt},
		},
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminFromDomain(admin)})
}
