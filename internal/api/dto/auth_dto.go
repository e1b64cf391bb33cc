package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// LoginRequest payload for console sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminResponse describes a console operator.
type AdminResponse struct {
	ID          string           `json:"id"`
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	Role        domain.AdminRole `json:"role"`
	Permissions []string         `json:"permissions"`
	Active      bool             `json:"is_active"`
	LastLogin   *time.Time       `json:"last_login,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// AdminFromDomain maps an admin record.
func AdminFromDomain(a *domain.AdminUser) AdminResponse {
	perms := a.Permissions
	if perms == nil {
		perms = []string{}
	}
	return AdminResponse{
		ID:          a.UID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		Permissions: perms,
		Active:      a.Active,
		LastLogin:   a.LastLogin,
		CreatedAt:   a.CreatedAt,
	}
}

// CreateAdminRequest payload.
type CreateAdminRequest struct {
	Email       string           `json:"email" validate:"required,email"`
	Password    string           `json:"password" validate:"required,min=8,max=128"`
	Name        string           `json:"name" validate:"required,max=120"`
	Role        domain.AdminRole `json:"role" validate:"omitempty,oneof=super_admin admin moderator"`
	Permissions []string         `json:"permissions" validate:"max=16,dive,oneof=users kyc accounts transactions support reports settings admin_management"`
}

// UpdateAdminRequest payload. Omitted fields are left unchanged; an empty permissions list
// revokes every permission.
type UpdateAdminRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=120"`
	Role        *domain.AdminRole `json:"role" validate:"omitempty,oneof=super_admin admin moderator"`
	Permissions *[]string         `json:"permissions" validate:"omitempty,max=16,dive,oneof=users kyc accounts transactions support reports settings admin_management"`
}
