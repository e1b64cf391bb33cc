package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/domain"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Admin *domain.AdminUser
}

// AdminResolver loads the current registry record for a session subject. It returns nil
// without error when the subject is no longer an active admin.
type AdminResolver interface {
	ResolveAdmin(ctx context.Context, uid string) (*domain.AdminUser, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	admins AdminResolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, admins AdminResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, admins: admins}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	admin, err := m.Authenticate(c.UserContext(), parts[1])
	if err != nil {
		return err
	}

	c.Locals(principalKey, &Principal{Admin: admin})
	return c.Next()
}

// Authenticate resolves a raw token to an active admin. Every denial reason yields the same
// error so callers cannot tell an unknown admin from an inactive one.
func (m *AuthMiddleware) Authenticate(ctx context.Context, token string) (*domain.AdminUser, error) {
	claims, err := m.tokens.ParseToken(strings.TrimSpace(token))
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	admin, err := m.admins.ResolveAdmin(ctx, claims.AdminID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if admin == nil {
		return nil, apperrors.NewForbidden(AccessDeniedMessage)
	}
	return admin, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.Admin != nil
}
