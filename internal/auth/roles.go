package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// AccessDeniedMessage is the single message returned for any access denial.
const AccessDeniedMessage = "admin access required"

// RequireFeature ensures the admin principal can access the console feature.
func RequireFeature(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !principal.Admin.CanAccess(feature) {
			return fiber.NewError(http.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireAdmin ensures caller is authenticated.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
