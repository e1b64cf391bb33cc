package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/service"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

// bind decodes the body into req and runs tag validation.
func bind(c *fiber.Ctx, req any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"errors": dto.ParseErrors(err)})
	}
	return nil
}

func currentAdmin(c *fiber.Ctx) (*domain.AdminUser, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("admin required")
	}
	return principal.Admin, nil
}

func parsePage(c *fiber.Ctx) service.Page {
	return service.Page{
		Page:  parseInt(c.Query("page"), 1),
		Limit: parseInt(c.Query("limit"), service.DefaultPageLimit),
	}
}

func pageMeta[T any](res *service.PageResult[T]) dto.PageMeta {
	return dto.PageMeta{Page: res.Page, Limit: res.Limit, HasMore: res.HasMore}
}

func parseTime(val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		if d, derr := time.Parse(time.DateOnly, val); derr == nil {
			return &d, nil
		}
		return nil, apperrors.NewValidationError("invalid timestamp", map[string]any{"value": val})
	}
	return &t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
