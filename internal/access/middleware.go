package access

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

// RoleResolver extracts the caller's role from the request. It returns an
// empty role for anonymous callers.
type RoleResolver func(c *fiber.Ctx) domain.Role

// RequirePage refuses callers whose role may not open page.
func RequirePage(resolve RoleResolver, page Page) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CanAccessPage(resolve(c), page) {
			return apperrors.NewForbidden("page not available for role")
		}
		return c.Next()
	}
}

// RequireManage refuses callers that cannot manage tickets.
func RequireManage(resolve RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CanManageTicket(resolve(c)) {
			return apperrors.NewForbidden("support agent or admin role required")
		}
		return c.Next()
	}
}

// RequireAdmin refuses callers that are not admins.
func RequireAdmin(resolve RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CanAdminister(resolve(c)) {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
