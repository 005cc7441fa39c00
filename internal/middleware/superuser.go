package middleware

import (
	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// SuperuserRequired guards operator routes behind the DB-backed allow-list.
// Must run after JWTProtected.
func SuperuserRequired(permissions *services.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := tenant.CurrentPrincipal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if !permissions.IsSuperuser(principal.Email) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Superuser access required",
			})
		}
		return c.Next()
	}
}
