package handlers

import (
	"errors"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// weddingIdentifier picks the identifier for the current request: the
// subdomain-derived slug wins over the path parameter.
func weddingIdentifier(c *fiber.Ctx) string {
	if slug, ok := tenant.WeddingSlugFromHost(c); ok {
		return slug
	}
	return c.Params("identifier")
}

// resolveWedding resolves the request's wedding or writes a uniform 404.
// Returns nil after writing the response.
func resolveWedding(c *fiber.Ctx, weddings *services.WeddingService) *models.Wedding {
	wedding, err := weddings.Resolve(weddingIdentifier(c))
	if err != nil {
		if errors.Is(err, services.ErrWeddingNotFound) {
			_ = c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Wedding not found",
			})
		} else {
			_ = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to resolve wedding",
			})
		}
		return nil
	}
	return wedding
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Error: true, Message: "You do not have permission to do that",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

// writeDenial renders a feature-gate denial with the structured payload the
// UI turns into an upsell.
func writeDenial(c *fiber.Ctx, decision services.Decision) error {
	status := fiber.StatusForbidden
	message := "This feature is not included in the current plan"
	switch decision.Reason {
	case services.ReasonAuthRequired:
		status = fiber.StatusUnauthorized
		message = "Sign in to continue"
	case services.ReasonNotFound:
		status = fiber.StatusNotFound
		message = "Wedding not found"
	}

	return c.Status(status).JSON(dto.DeniedResponse{
		Error:      true,
		Reason:     decision.Reason,
		FeatureKey: decision.FeatureKey,
		UpgradeURL: decision.UpgradeURL,
		Message:    message,
	})
}

func permissionsResponse(p services.Permissions) dto.PermissionsResponse {
	return dto.PermissionsResponse{
		UserID:                 p.UserID,
		Role:                   p.Role,
		CanEdit:                p.CanEdit,
		CanDelete:              p.CanDelete,
		CanManageCollaborators: p.CanManageCollaborators,
	}
}
