package handlers

import (
	"errors"
	"strconv"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the superuser console. Every route behind it is
// already guarded by the superuser middleware.
type AdminHandler struct {
	weddings *services.WeddingService
	plans    *services.PlanService
}

func NewAdminHandler(weddings *services.WeddingService, plans *services.PlanService) *AdminHandler {
	return &AdminHandler{weddings: weddings, plans: plans}
}

func (h *AdminHandler) ListWeddings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	weddings, total, err := h.weddings.List(page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list weddings",
		})
	}
	return c.JSON(fiber.Map{
		"weddings": weddings,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// SetPlan applies a manual plan change with a full audit trail.
func (h *AdminHandler) SetPlan(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, ok := tenant.CurrentPrincipal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.SetPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	err := h.plans.SetPlan(wedding.ID, req.Tier, principal.ID, req.Reason, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTier) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to set plan",
		})
	}
	return c.JSON(fiber.Map{"success": true, "tier": req.Tier})
}

// UpsertPlanFeature overrides one flag for a tier, across all weddings on it.
func (h *AdminHandler) UpsertPlanFeature(c *fiber.Ctx) error {
	tier := models.PlanTier(c.Params("tier"))
	key := c.Params("key")

	var req dto.SetPlanFeatureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.plans.UpsertFeature(tier, key, req.Enabled, req.Limit, req.Config); err != nil {
		if errors.Is(err, services.ErrInvalidTier) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update plan feature",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeletePlanFeature drops an override, reverting the flag to its default.
func (h *AdminHandler) DeletePlanFeature(c *fiber.Ctx) error {
	tier := models.PlanTier(c.Params("tier"))
	key := c.Params("key")

	if err := h.plans.DeleteFeature(tier, key); err != nil {
		if errors.Is(err, services.ErrInvalidTier) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete plan feature",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// PlanFeatures lists the evaluated flag map for a tier.
func (h *AdminHandler) PlanFeatures(c *fiber.Ctx) error {
	tier := models.PlanTier(c.Params("tier"))

	features, err := h.plans.GetFeatures(tier)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTier) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load plan features",
		})
	}
	return c.JSON(fiber.Map{"tier": tier, "features": features})
}
