package handlers

import (
	"encoding/json"
	"errors"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type WeddingHandler struct {
	weddings    *services.WeddingService
	permissions *services.PermissionService
	plans       *services.PlanService
}

func NewWeddingHandler(weddings *services.WeddingService, permissions *services.PermissionService, plans *services.PlanService) *WeddingHandler {
	return &WeddingHandler{weddings: weddings, permissions: permissions, plans: plans}
}

// Create handles POST /weddings. Works for anonymous visitors too: the
// builder-first flow creates an unowned site that is claimed after sign-up.
func (h *WeddingHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateWeddingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	principal, _ := tenant.CurrentPrincipal(c)
	wedding, err := h.weddings.Create(principal, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSlugTaken):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidSlug):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create wedding",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(wedding)
}

// Get handles GET /weddings/:identifier: the public site payload with the
// viewer's permissions and plan embedded for the rendering layer.
func (h *WeddingHandler) Get(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	perms := h.permissions.Evaluate(wedding, principal)

	plan, err := h.plans.GetPlan(wedding.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load plan",
		})
	}

	return c.JSON(dto.WeddingResponse{
		Wedding:     wedding,
		Plan:        plan,
		Permissions: permissionsResponse(perms),
	})
}

// Permissions handles GET /weddings/:identifier/permissions.
func (h *WeddingHandler) Permissions(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	return c.JSON(permissionsResponse(h.permissions.Evaluate(wedding, principal)))
}

// Features handles GET /weddings/:identifier/features: the evaluated flag
// map for the wedding's plan, consumed by the page builder.
func (h *WeddingHandler) Features(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	plan, err := h.plans.GetPlan(wedding.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load plan",
		})
	}

	features, err := h.plans.GetFeatures(plan)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load features",
		})
	}

	return c.JSON(fiber.Map{"plan": plan, "features": features})
}

func (h *WeddingHandler) Claim(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, ok := tenant.CurrentPrincipal(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.weddings.Claim(wedding, principal); err != nil {
		if errors.Is(err, services.ErrAlreadyClaimed) {
			return forbidden(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to claim wedding",
		})
	}
	return c.JSON(wedding)
}

func (h *WeddingHandler) UpdatePageConfig(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	var req dto.UpdatePageConfigRequest
	if err := c.BodyParser(&req); err != nil || !json.Valid(req.PageConfig) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "page_config must be a JSON document",
		})
	}

	if err := h.weddings.UpdatePageConfig(wedding, req.PageConfig); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update page config",
		})
	}
	return c.JSON(wedding)
}

func (h *WeddingHandler) UpdateSlug(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	var req dto.UpdateSlugRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.weddings.UpdateSlug(wedding, req.Slug); err != nil {
		switch {
		case errors.Is(err, services.ErrSlugTaken):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidSlug):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update slug",
		})
	}
	return c.JSON(wedding)
}

func (h *WeddingHandler) Delete(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanDelete {
		return forbidden(c)
	}

	if err := h.weddings.Delete(wedding); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete wedding",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *WeddingHandler) AddCollaborator(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanManageCollaborators {
		return forbidden(c)
	}

	var req dto.CollaboratorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.weddings.AddCollaborator(wedding, req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(wedding)
}

func (h *WeddingHandler) RemoveCollaborator(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanManageCollaborators {
		return forbidden(c)
	}

	var req dto.CollaboratorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.weddings.RemoveCollaborator(wedding, req.Email); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to remove collaborator",
		})
	}
	return c.JSON(wedding)
}
