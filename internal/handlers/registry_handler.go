package handlers

import (
	"errors"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/plans"
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RegistryHandler struct {
	weddings    *services.WeddingService
	permissions *services.PermissionService
	gate        *services.FeatureGate
	registry    *services.RegistryService
	payments    *services.PaymentService
}

func NewRegistryHandler(weddings *services.WeddingService, permissions *services.PermissionService, gate *services.FeatureGate, registry *services.RegistryService, payments *services.PaymentService) *RegistryHandler {
	return &RegistryHandler{weddings: weddings, permissions: permissions, gate: gate, registry: registry, payments: payments}
}

// List is public: visitors browse the registry without signing in.
func (h *RegistryHandler) List(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	items, err := h.registry.ListItems(wedding.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load registry",
		})
	}
	return c.JSON(items)
}

func (h *RegistryHandler) CreateItem(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	decision, err := h.gate.RequireFeatureFor(plans.FeatureRegistry, wedding, principal)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to evaluate plan",
		})
	}
	if !decision.Allowed {
		return writeDenial(c, decision)
	}

	var req dto.CreateRegistryItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.registry.CreateItem(wedding.ID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *RegistryHandler) UpdateItem(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid item id",
		})
	}

	var req dto.CreateRegistryItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.registry.UpdateItem(wedding.ID, itemID, &req)
	if err != nil {
		if errors.Is(err, services.ErrRegistryItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Registry item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update registry item",
		})
	}
	return c.JSON(item)
}

func (h *RegistryHandler) DeleteItem(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid item id",
		})
	}

	if err := h.registry.DeleteItem(wedding.ID, itemID); err != nil {
		if errors.Is(err, services.ErrRegistryItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Registry item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete registry item",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// Contribute is public: any visitor can start a gift checkout.
func (h *RegistryHandler) Contribute(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid item id",
		})
	}

	item, err := h.registry.GetItem(wedding.ID, itemID)
	if err != nil {
		if errors.Is(err, services.ErrRegistryItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Registry item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load registry item",
		})
	}

	var req dto.ContributeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sess, err := h.payments.CreateContributionCheckout(c.UserContext(), wedding, item,
		req.AmountCents, req.ContributorName, req.ContributorEmail, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrPayoutsNotEnabled) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "This wedding cannot accept gifts yet",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(dto.CheckoutResponse{CheckoutURL: sess.URL, SessionID: sess.ID})
}

// Contributions lists a wedding's received gifts for its editors.
func (h *RegistryHandler) Contributions(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	contributions, err := h.payments.ListContributions(wedding.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load contributions",
		})
	}
	return c.JSON(contributions)
}
