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

type GuestHandler struct {
	weddings    *services.WeddingService
	permissions *services.PermissionService
	gate        *services.FeatureGate
	guests      *services.GuestService
}

func NewGuestHandler(weddings *services.WeddingService, permissions *services.PermissionService, gate *services.FeatureGate, guests *services.GuestService) *GuestHandler {
	return &GuestHandler{weddings: weddings, permissions: permissions, gate: gate, guests: guests}
}

func (h *GuestHandler) List(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	list, err := h.guests.GuestList(wedding.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load guest list",
		})
	}
	return c.JSON(list)
}

func (h *GuestHandler) CreateGroup(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	decision, err := h.gate.RequireFeatureFor(plans.FeatureGuestGroups, wedding, principal)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to evaluate plan",
		})
	}
	if !decision.Allowed {
		return writeDenial(c, decision)
	}

	var req dto.CreateGuestGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	group, err := h.guests.CreateGroup(wedding.ID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GuestHandler) DeleteGroup(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid group id",
		})
	}

	if err := h.guests.DeleteGroup(wedding.ID, groupID); err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Guest group not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete guest group",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *GuestHandler) CreateGuest(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	decision, err := h.gate.RequireFeatureFor(plans.FeatureGuestsLimit, wedding, principal)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to evaluate plan",
		})
	}
	if !decision.Allowed {
		return writeDenial(c, decision)
	}

	var req dto.CreateGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	guest, err := h.guests.CreateGuest(wedding.ID, &req, decision.Limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGuestLimitReached):
			return writeDenial(c, services.Decision{
				Reason:     services.ReasonPlanUpgradeRequired,
				FeatureKey: plans.FeatureGuestsLimit,
				UpgradeURL: h.gate.UpgradeURL(),
			})
		case errors.Is(err, services.ErrGroupNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Guest group not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(guest)
}

func (h *GuestHandler) UpdateGuest(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	guestID, err := uuid.Parse(c.Params("guestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid guest id",
		})
	}

	var req dto.UpdateGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	guest, err := h.guests.UpdateGuest(wedding.ID, guestID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGuestNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Guest not found",
			})
		case errors.Is(err, services.ErrGroupNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Guest group not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update guest",
		})
	}
	return c.JSON(guest)
}

func (h *GuestHandler) DeleteGuest(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	guestID, err := uuid.Parse(c.Params("guestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid guest id",
		})
	}

	if err := h.guests.DeleteGuest(wedding.ID, guestID); err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Guest not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete guest",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// RSVP is the public endpoint guests hit from their invitation link. No
// authentication: possession of the guest id is the credential.
func (h *GuestHandler) RSVP(c *fiber.Ctx) error {
	guestID, err := uuid.Parse(c.Params("guestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid guest id",
		})
	}

	var req dto.RSVPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	guest, err := h.guests.RSVP(guestID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGuestNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Guest not found",
			})
		case errors.Is(err, services.ErrInvalidRSVPStatus):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record RSVP",
		})
	}
	return c.JSON(guest)
}
