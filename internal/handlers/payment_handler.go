package handlers

import (
	"errors"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	weddings    *services.WeddingService
	permissions *services.PermissionService
	payments    *services.PaymentService
}

func NewPaymentHandler(weddings *services.WeddingService, permissions *services.PermissionService, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{weddings: weddings, permissions: permissions, payments: payments}
}

// Onboard starts Express onboarding for the wedding's connected account.
func (h *PaymentHandler) Onboard(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, ok := tenant.CurrentPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	url, err := h.payments.StartOnboarding(c.UserContext(), wedding, principal.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to start payment onboarding",
		})
	}
	return c.JSON(dto.OnboardingResponse{OnboardingURL: url})
}

// Status reports the connected account's state, refreshing the stored flags
// from Stripe as a side effect.
func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, _ := tenant.CurrentPrincipal(c)
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	payoutsEnabled, onboardingCompleted, connected, err := h.payments.AccountStatus(c.UserContext(), wedding)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check payment status",
		})
	}
	return c.JSON(dto.AccountStatusResponse{
		Connected:           connected,
		PayoutsEnabled:      payoutsEnabled,
		OnboardingCompleted: onboardingCompleted,
	})
}

// Upgrade opens a plan-upgrade checkout session.
func (h *PaymentHandler) Upgrade(c *fiber.Ctx) error {
	wedding := resolveWedding(c, h.weddings)
	if wedding == nil {
		return nil
	}

	principal, ok := tenant.CurrentPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	if !h.permissions.Evaluate(wedding, principal).CanEdit {
		return forbidden(c)
	}

	var req dto.SetPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sess, err := h.payments.CreatePlanCheckout(c.UserContext(), wedding, req.Tier, principal.Email)
	if err != nil {
		if errors.Is(err, services.ErrNotUpgradeable) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to start upgrade checkout",
		})
	}
	return c.JSON(dto.CheckoutResponse{CheckoutURL: sess.URL, SessionID: sess.ID})
}
