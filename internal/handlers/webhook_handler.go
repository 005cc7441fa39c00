package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/payments"
	"github.com/everafterhq/everafter-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	stripe "github.com/stripe/stripe-go/v82"
)

// WebhookHandler receives Stripe events. Signature verification happens
// before any payload field is read; processing failures return non-2xx so
// Stripe redelivers.
type WebhookHandler struct {
	stripe   payments.Client
	payments *services.PaymentService
}

func NewWebhookHandler(stripeClient payments.Client, paymentService *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{stripe: stripeClient, payments: paymentService}
}

// Platform handles POST /webhooks/stripe: events for the platform account.
func (h *WebhookHandler) Platform(c *fiber.Ctx) error {
	event, err := h.stripe.VerifyEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		slog.Warn("webhook signature rejected", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}
	return h.dispatch(c, event)
}

// Connect handles POST /webhooks/stripe/connect: events from connected
// accounts, signed with the Connect endpoint's secret.
func (h *WebhookHandler) Connect(c *fiber.Ctx) error {
	event, err := h.stripe.VerifyConnectEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		slog.Warn("connect webhook signature rejected", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}
	return h.dispatch(c, event)
}

func (h *WebhookHandler) dispatch(c *fiber.Ctx, event stripe.Event) error {
	slog.Info("stripe event received", "type", event.Type, "id", event.ID)

	var err error
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &sess); err == nil {
			err = h.payments.HandleCheckoutCompleted(&sess)
		}
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &sess); err == nil {
			err = h.payments.HandleCheckoutFailed(&sess)
		}
	case "charge.refunded":
		var charge stripe.Charge
		if err = json.Unmarshal(event.Data.Raw, &charge); err == nil {
			err = h.payments.HandleChargeRefunded(&charge)
		}
	case "payment_intent.payment_failed":
		// Informational: the checkout session events carry the state we act on.
		slog.Info("payment intent failed", "event_id", event.ID)
	case "account.updated":
		var acct stripe.Account
		if err = json.Unmarshal(event.Data.Raw, &acct); err == nil {
			err = h.payments.HandleAccountUpdated(&acct)
		}
	case "account.application.deauthorized":
		err = h.payments.HandleAccountDeauthorized(event.Account)
	default:
		slog.Debug("unhandled stripe event", "type", event.Type)
	}

	if err != nil {
		slog.Error("stripe event processing failed", "type", event.Type, "id", event.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Event processing failed",
		})
	}
	return c.JSON(fiber.Map{"received": true})
}
