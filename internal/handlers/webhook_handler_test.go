package handlers

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/everafterhq/everafter-backend/internal/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
)

func webhookTestApp(mock *payments.MockClient) *fiber.App {
	app := fiber.New()
	handler := NewWebhookHandler(mock, nil)
	app.Post("/api/webhooks/stripe", handler.Platform)
	app.Post("/api/webhooks/stripe/connect", handler.Connect)
	return app
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	mock := &payments.MockClient{VerifyErr: errors.New("signature mismatch")}
	app := webhookTestApp(mock)

	req := httptest.NewRequest("POST", "/api/webhooks/stripe", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=0,v1=bogus")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhookConnectRejectsBadSignature(t *testing.T) {
	mock := &payments.MockClient{VerifyErr: errors.New("signature mismatch")}
	app := webhookTestApp(mock)

	req := httptest.NewRequest("POST", "/api/webhooks/stripe/connect", strings.NewReader(`{}`))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhookAcknowledgesUnhandledEvent(t *testing.T) {
	mock := &payments.MockClient{
		VerifiedEvent: stripe.Event{ID: "evt_1", Type: "customer.created"},
	}
	app := webhookTestApp(mock)

	req := httptest.NewRequest("POST", "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=0,v1=ok")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
