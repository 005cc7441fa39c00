package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"
)

// DefaultWebhookEvents is the event set the reconciliation path consumes.
var DefaultWebhookEvents = []string{
	"checkout.session.completed",
	"checkout.session.async_payment_failed",
	"checkout.session.expired",
	"charge.refunded",
	"account.updated",
	"account.application.deauthorized",
	"payment_intent.payment_failed",
}

// EnsureWebhookEndpoint registers url as a webhook endpoint unless one with
// the same URL already exists. It returns the endpoint and whether a new one
// was created. The signing secret is only populated on newly created
// endpoints; Stripe never returns it again for existing ones.
func EnsureWebhookEndpoint(ctx context.Context, client Client, url string, events []string, connectedAccount string) (*stripe.WebhookEndpoint, bool, error) {
	existing, err := client.ListWebhookEndpoints(ctx, connectedAccount)
	if err != nil {
		return nil, false, err
	}
	for _, ep := range existing {
		if ep.URL == url {
			return ep, false, nil
		}
	}

	endpoint, err := client.CreateWebhookEndpoint(ctx, url, events, connectedAccount)
	if err != nil {
		return nil, false, err
	}
	return endpoint, true, nil
}
