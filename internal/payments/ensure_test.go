package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
)

func TestDefaultWebhookEventsCoverReconciliation(t *testing.T) {
	// Every event the reconciliation path acts on must be registered, or the
	// endpoint never receives it. checkout.session.expired in particular is
	// what moves abandoned sessions to failed.
	for _, event := range []string{
		"checkout.session.completed",
		"checkout.session.async_payment_failed",
		"checkout.session.expired",
		"charge.refunded",
		"account.updated",
		"account.application.deauthorized",
	} {
		assert.Contains(t, DefaultWebhookEvents, event)
	}
}

func TestEnsureWebhookEndpointCreates(t *testing.T) {
	mock := &MockClient{}

	endpoint, created, err := EnsureWebhookEndpoint(context.Background(), mock,
		"https://api.everafter.site/api/webhooks/stripe", DefaultWebhookEvents, "")
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "https://api.everafter.site/api/webhooks/stripe", endpoint.URL)
	assert.NotEmpty(t, endpoint.Secret)
}

func TestEnsureWebhookEndpointIdempotent(t *testing.T) {
	mock := &MockClient{}
	url := "https://api.everafter.site/api/webhooks/stripe"

	first, created, err := EnsureWebhookEndpoint(context.Background(), mock, url, DefaultWebhookEvents, "")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := EnsureWebhookEndpoint(context.Background(), mock, url, DefaultWebhookEvents, "")
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, mock.Endpoints, 1)
}

func TestEnsureWebhookEndpointDistinctURLs(t *testing.T) {
	mock := &MockClient{
		Endpoints: []*stripe.WebhookEndpoint{{ID: "we_1", URL: "https://old.example.com/hook"}},
	}

	_, created, err := EnsureWebhookEndpoint(context.Background(), mock,
		"https://api.everafter.site/api/webhooks/stripe", DefaultWebhookEvents, "")
	require.NoError(t, err)

	assert.True(t, created)
	assert.Len(t, mock.Endpoints, 2)
}

func TestEnsureWebhookEndpointListError(t *testing.T) {
	mock := &MockClient{ListEndpointsErr: errors.New("stripe unavailable")}

	_, _, err := EnsureWebhookEndpoint(context.Background(), mock,
		"https://api.everafter.site/api/webhooks/stripe", DefaultWebhookEvents, "")
	assert.Error(t, err)
	assert.Empty(t, mock.Endpoints)
}

func TestEnsureWebhookEndpointCreateError(t *testing.T) {
	mock := &MockClient{CreateEndpointErr: errors.New("stripe unavailable")}

	_, created, err := EnsureWebhookEndpoint(context.Background(), mock,
		"https://api.everafter.site/api/webhooks/stripe", DefaultWebhookEvents, "")
	assert.Error(t, err)
	assert.False(t, created)
}
