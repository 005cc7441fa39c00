package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/stripe/stripe-go/v82/webhookendpoint"
)

// CheckoutParams describes a one-off checkout session. When ConnectedAccount
// is set the charge is made directly on that connected account.
type CheckoutParams struct {
	Name             string
	AmountCents      int64
	Currency         string
	SuccessURL       string
	CancelURL        string
	CustomerEmail    string
	Metadata         map[string]string
	ConnectedAccount string
	// ApplicationFeeCents is the platform's cut of a connected-account charge.
	ApplicationFeeCents int64
}

// Client abstracts the Stripe marketplace operations this service uses, so
// handlers and the registration CLI can be exercised against a mock.
type Client interface {
	// CreateConnectedAccount creates an Express account for a wedding.
	CreateConnectedAccount(ctx context.Context, email, weddingID string) (string, error)
	// GetAccount retrieves the live state of a connected account.
	GetAccount(ctx context.Context, accountID string) (*stripe.Account, error)
	// CreateOnboardingLink creates an account link for Express onboarding.
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	// CreateCheckoutSession creates a hosted checkout session.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*stripe.CheckoutSession, error)
	// ListWebhookEndpoints lists endpoints on the platform account, or on a
	// connected account when connectedAccount is non-empty.
	ListWebhookEndpoints(ctx context.Context, connectedAccount string) ([]*stripe.WebhookEndpoint, error)
	// CreateWebhookEndpoint registers a new endpoint. The signing secret is
	// only present on the returned endpoint at creation time.
	CreateWebhookEndpoint(ctx context.Context, url string, events []string, connectedAccount string) (*stripe.WebhookEndpoint, error)
	// VerifyEvent checks the platform webhook signature before any payload is trusted.
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
	// VerifyConnectEvent checks the Connect webhook signature.
	VerifyConnectEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeClient implements Client against the Stripe API.
type StripeClient struct {
	webhookSecret        string
	connectWebhookSecret string
}

// NewStripeClient sets the global Stripe API key and returns a client.
func NewStripeClient(apiKey, webhookSecret, connectWebhookSecret string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{
		webhookSecret:        webhookSecret,
		connectWebhookSecret: connectWebhookSecret,
	}
}

func (c *StripeClient) CreateConnectedAccount(_ context.Context, email, weddingID string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.AddMetadata("wedding_id", weddingID)

	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("payments: create connected account: %w", err)
	}
	return acct.ID, nil
}

func (c *StripeClient) GetAccount(_ context.Context, accountID string) (*stripe.Account, error) {
	acct, err := account.GetByID(accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("payments: retrieve account %s: %w", accountID, err)
	}
	return acct, nil
}

func (c *StripeClient) CreateOnboardingLink(_ context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	link, err := accountlink.New(params)
	if err != nil {
		return "", fmt.Errorf("payments: create onboarding link: %w", err)
	}
	return link.URL, nil
}

func (c *StripeClient) CreateCheckoutSession(_ context.Context, p CheckoutParams) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.ConnectedAccount != "" {
		params.SetStripeAccount(p.ConnectedAccount)
		if p.ApplicationFeeCents > 0 {
			params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
				ApplicationFeeAmount: stripe.Int64(p.ApplicationFeeCents),
			}
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("payments: create checkout session: %w", err)
	}
	return sess, nil
}

func (c *StripeClient) ListWebhookEndpoints(_ context.Context, connectedAccount string) ([]*stripe.WebhookEndpoint, error) {
	params := &stripe.WebhookEndpointListParams{}
	if connectedAccount != "" {
		params.SetStripeAccount(connectedAccount)
	}

	var endpoints []*stripe.WebhookEndpoint
	iter := webhookendpoint.List(params)
	for iter.Next() {
		endpoints = append(endpoints, iter.WebhookEndpoint())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("payments: list webhook endpoints: %w", err)
	}
	return endpoints, nil
}

func (c *StripeClient) CreateWebhookEndpoint(_ context.Context, url string, events []string, connectedAccount string) (*stripe.WebhookEndpoint, error) {
	params := &stripe.WebhookEndpointParams{
		URL:           stripe.String(url),
		EnabledEvents: stripe.StringSlice(events),
	}
	if connectedAccount != "" {
		params.SetStripeAccount(connectedAccount)
	}

	endpoint, err := webhookendpoint.New(params)
	if err != nil {
		return nil, fmt.Errorf("payments: create webhook endpoint: %w", err)
	}
	return endpoint, nil
}

func (c *StripeClient) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("payments: webhook signature verification failed: %w", err)
	}
	return event, nil
}

func (c *StripeClient) VerifyConnectEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.connectWebhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("payments: connect webhook signature verification failed: %w", err)
	}
	return event, nil
}
