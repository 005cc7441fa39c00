package payments

import (
	"context"
	"fmt"
	"sync"

	stripe "github.com/stripe/stripe-go/v82"
)

// MockClient is a test double for Client. Zero value is usable.
type MockClient struct {
	mu sync.Mutex

	// Accounts maps accountID -> live account state returned by GetAccount.
	Accounts map[string]*stripe.Account
	// Endpoints is the current webhook endpoint list.
	Endpoints []*stripe.WebhookEndpoint
	// Sessions collects the checkout params passed to CreateCheckoutSession.
	Sessions []CheckoutParams

	// Error fields allow tests to inject failures.
	CreateAccountErr  error
	GetAccountErr     error
	OnboardingLinkErr error
	CheckoutErr       error
	ListEndpointsErr  error
	CreateEndpointErr error
	VerifyErr         error

	// VerifiedEvent is returned by VerifyEvent/VerifyConnectEvent when VerifyErr is nil.
	VerifiedEvent stripe.Event

	nextAccountSeq  int
	nextSessionSeq  int
	nextEndpointSeq int
}

func (m *MockClient) CreateConnectedAccount(_ context.Context, email, weddingID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateAccountErr != nil {
		return "", m.CreateAccountErr
	}
	m.nextAccountSeq++
	id := fmt.Sprintf("acct_mock_%d", m.nextAccountSeq)
	if m.Accounts == nil {
		m.Accounts = make(map[string]*stripe.Account)
	}
	m.Accounts[id] = &stripe.Account{ID: id, Email: email}
	return id, nil
}

func (m *MockClient) GetAccount(_ context.Context, accountID string) (*stripe.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAccountErr != nil {
		return nil, m.GetAccountErr
	}
	acct, ok := m.Accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("payments: mock account %s not found", accountID)
	}
	return acct, nil
}

func (m *MockClient) CreateOnboardingLink(_ context.Context, accountID, _, _ string) (string, error) {
	if m.OnboardingLinkErr != nil {
		return "", m.OnboardingLinkErr
	}
	return "https://connect.stripe.com/setup/mock/" + accountID, nil
}

func (m *MockClient) CreateCheckoutSession(_ context.Context, params CheckoutParams) (*stripe.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckoutErr != nil {
		return nil, m.CheckoutErr
	}
	m.Sessions = append(m.Sessions, params)
	m.nextSessionSeq++
	return &stripe.CheckoutSession{
		ID:          fmt.Sprintf("cs_mock_%d", m.nextSessionSeq),
		URL:         fmt.Sprintf("https://checkout.stripe.com/mock/%d", m.nextSessionSeq),
		AmountTotal: params.AmountCents,
		Metadata:    params.Metadata,
	}, nil
}

func (m *MockClient) ListWebhookEndpoints(_ context.Context, _ string) ([]*stripe.WebhookEndpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListEndpointsErr != nil {
		return nil, m.ListEndpointsErr
	}
	endpoints := make([]*stripe.WebhookEndpoint, len(m.Endpoints))
	copy(endpoints, m.Endpoints)
	return endpoints, nil
}

func (m *MockClient) CreateWebhookEndpoint(_ context.Context, url string, events []string, _ string) (*stripe.WebhookEndpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateEndpointErr != nil {
		return nil, m.CreateEndpointErr
	}
	m.nextEndpointSeq++
	endpoint := &stripe.WebhookEndpoint{
		ID:     fmt.Sprintf("we_mock_%d", m.nextEndpointSeq),
		URL:    url,
		Secret: fmt.Sprintf("whsec_mock_%d", m.nextEndpointSeq),
	}
	m.Endpoints = append(m.Endpoints, endpoint)
	return endpoint, nil
}

func (m *MockClient) VerifyEvent(_ []byte, _ string) (stripe.Event, error) {
	if m.VerifyErr != nil {
		return stripe.Event{}, m.VerifyErr
	}
	return m.VerifiedEvent, nil
}

func (m *MockClient) VerifyConnectEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return m.VerifyEvent(payload, sigHeader)
}
