package dto

type CreateRegistryItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	TargetCents int64  `json:"target_cents"`
	Currency    string `json:"currency"`
}

type ContributeRequest struct {
	AmountCents      int64  `json:"amount_cents"`
	ContributorName  string `json:"contributor_name"`
	ContributorEmail string `json:"contributor_email"`
	Message          string `json:"message"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type OnboardingResponse struct {
	OnboardingURL string `json:"onboarding_url"`
}

type AccountStatusResponse struct {
	Connected           bool `json:"connected"`
	PayoutsEnabled      bool `json:"payouts_enabled"`
	OnboardingCompleted bool `json:"onboarding_completed"`
}
