package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// DeniedResponse is the structured payload returned when the feature gate
// blocks an operation. UpgradeURL lets the UI render an upsell instead of a
// dead end.
type DeniedResponse struct {
	Error      bool   `json:"error"`
	Reason     string `json:"reason"`
	FeatureKey string `json:"feature_key,omitempty"`
	UpgradeURL string `json:"upgrade_url,omitempty"`
	Message    string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
