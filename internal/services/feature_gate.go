package services

import (
	"errors"

	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/tenant"
)

// Denial reasons, machine-readable for the rendering layer.
const (
	ReasonAuthRequired        = "auth_required"
	ReasonPlanUpgradeRequired = "plan_upgrade_required"
	ReasonNotFound            = "not_found"
)

// Decision is the outcome of a feature-gate check. It is a pure value:
// callers apply it, the gate itself mutates nothing.
type Decision struct {
	Allowed    bool
	Reason     string
	FeatureKey string
	Limit      int
	UpgradeURL string
}

// Allowed is the positive decision, carrying the feature's numeric limit.
func allowed(featureKey string, limit int) Decision {
	return Decision{Allowed: true, FeatureKey: featureKey, Limit: limit}
}

type FeatureGate struct {
	weddings   *WeddingService
	plans      *PlanService
	upgradeURL string
}

func NewFeatureGate(weddings *WeddingService, planService *PlanService, upgradeURL string) *FeatureGate {
	return &FeatureGate{weddings: weddings, plans: planService, upgradeURL: upgradeURL}
}

// UpgradeURL is the human-facing upgrade page sent with plan denials.
func (g *FeatureGate) UpgradeURL() string {
	return g.upgradeURL
}

// RequireFeature decides whether featureKey may be used on the identified
// wedding by the given principal. Errors are reserved for store failures;
// every access-control outcome is a Decision value.
func (g *FeatureGate) RequireFeature(featureKey, weddingIdentifier string, principal *tenant.Principal) (Decision, error) {
	wedding, err := g.weddings.Resolve(weddingIdentifier)
	if err != nil {
		if errors.Is(err, ErrWeddingNotFound) {
			return Decision{Reason: ReasonNotFound, FeatureKey: featureKey}, nil
		}
		return Decision{}, err
	}
	return g.RequireFeatureFor(featureKey, wedding, principal)
}

// RequireFeatureFor is RequireFeature for an already-resolved wedding.
func (g *FeatureGate) RequireFeatureFor(featureKey string, wedding *models.Wedding, principal *tenant.Principal) (Decision, error) {
	if principal == nil {
		return Decision{Reason: ReasonAuthRequired, FeatureKey: featureKey}, nil
	}

	tier, err := g.plans.GetPlan(wedding.ID)
	if err != nil {
		return Decision{}, err
	}

	flag, err := g.plans.GetFeature(tier, featureKey)
	if err != nil {
		return Decision{}, err
	}

	if !flag.Enabled {
		return Decision{
			Reason:     ReasonPlanUpgradeRequired,
			FeatureKey: featureKey,
			UpgradeURL: g.upgradeURL,
		}, nil
	}
	return allowed(featureKey, flag.Limit), nil
}
