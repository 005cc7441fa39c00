package services

import (
	"testing"

	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/plans"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireFeatureForAnonymous(t *testing.T) {
	gate := NewFeatureGate(nil, nil, "https://everafter.site/upgrade")
	wedding := &models.Wedding{ID: uuid.New()}

	decision, err := gate.RequireFeatureFor(plans.FeatureRegistry, wedding, nil)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonAuthRequired, decision.Reason)
	assert.Equal(t, plans.FeatureRegistry, decision.FeatureKey)
	// Denials for missing auth carry no upgrade link; there is nothing to buy.
	assert.Empty(t, decision.UpgradeURL)
}

func TestAllowedDecision(t *testing.T) {
	decision := allowed(plans.FeatureGuestsLimit, 50)

	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)
	assert.Equal(t, plans.FeatureGuestsLimit, decision.FeatureKey)
	assert.Equal(t, 50, decision.Limit)
}
