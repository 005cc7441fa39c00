package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanTierValid(t *testing.T) {
	for _, tier := range AllTiers {
		assert.True(t, tier.Valid(), "tier %s", tier)
	}

	for _, tier := range []PlanTier{"", "platinum", "FREE", "Premium "} {
		assert.False(t, tier.Valid(), "tier %q", tier)
	}
}

func TestHasCollaborator(t *testing.T) {
	w := &Wedding{CollaboratorEmails: []string{"a@example.com", "b@example.com"}}

	assert.True(t, w.HasCollaborator("a@example.com"))
	assert.False(t, w.HasCollaborator("c@example.com"))
	// Comparison is exact: callers normalize before asking.
	assert.False(t, w.HasCollaborator("A@example.com"))

	empty := &Wedding{}
	assert.False(t, empty.HasCollaborator("a@example.com"))
}
