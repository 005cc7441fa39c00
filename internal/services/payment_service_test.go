package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeAccountStatus(t *testing.T) {
	tests := []struct {
		name          string
		charges       bool
		payouts       bool
		details       bool
		wantPayouts   bool
		wantOnboarded bool
	}{
		{"fresh account", false, false, false, false, false},
		{"details submitted, capabilities pending", false, false, true, false, true},
		{"charges only", true, false, true, false, true},
		{"payouts only", false, true, true, false, true},
		{"fully enabled", true, true, true, true, true},
		{"capabilities without details", true, true, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payouts, onboarded := recomputeAccountStatus(tt.charges, tt.payouts, tt.details)
			assert.Equal(t, tt.wantPayouts, payouts, "payoutsEnabled")
			assert.Equal(t, tt.wantOnboarded, onboarded, "onboardingCompleted")
		})
	}
}
