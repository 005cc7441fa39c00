package plans

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogCoversAllTiersAndKeys(t *testing.T) {
	catalog := Default()

	for _, tier := range models.AllTiers {
		features := catalog.Features(tier)
		require.Len(t, features, len(AllFeatureKeys), "tier %s", tier)

		seen := map[string]bool{}
		for _, f := range features {
			seen[f.Key] = true
		}
		for _, key := range AllFeatureKeys {
			assert.True(t, seen[key], "tier %s missing %s", tier, key)
		}
	}
}

func TestDefaultCatalogFreeTier(t *testing.T) {
	catalog := Default()

	guests, ok := catalog.Feature(models.TierFree, FeatureGuestsLimit)
	require.True(t, ok)
	assert.True(t, guests.Enabled)
	assert.Equal(t, 50, guests.Limit)

	registry, ok := catalog.Feature(models.TierFree, FeatureRegistry)
	require.True(t, ok)
	assert.False(t, registry.Enabled)
}

func TestDefaultCatalogPaidTiersUnlockRegistry(t *testing.T) {
	catalog := Default()

	for _, tier := range []models.PlanTier{models.TierPremium, models.TierDeluxe} {
		registry, ok := catalog.Feature(tier, FeatureRegistry)
		require.True(t, ok, "tier %s", tier)
		assert.True(t, registry.Enabled, "tier %s", tier)
	}

	// Deluxe guests are unlimited: enabled with no numeric limit.
	guests, ok := catalog.Feature(models.TierDeluxe, FeatureGuestsLimit)
	require.True(t, ok)
	assert.True(t, guests.Enabled)
	assert.Zero(t, guests.Limit)
}

func TestCatalogFeatureUnknownKey(t *testing.T) {
	catalog := Default()

	_, ok := catalog.Feature(models.TierFree, "time_travel")
	assert.False(t, ok)
}

func TestCatalogFeaturesReturnsCopy(t *testing.T) {
	catalog := Default()

	features := catalog.Features(models.TierFree)
	features[0].Enabled = !features[0].Enabled

	again := catalog.Features(models.TierFree)
	assert.NotEqual(t, features[0].Enabled, again[0].Enabled)
}

func TestLoadFromFileOverridesTier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	content := `{"tiers": {"free": [{"key": "guests_limit", "enabled": true, "limit": 10}]}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	catalog, err := LoadFromFile(path)
	require.NoError(t, err)

	guests, ok := catalog.Feature(models.TierFree, FeatureGuestsLimit)
	require.True(t, ok)
	assert.Equal(t, 10, guests.Limit)

	// Untouched tiers keep the built-in defaults.
	premium, ok := catalog.Feature(models.TierPremium, FeatureGuestsLimit)
	require.True(t, ok)
	assert.Equal(t, 250, premium.Limit)
}

func TestLoadFromFileRejectsUnknownTier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tiers": {"platinum": []}}`), 0o600))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
