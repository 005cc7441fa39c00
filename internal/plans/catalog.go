package plans

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/everafterhq/everafter-backend/internal/models"
)

// Feature keys form a fixed catalog shared across all tiers.
const (
	FeatureGuestsLimit        = "guests_limit"
	FeatureGuestGroups        = "guest_groups"
	FeatureRegistry           = "registry"
	FeatureGalleryLimit       = "gallery_limit"
	FeatureCustomDomain       = "custom_domain"
	FeatureRemoveBranding     = "remove_branding"
	FeatureCollaboratorsLimit = "collaborators_limit"
	FeaturePagesLimit         = "pages_limit"
)

// AllFeatureKeys is the closed feature catalog.
var AllFeatureKeys = []string{
	FeatureGuestsLimit,
	FeatureGuestGroups,
	FeatureRegistry,
	FeatureGalleryLimit,
	FeatureCustomDomain,
	FeatureRemoveBranding,
	FeatureCollaboratorsLimit,
	FeaturePagesLimit,
}

// Feature is one default flag for one tier.
type Feature struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Limit   int    `json:"limit"` // 0 = no numeric limit
}

// Catalog holds the default feature rows per tier. The plan_features table
// overrides these; the catalog is also used to seed that table at startup.
type Catalog struct {
	mu    sync.RWMutex
	tiers map[models.PlanTier][]Feature
}

type catalogFile struct {
	Tiers map[string][]Feature `json:"tiers"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		tiers: map[models.PlanTier][]Feature{
			models.TierFree: {
				{Key: FeatureGuestsLimit, Enabled: true, Limit: 50},
				{Key: FeatureGuestGroups, Enabled: true, Limit: 20},
				{Key: FeatureRegistry, Enabled: false},
				{Key: FeatureGalleryLimit, Enabled: true, Limit: 20},
				{Key: FeatureCustomDomain, Enabled: false},
				{Key: FeatureRemoveBranding, Enabled: false},
				{Key: FeatureCollaboratorsLimit, Enabled: true, Limit: 1},
				{Key: FeaturePagesLimit, Enabled: true, Limit: 3},
			},
			models.TierPremium: {
				{Key: FeatureGuestsLimit, Enabled: true, Limit: 250},
				{Key: FeatureGuestGroups, Enabled: true, Limit: 100},
				{Key: FeatureRegistry, Enabled: true},
				{Key: FeatureGalleryLimit, Enabled: true, Limit: 200},
				{Key: FeatureCustomDomain, Enabled: false},
				{Key: FeatureRemoveBranding, Enabled: true},
				{Key: FeatureCollaboratorsLimit, Enabled: true, Limit: 3},
				{Key: FeaturePagesLimit, Enabled: true, Limit: 10},
			},
			models.TierDeluxe: {
				{Key: FeatureGuestsLimit, Enabled: true}, // unlimited
				{Key: FeatureGuestGroups, Enabled: true},
				{Key: FeatureRegistry, Enabled: true},
				{Key: FeatureGalleryLimit, Enabled: true},
				{Key: FeatureCustomDomain, Enabled: true},
				{Key: FeatureRemoveBranding, Enabled: true},
				{Key: FeatureCollaboratorsLimit, Enabled: true, Limit: 10},
				{Key: FeaturePagesLimit, Enabled: true},
			},
		},
	}
}

// LoadFromFile reads tier defaults from a JSON file, overriding the built-in
// catalog for the tiers the file mentions.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}

	catalog := Default()
	for tier, features := range file.Tiers {
		t := models.PlanTier(tier)
		if !t.Valid() {
			return nil, fmt.Errorf("unknown plan tier %q in catalog file", tier)
		}
		catalog.Set(t, features)
	}
	return catalog, nil
}

// Set replaces the default features for a tier.
func (c *Catalog) Set(tier models.PlanTier, features []Feature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiers[tier] = features
}

// Features returns a copy of the default features for a tier.
func (c *Catalog) Features(tier models.PlanTier) []Feature {
	c.mu.RLock()
	defer c.mu.RUnlock()
	features := c.tiers[tier]
	result := make([]Feature, len(features))
	copy(result, features)
	return result
}

// Feature looks up one default flag. The second return is false when the key
// is not part of the tier's defaults.
func (c *Catalog) Feature(tier models.PlanTier, key string) (Feature, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.tiers[tier] {
		if f.Key == key {
			return f, true
		}
	}
	return Feature{}, false
}
