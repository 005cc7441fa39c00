package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/plans"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidTier = errors.New("unknown plan tier")

// FeatureFlag is the evaluated state of one feature for one plan.
type FeatureFlag struct {
	Enabled bool   `json:"enabled"`
	Limit   int    `json:"limit"` // 0 = no numeric limit
	Config  []byte `json:"config,omitempty"`
}

type PlanService struct {
	db      *gorm.DB
	catalog *plans.Catalog
}

func NewPlanService(db *gorm.DB, catalog *plans.Catalog) *PlanService {
	return &PlanService{db: db, catalog: catalog}
}

// GetPlan returns the wedding's tier. This is the single place where the
// free default is materialized: no subscription row means TierFree.
func (s *PlanService) GetPlan(weddingID uuid.UUID) (models.PlanTier, error) {
	return s.getPlan(s.db, weddingID)
}

func (s *PlanService) getPlan(db *gorm.DB, weddingID uuid.UUID) (models.PlanTier, error) {
	var sub models.PlanSubscription
	err := db.Scopes(tenant.ForWedding(weddingID)).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TierFree, nil
		}
		return models.TierFree, fmt.Errorf("failed to look up plan: %w", err)
	}
	if !sub.Tier.Valid() {
		// A bad row should never grant paid features.
		slog.Error("invalid plan tier stored", "wedding_id", weddingID, "tier", sub.Tier)
		return models.TierFree, nil
	}
	return sub.Tier, nil
}

// GetFeatures returns the full flag map for a tier. DB rows override catalog
// defaults; catalog entries fill keys with no row.
func (s *PlanService) GetFeatures(tier models.PlanTier) (map[string]FeatureFlag, error) {
	if !tier.Valid() {
		return nil, ErrInvalidTier
	}

	var rows []models.PlanFeature
	if err := s.db.Where("tier = ?", tier).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load plan features: %w", err)
	}

	result := make(map[string]FeatureFlag, len(plans.AllFeatureKeys))
	for _, f := range s.catalog.Features(tier) {
		result[f.Key] = FeatureFlag{Enabled: f.Enabled, Limit: f.Limit}
	}
	for _, row := range rows {
		result[row.Key] = FeatureFlag{Enabled: row.Enabled, Limit: row.Limit, Config: row.Config}
	}
	return result, nil
}

// GetFeature evaluates a single flag for a tier.
func (s *PlanService) GetFeature(tier models.PlanTier, key string) (FeatureFlag, error) {
	if !tier.Valid() {
		return FeatureFlag{}, ErrInvalidTier
	}

	var row models.PlanFeature
	err := s.db.Where("tier = ? AND key = ?", tier, key).First(&row).Error
	if err == nil {
		return FeatureFlag{Enabled: row.Enabled, Limit: row.Limit, Config: row.Config}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return FeatureFlag{}, fmt.Errorf("failed to load plan feature: %w", err)
	}

	if f, ok := s.catalog.Feature(tier, key); ok {
		return FeatureFlag{Enabled: f.Enabled, Limit: f.Limit}, nil
	}
	// Unknown keys are disabled, not errors.
	return FeatureFlag{}, nil
}

// SetPlan is the privileged plan mutation. The audit record is written
// best-effort after the change: a failed log write is surfaced to operational
// logs but never rolls back or hides the plan change from the caller.
func (s *PlanService) SetPlan(weddingID uuid.UUID, newTier models.PlanTier, actor uuid.UUID, reason, ip, userAgent string) error {
	return s.SetPlanTx(s.db, weddingID, newTier, actor, reason, ip, userAgent)
}

// SetPlanTx is SetPlan running on the caller's transaction, so payment
// reconciliation can commit the plan change atomically with its order state.
func (s *PlanService) SetPlanTx(db *gorm.DB, weddingID uuid.UUID, newTier models.PlanTier, actor uuid.UUID, reason, ip, userAgent string) error {
	if !newTier.Valid() {
		return ErrInvalidTier
	}

	oldTier, err := s.getPlan(db, weddingID)
	if err != nil {
		return err
	}

	sub := models.PlanSubscription{
		ID:        uuid.New(),
		WeddingID: weddingID,
		Tier:      newTier,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wedding_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"tier": newTier}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}

	logEntry := models.PlanChangeLog{
		ID:        uuid.New(),
		WeddingID: weddingID,
		OldTier:   oldTier,
		NewTier:   newTier,
		ActorID:   actor,
		Reason:    reason,
		IP:        ip,
		UserAgent: userAgent,
	}
	if err := db.Create(&logEntry).Error; err != nil {
		slog.Error("plan change audit log write failed",
			"wedding_id", weddingID, "old_tier", oldTier, "new_tier", newTier, "error", err)
	}

	slog.Info("plan changed", "wedding_id", weddingID, "old_tier", oldTier, "new_tier", newTier, "actor", actor)
	return nil
}

// UpsertFeature sets one (tier, key) flag row, overriding the catalog default.
func (s *PlanService) UpsertFeature(tier models.PlanTier, key string, enabled bool, limit int, config []byte) error {
	if !tier.Valid() {
		return ErrInvalidTier
	}

	row := models.PlanFeature{
		ID:      uuid.New(),
		Tier:    tier,
		Key:     key,
		Enabled: enabled,
		Limit:   limit,
	}
	if len(config) > 0 {
		row.Config = config
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tier"}, {Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"enabled": enabled,
			"limit":   limit,
			"config":  row.Config,
		}),
	}).Create(&row).Error
}

// DeleteFeature removes a (tier, key) override, reverting to the catalog default.
func (s *PlanService) DeleteFeature(tier models.PlanTier, key string) error {
	if !tier.Valid() {
		return ErrInvalidTier
	}
	return s.db.Where("tier = ? AND key = ?", tier, key).Delete(&models.PlanFeature{}).Error
}

// SeedFeatures inserts catalog defaults for any (tier, key) pair with no row.
// Existing rows are left untouched so operator overrides survive restarts.
func (s *PlanService) SeedFeatures() error {
	for _, tier := range models.AllTiers {
		for _, f := range s.catalog.Features(tier) {
			row := models.PlanFeature{
				ID:      uuid.New(),
				Tier:    tier,
				Key:     f.Key,
				Enabled: f.Enabled,
				Limit:   f.Limit,
			}
			err := s.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tier"}, {Name: "key"}},
				DoNothing: true,
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to seed plan feature %s/%s: %w", tier, f.Key, err)
			}
		}
	}
	return nil
}
