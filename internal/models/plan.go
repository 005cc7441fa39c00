package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PlanTier is the closed set of subscription tiers. A wedding without a
// PlanSubscription row is on TierFree.
type PlanTier string

const (
	TierFree    PlanTier = "free"
	TierPremium PlanTier = "premium"
	TierDeluxe  PlanTier = "deluxe"
)

// AllTiers is the ordered list of valid tiers.
var AllTiers = []PlanTier{TierFree, TierPremium, TierDeluxe}

// Valid reports whether t is one of the known tiers.
func (t PlanTier) Valid() bool {
	for _, tier := range AllTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// PlanSubscription holds the plan tier for a wedding. At most one row per
// wedding; absence means the free tier.
type PlanSubscription struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WeddingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"wedding_id"`
	Tier      PlanTier  `gorm:"size:20;not null;default:'free'" json:"tier"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Wedding   Wedding   `gorm:"foreignKey:WeddingID" json:"-"`
}

// PlanFeature is one feature flag for one tier. (tier, key) is unique; the
// key set is the fixed catalog in internal/plans.
type PlanFeature struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Tier      PlanTier       `gorm:"size:20;not null;uniqueIndex:idx_plan_features_tier_key,priority:1" json:"tier"`
	Key       string         `gorm:"size:100;not null;uniqueIndex:idx_plan_features_tier_key,priority:2" json:"key"`
	Enabled   bool           `gorm:"not null;default:false" json:"enabled"`
	Limit     int            `gorm:"default:0" json:"limit"` // 0 = no numeric limit
	Config    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PlanChangeLog is an append-only audit record for privileged plan changes.
// Writing it is best-effort: a failed log write never rolls back the change.
type PlanChangeLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WeddingID uuid.UUID `gorm:"type:uuid;not null;index" json:"wedding_id"`
	OldTier   PlanTier  `gorm:"size:20;not null" json:"old_tier"`
	NewTier   PlanTier  `gorm:"size:20;not null" json:"new_tier"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	Reason    string    `gorm:"type:text" json:"reason"`
	IP        string    `gorm:"size:45" json:"ip"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanOrder records a plan-upgrade purchase going through Stripe checkout.
// StripeSessionID is the idempotency key for reconciliation.
type PlanOrder struct {
	ID              uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WeddingID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"wedding_id"`
	Tier            PlanTier      `gorm:"size:20;not null" json:"tier"`
	AmountCents     int64         `gorm:"not null" json:"amount_cents"`
	Currency        string        `gorm:"size:3;not null;default:'usd'" json:"currency"`
	Status          PaymentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	StripeSessionID string        `gorm:"size:255;not null;uniqueIndex" json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
