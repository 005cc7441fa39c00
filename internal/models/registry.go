package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus is the lifecycle of a monetary transaction. Transitions are
// monotonic: pending -> completed | failed, completed -> refunded.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// RegistryItem is a gift the couple is collecting money for.
// AmountContributedCents is only ever changed with an atomic SQL increment.
type RegistryItem struct {
	ID                     uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WeddingID              uuid.UUID      `gorm:"type:uuid;not null;index" json:"wedding_id"`
	Name                   string         `gorm:"size:255;not null" json:"name"`
	Description            string         `gorm:"type:text" json:"description,omitempty"`
	ImageURL               string         `gorm:"type:text" json:"image_url,omitempty"`
	TargetCents            int64          `gorm:"default:0" json:"target_cents"` // 0 = open-ended
	AmountContributedCents int64          `gorm:"not null;default:0" json:"amount_contributed_cents"`
	Currency               string         `gorm:"size:3;not null;default:'usd'" json:"currency"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`
}

// Contribution is one registry gift payment. StripeSessionID is the
// idempotency key: reconciliation applies each checkout session at most once.
type Contribution struct {
	ID                    uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WeddingID             uuid.UUID     `gorm:"type:uuid;not null;index" json:"wedding_id"`
	RegistryItemID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"registry_item_id"`
	ContributorName       string        `gorm:"size:255" json:"contributor_name,omitempty"`
	ContributorEmail      string        `gorm:"size:255" json:"-"`
	Message               string        `gorm:"type:text" json:"message,omitempty"`
	AmountCents           int64         `gorm:"not null" json:"amount_cents"`
	Currency              string        `gorm:"size:3;not null;default:'usd'" json:"currency"`
	Status                PaymentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	StripeSessionID       string        `gorm:"size:255;not null;uniqueIndex" json:"-"`
	StripePaymentIntentID string        `gorm:"size:255;index" json:"-"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}
