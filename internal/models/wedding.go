package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Wedding is the tenant root: one row per wedding site. The slug doubles as
// the URL path segment and the implicit subdomain, so it is globally unique.
// OwnerID is nil until the site is claimed; the claim is one-way.
type Wedding struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Slug               string                      `gorm:"size:63;not null;uniqueIndex" json:"slug"`
	Title              string                      `gorm:"size:255" json:"title"`
	OwnerID            *uuid.UUID                  `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	CollaboratorEmails datatypes.JSONSlice[string] `gorm:"type:jsonb;default:'[]'" json:"collaborator_emails"`
	PageConfig         datatypes.JSON              `gorm:"type:jsonb;default:'{}'" json:"page_config"`

	// Stripe connected account for registry gifts.
	StripeAccountID     *string `gorm:"size:255;index" json:"-"`
	PayoutsEnabled      bool    `gorm:"default:false" json:"payouts_enabled"`
	OnboardingCompleted bool    `gorm:"default:false" json:"onboarding_completed"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasCollaborator reports whether the given email (already normalized) is in
// the collaborator set.
func (w *Wedding) HasCollaborator(email string) bool {
	for _, e := range w.CollaboratorEmails {
		if e == email {
			return true
		}
	}
	return false
}
