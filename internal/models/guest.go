package models

import (
	"time"

	"github.com/google/uuid"
)

// RSVPStatus is the tri-state confirmation status of a guest.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPConfirmed RSVPStatus = "confirmed"
	RSVPDeclined  RSVPStatus = "declined"
)

func (s RSVPStatus) Valid() bool {
	return s == RSVPPending || s == RSVPConfirmed || s == RSVPDeclined
}

// GuestGroup is an invitation unit (a household, a family). Deleting a group
// cascades to its guests.
type GuestGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WeddingID uuid.UUID `gorm:"type:uuid;not null;index" json:"wedding_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Wedding   Wedding   `gorm:"foreignKey:WeddingID" json:"-"`
}

// Guest belongs to at most one group within a wedding.
type Guest struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WeddingID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"wedding_id"`
	GroupID     *uuid.UUID `gorm:"type:uuid;index" json:"group_id,omitempty"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Email       string     `gorm:"size:255" json:"email,omitempty"`
	RSVPStatus  RSVPStatus `gorm:"size:20;not null;default:'pending';index" json:"rsvp_status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
