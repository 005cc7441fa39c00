package models

import (
	"time"

	"github.com/google/uuid"
)

// Superuser is the flat operator allow-list. Rows are provisioned out of band
// and deactivated via IsActive rather than deleted.
type Superuser struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
