package services

import (
	"errors"
	"log/slog"

	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles are coarse labels for the rendering layer; the capability flags are
// what handlers enforce.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleGuest  = "guest"
)

// Permissions is the capability set of one principal over one wedding.
type Permissions struct {
	UserID                 *uuid.UUID `json:"user_id"`
	Role                   string     `json:"role"`
	CanEdit                bool       `json:"can_edit"`
	CanDelete              bool       `json:"can_delete"`
	CanManageCollaborators bool       `json:"can_manage_collaborators"`
}

type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// Evaluate computes the capability set for a principal over a wedding.
// Never returns an error: a failed superuser lookup degrades to "not a
// superuser" so privilege fails closed while the request continues.
func (s *PermissionService) Evaluate(wedding *models.Wedding, principal *tenant.Principal) Permissions {
	if principal == nil {
		return Permissions{Role: RoleGuest}
	}

	isOwner := wedding.OwnerID != nil && *wedding.OwnerID == principal.ID
	isSuperuser := s.IsSuperuser(principal.Email)
	isCollaborator := wedding.HasCollaborator(tenant.NormalizeEmail(principal.Email))
	isUnowned := wedding.OwnerID == nil

	perms := computePermissions(isOwner, isSuperuser, isCollaborator, isUnowned)
	id := principal.ID
	perms.UserID = &id
	return perms
}

// IsSuperuser checks the operator allow-list by verified email. Lookup
// failures other than "no row" are logged and treated as false.
func (s *PermissionService) IsSuperuser(email string) bool {
	if email == "" {
		return false
	}

	var su models.Superuser
	err := s.db.Where("email = ? AND is_active = true", tenant.NormalizeEmail(email)).First(&su).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("superuser lookup failed", "error", err)
		}
		return false
	}
	return true
}

// computePermissions is the pure capability algebra. Unowned weddings are
// editable by any authenticated principal so the claim flow can bootstrap.
func computePermissions(isOwner, isSuperuser, isCollaborator, isUnowned bool) Permissions {
	role := RoleGuest
	switch {
	case isOwner || isSuperuser:
		role = RoleOwner
	case isCollaborator:
		role = RoleEditor
	}

	return Permissions{
		Role:                   role,
		CanEdit:                isOwner || isCollaborator || isSuperuser || isUnowned,
		CanDelete:              isOwner || isSuperuser,
		CanManageCollaborators: isOwner || isSuperuser,
	}
}
