package services

import (
	"testing"

	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestComputePermissions(t *testing.T) {
	tests := []struct {
		name           string
		isOwner        bool
		isSuperuser    bool
		isCollaborator bool
		isUnowned      bool
		wantRole       string
		wantEdit       bool
		wantDelete     bool
		wantManage     bool
	}{
		{
			name:     "no relationship",
			wantRole: RoleGuest,
		},
		{
			name:       "owner",
			isOwner:    true,
			wantRole:   RoleOwner,
			wantEdit:   true,
			wantDelete: true,
			wantManage: true,
		},
		{
			name:           "collaborator",
			isCollaborator: true,
			wantRole:       RoleEditor,
			wantEdit:       true,
		},
		{
			name:        "superuser on someone else's wedding",
			isSuperuser: true,
			wantRole:    RoleOwner,
			wantEdit:    true,
			wantDelete:  true,
			wantManage:  true,
		},
		{
			name:      "authenticated stranger on unowned wedding",
			isUnowned: true,
			wantRole:  RoleGuest,
			wantEdit:  true,
		},
		{
			name:           "collaborator cannot delete or manage",
			isCollaborator: true,
			isUnowned:      false,
			wantRole:       RoleEditor,
			wantEdit:       true,
			wantDelete:     false,
			wantManage:     false,
		},
		{
			name:           "owner who is also collaborator",
			isOwner:        true,
			isCollaborator: true,
			wantRole:       RoleOwner,
			wantEdit:       true,
			wantDelete:     true,
			wantManage:     true,
		},
		{
			name:           "superuser collaborator on unowned wedding",
			isSuperuser:    true,
			isCollaborator: true,
			isUnowned:      true,
			wantRole:       RoleOwner,
			wantEdit:       true,
			wantDelete:     true,
			wantManage:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computePermissions(tt.isOwner, tt.isSuperuser, tt.isCollaborator, tt.isUnowned)
			assert.Equal(t, tt.wantRole, got.Role)
			assert.Equal(t, tt.wantEdit, got.CanEdit, "CanEdit")
			assert.Equal(t, tt.wantDelete, got.CanDelete, "CanDelete")
			assert.Equal(t, tt.wantManage, got.CanManageCollaborators, "CanManageCollaborators")
		})
	}
}

func TestComputePermissionsDeleteImpliesEdit(t *testing.T) {
	// Every combination that grants delete must also grant edit.
	for i := 0; i < 16; i++ {
		p := computePermissions(i&1 != 0, i&2 != 0, i&4 != 0, i&8 != 0)
		if p.CanDelete {
			assert.True(t, p.CanEdit, "combination %04b grants delete without edit", i)
		}
		if p.CanManageCollaborators {
			assert.True(t, p.CanEdit, "combination %04b grants collaborator management without edit", i)
		}
	}
}

func TestEvaluateAnonymous(t *testing.T) {
	svc := NewPermissionService(nil)
	ownerID := uuid.New()
	wedding := &models.Wedding{ID: uuid.New(), OwnerID: &ownerID}

	got := svc.Evaluate(wedding, nil)

	assert.Equal(t, RoleGuest, got.Role)
	assert.Nil(t, got.UserID)
	assert.False(t, got.CanEdit)
	assert.False(t, got.CanDelete)
	assert.False(t, got.CanManageCollaborators)
}

func TestEvaluateOwner(t *testing.T) {
	svc := NewPermissionService(nil)
	ownerID := uuid.New()
	wedding := &models.Wedding{ID: uuid.New(), OwnerID: &ownerID}

	// Empty email short-circuits the superuser lookup.
	got := svc.Evaluate(wedding, &tenant.Principal{ID: ownerID})

	assert.Equal(t, RoleOwner, got.Role)
	assert.True(t, got.CanEdit)
	assert.True(t, got.CanDelete)
	assert.True(t, got.CanManageCollaborators)
	assert.Equal(t, ownerID, *got.UserID)
}

func TestEvaluateCollaboratorEmailNormalized(t *testing.T) {
	svc := NewPermissionService(nil)
	ownerID := uuid.New()
	wedding := &models.Wedding{
		ID:                 uuid.New(),
		OwnerID:            &ownerID,
		CollaboratorEmails: datatypes.JSONSlice[string]{"planner@example.com"},
	}

	// The collaborator check normalizes before comparing, so a mixed-case
	// principal email still matches. An empty Email would skip the superuser
	// lookup entirely; HasCollaborator receives the normalized form either way.
	got := svc.Evaluate(wedding, &tenant.Principal{ID: uuid.New(), Email: ""})
	assert.Equal(t, RoleGuest, got.Role)

	assert.True(t, wedding.HasCollaborator(tenant.NormalizeEmail("  Planner@Example.COM ")))
	assert.False(t, wedding.HasCollaborator(tenant.NormalizeEmail("other@example.com")))
}

func TestEvaluateUnownedWedding(t *testing.T) {
	svc := NewPermissionService(nil)
	wedding := &models.Wedding{ID: uuid.New()}

	got := svc.Evaluate(wedding, &tenant.Principal{ID: uuid.New()})

	// Any authenticated principal can edit an unowned wedding, but not
	// delete it or manage collaborators.
	assert.Equal(t, RoleGuest, got.Role)
	assert.True(t, got.CanEdit)
	assert.False(t, got.CanDelete)
	assert.False(t, got.CanManageCollaborators)
}
