package dto

import (
	"encoding/json"

	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/google/uuid"
)

type CreateWeddingRequest struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type UpdateSlugRequest struct {
	Slug string `json:"slug"`
}

type UpdatePageConfigRequest struct {
	PageConfig json.RawMessage `json:"page_config"`
}

type CollaboratorRequest struct {
	Email string `json:"email"`
}

// PermissionsResponse mirrors services.Permissions for the rendering layer.
type PermissionsResponse struct {
	UserID                 *uuid.UUID `json:"user_id"`
	Role                   string     `json:"role"`
	CanEdit                bool       `json:"can_edit"`
	CanDelete              bool       `json:"can_delete"`
	CanManageCollaborators bool       `json:"can_manage_collaborators"`
}

type WeddingResponse struct {
	Wedding     *models.Wedding     `json:"wedding"`
	Plan        models.PlanTier     `json:"plan"`
	Permissions PermissionsResponse `json:"permissions"`
}

type SetPlanRequest struct {
	Tier   models.PlanTier `json:"tier"`
	Reason string          `json:"reason"`
}

type SetPlanFeatureRequest struct {
	Enabled bool            `json:"enabled"`
	Limit   int             `json:"limit"`
	Config  json.RawMessage `json:"config"`
}
