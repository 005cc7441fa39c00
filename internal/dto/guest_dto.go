package dto

import (
	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/google/uuid"
)

type CreateGuestGroupRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type CreateGuestRequest struct {
	GroupID *uuid.UUID `json:"group_id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
}

type UpdateGuestRequest struct {
	GroupID *uuid.UUID `json:"group_id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
}

type RSVPRequest struct {
	Status models.RSVPStatus `json:"status"`
}

type GuestListResponse struct {
	Groups    []models.GuestGroup `json:"groups"`
	Guests    []models.Guest      `json:"guests"`
	Confirmed int64               `json:"confirmed"`
	Declined  int64               `json:"declined"`
	Pending   int64               `json:"pending"`
}
