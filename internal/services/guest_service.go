package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrGuestNotFound     = errors.New("guest not found")
	ErrGroupNotFound     = errors.New("guest group not found")
	ErrGuestLimitReached = errors.New("guest limit for the current plan reached")
	ErrInvalidRSVPStatus = errors.New("rsvp status must be confirmed or declined")
)

type GuestService struct {
	db *gorm.DB
}

func NewGuestService(db *gorm.DB) *GuestService {
	return &GuestService{db: db}
}

func (s *GuestService) CreateGroup(weddingID uuid.UUID, req *dto.CreateGuestGroupRequest) (*models.GuestGroup, error) {
	if req.Name == "" {
		return nil, errors.New("group name is required")
	}

	group := models.GuestGroup{
		ID:        uuid.New(),
		WeddingID: weddingID,
		Name:      req.Name,
		Notes:     req.Notes,
	}
	if err := s.db.Create(&group).Error; err != nil {
		return nil, fmt.Errorf("failed to create guest group: %w", err)
	}
	return &group, nil
}

// DeleteGroup removes the group and all its guests in one transaction.
func (s *GuestService) DeleteGroup(weddingID, groupID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var group models.GuestGroup
		if err := tx.Scopes(tenant.ForWedding(weddingID)).First(&group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("failed to load guest group: %w", err)
		}

		if err := tx.Where("group_id = ?", groupID).Delete(&models.Guest{}).Error; err != nil {
			return fmt.Errorf("failed to delete group guests: %w", err)
		}
		return tx.Delete(&group).Error
	})
}

// CreateGuest adds a guest, enforcing the plan's guest limit when one is set.
func (s *GuestService) CreateGuest(weddingID uuid.UUID, req *dto.CreateGuestRequest, guestLimit int) (*models.Guest, error) {
	if req.Name == "" {
		return nil, errors.New("guest name is required")
	}

	if guestLimit > 0 {
		var count int64
		if err := s.db.Model(&models.Guest{}).Scopes(tenant.ForWedding(weddingID)).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count guests: %w", err)
		}
		if count >= int64(guestLimit) {
			return nil, ErrGuestLimitReached
		}
	}

	if req.GroupID != nil {
		var group models.GuestGroup
		if err := s.db.Scopes(tenant.ForWedding(weddingID)).First(&group, "id = ?", *req.GroupID).Error; err != nil {
			return nil, ErrGroupNotFound
		}
	}

	guest := models.Guest{
		ID:         uuid.New(),
		WeddingID:  weddingID,
		GroupID:    req.GroupID,
		Name:       req.Name,
		Email:      tenant.NormalizeEmail(req.Email),
		RSVPStatus: models.RSVPPending,
	}
	if err := s.db.Create(&guest).Error; err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return &guest, nil
}

func (s *GuestService) UpdateGuest(weddingID, guestID uuid.UUID, req *dto.UpdateGuestRequest) (*models.Guest, error) {
	var guest models.Guest
	if err := s.db.Scopes(tenant.ForWedding(weddingID)).First(&guest, "id = ?", guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = tenant.NormalizeEmail(req.Email)
	}
	if req.GroupID != nil {
		var group models.GuestGroup
		if err := s.db.Scopes(tenant.ForWedding(weddingID)).First(&group, "id = ?", *req.GroupID).Error; err != nil {
			return nil, ErrGroupNotFound
		}
		updates["group_id"] = *req.GroupID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&guest).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update guest: %w", err)
		}
	}
	return &guest, nil
}

func (s *GuestService) DeleteGuest(weddingID, guestID uuid.UUID) error {
	res := s.db.Scopes(tenant.ForWedding(weddingID)).Where("id = ?", guestID).Delete(&models.Guest{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete guest: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// RSVP records a guest's answer. Guests may change their answer between
// confirmed and declined; they cannot move back to pending.
func (s *GuestService) RSVP(guestID uuid.UUID, status models.RSVPStatus) (*models.Guest, error) {
	if status != models.RSVPConfirmed && status != models.RSVPDeclined {
		return nil, ErrInvalidRSVPStatus
	}

	var guest models.Guest
	if err := s.db.First(&guest, "id = ?", guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}

	now := time.Now()
	if err := s.db.Model(&guest).Updates(map[string]interface{}{
		"rsvp_status":  status,
		"responded_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to record rsvp: %w", err)
	}
	guest.RSVPStatus = status
	guest.RespondedAt = &now
	return &guest, nil
}

// GuestList returns the full guest list with RSVP tallies.
func (s *GuestService) GuestList(weddingID uuid.UUID) (*dto.GuestListResponse, error) {
	var groups []models.GuestGroup
	if err := s.db.Scopes(tenant.ForWedding(weddingID)).Order("created_at").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list guest groups: %w", err)
	}

	var guests []models.Guest
	if err := s.db.Scopes(tenant.ForWedding(weddingID)).Order("created_at").Find(&guests).Error; err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	resp := &dto.GuestListResponse{Groups: groups, Guests: guests}
	for _, g := range guests {
		switch g.RSVPStatus {
		case models.RSVPConfirmed:
			resp.Confirmed++
		case models.RSVPDeclined:
			resp.Declined++
		default:
			resp.Pending++
		}
	}
	return resp, nil
}
