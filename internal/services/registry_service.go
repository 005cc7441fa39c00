package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRegistryItemNotFound = errors.New("registry item not found")

type RegistryService struct {
	db *gorm.DB
}

func NewRegistryService(db *gorm.DB) *RegistryService {
	return &RegistryService{db: db}
}

func (s *RegistryService) CreateItem(weddingID uuid.UUID, req *dto.CreateRegistryItemRequest) (*models.RegistryItem, error) {
	if req.Name == "" {
		return nil, errors.New("item name is required")
	}
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}

	item := models.RegistryItem{
		ID:          uuid.New(),
		WeddingID:   weddingID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		TargetCents: req.TargetCents,
		Currency:    currency,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create registry item: %w", err)
	}
	return &item, nil
}

func (s *RegistryService) GetItem(weddingID, itemID uuid.UUID) (*models.RegistryItem, error) {
	var item models.RegistryItem
	if err := s.db.Scopes(tenant.ForWedding(weddingID)).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistryItemNotFound
		}
		return nil, fmt.Errorf("failed to load registry item: %w", err)
	}
	return &item, nil
}

func (s *RegistryService) UpdateItem(weddingID, itemID uuid.UUID, req *dto.CreateRegistryItemRequest) (*models.RegistryItem, error) {
	item, err := s.GetItem(weddingID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.TargetCents > 0 {
		updates["target_cents"] = req.TargetCents
	}

	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update registry item: %w", err)
		}
	}
	return item, nil
}

func (s *RegistryService) DeleteItem(weddingID, itemID uuid.UUID) error {
	res := s.db.Scopes(tenant.ForWedding(weddingID)).Where("id = ?", itemID).Delete(&models.RegistryItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete registry item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRegistryItemNotFound
	}
	return nil
}

// ListItems is the public registry view.
func (s *RegistryService) ListItems(weddingID uuid.UUID) ([]models.RegistryItem, error) {
	var items []models.RegistryItem
	if err := s.db.Scopes(tenant.ForWedding(weddingID)).Order("created_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list registry items: %w", err)
	}
	return items, nil
}
