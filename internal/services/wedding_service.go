package services

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/everafterhq/everafter-backend/internal/dto"
	"github.com/everafterhq/everafter-backend/internal/models"
	"github.com/everafterhq/everafter-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrWeddingNotFound covers both malformed identifiers and missing rows,
	// so unauthenticated callers cannot probe which slugs exist.
	ErrWeddingNotFound = errors.New("wedding not found")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrInvalidSlug     = errors.New("slug must be 3-63 lowercase letters, digits or hyphens")
	ErrAlreadyClaimed  = errors.New("wedding already claimed by another account")
)

// slugPattern also keeps slugs usable as DNS labels.
var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,61}[a-z0-9])$`)

// reservedSlugs can never be wedding slugs because they collide with
// platform subdomains.
var reservedSlugs = map[string]bool{
	"www": true, "api": true, "app": true, "admin": true, "mail": true,
}

type WeddingService struct {
	db *gorm.DB
}

func NewWeddingService(db *gorm.DB) *WeddingService {
	return &WeddingService{db: db}
}

// Resolve maps a user-facing identifier to the canonical wedding row.
// UUID-shaped identifiers are looked up by primary key, everything else by
// slug. Pure read.
func (s *WeddingService) Resolve(identifier string) (*models.Wedding, error) {
	if identifier == "" {
		return nil, ErrWeddingNotFound
	}

	var wedding models.Wedding
	var err error
	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		err = s.db.First(&wedding, "id = ?", id).Error
	} else {
		err = s.db.First(&wedding, "slug = ?", strings.ToLower(identifier)).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeddingNotFound
		}
		return nil, fmt.Errorf("failed to resolve wedding: %w", err)
	}
	return &wedding, nil
}

// SlugFromHost extracts the wedding slug from a subdomain host. Returns false
// when the host is the bare base domain, a reserved label, or an unrelated
// domain.
func SlugFromHost(host, baseDomain string) (string, bool) {
	if host == "" || baseDomain == "" {
		return "", false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	if !strings.HasSuffix(host, "."+baseDomain) {
		return "", false
	}
	label := strings.TrimSuffix(host, "."+baseDomain)
	if label == "" || strings.Contains(label, ".") || reservedSlugs[label] {
		return "", false
	}
	return label, true
}

func (s *WeddingService) Create(principal *tenant.Principal, req *dto.CreateWeddingRequest) (*models.Wedding, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) || reservedSlugs[slug] {
		return nil, ErrInvalidSlug
	}

	var existing models.Wedding
	if err := s.db.First(&existing, "slug = ?", slug).Error; err == nil {
		return nil, ErrSlugTaken
	}

	wedding := models.Wedding{
		ID:                 uuid.New(),
		Slug:               slug,
		Title:              req.Title,
		CollaboratorEmails: datatypes.JSONSlice[string]{},
		PageConfig:         datatypes.JSON([]byte(`{}`)),
	}
	if principal != nil {
		id := principal.ID
		wedding.OwnerID = &id
	}

	if err := s.db.Create(&wedding).Error; err != nil {
		// Unique index races with the pre-check under concurrent creates.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create wedding: %w", err)
	}
	return &wedding, nil
}

// Claim sets the owner of an unowned wedding. The transition is one-way and
// exclusive: the conditional update only matches while owner_id is NULL, so
// two concurrent claims cannot both win. A repeat claim by the current owner
// is a no-op.
func (s *WeddingService) Claim(wedding *models.Wedding, principal *tenant.Principal) error {
	if wedding.OwnerID != nil {
		if *wedding.OwnerID == principal.ID {
			return nil // already owned by the caller
		}
		return ErrAlreadyClaimed
	}

	res := s.db.Model(&models.Wedding{}).
		Where("id = ? AND owner_id IS NULL", wedding.ID).
		Update("owner_id", principal.ID)
	if res.Error != nil {
		return fmt.Errorf("failed to claim wedding: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race; re-read to distinguish repeat claim from conflict.
		var current models.Wedding
		if err := s.db.First(&current, "id = ?", wedding.ID).Error; err != nil {
			return fmt.Errorf("failed to re-read wedding after claim race: %w", err)
		}
		if current.OwnerID != nil && *current.OwnerID == principal.ID {
			return nil
		}
		return ErrAlreadyClaimed
	}

	id := principal.ID
	wedding.OwnerID = &id
	return nil
}

func (s *WeddingService) UpdateSlug(wedding *models.Wedding, newSlug string) error {
	slug := strings.ToLower(strings.TrimSpace(newSlug))
	if !slugPattern.MatchString(slug) || reservedSlugs[slug] {
		return ErrInvalidSlug
	}
	if slug == wedding.Slug {
		return nil
	}

	var existing models.Wedding
	if err := s.db.First(&existing, "slug = ?", slug).Error; err == nil {
		return ErrSlugTaken
	}

	if err := s.db.Model(wedding).Update("slug", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to update slug: %w", err)
	}
	wedding.Slug = slug
	return nil
}

func (s *WeddingService) UpdatePageConfig(wedding *models.Wedding, pageConfig []byte) error {
	if err := s.db.Model(wedding).Update("page_config", datatypes.JSON(pageConfig)).Error; err != nil {
		return fmt.Errorf("failed to update page config: %w", err)
	}
	wedding.PageConfig = datatypes.JSON(pageConfig)
	return nil
}

// AddCollaborator stores the email normalized, matching the normalization
// used on read in the permission evaluator.
func (s *WeddingService) AddCollaborator(wedding *models.Wedding, email string) error {
	normalized := tenant.NormalizeEmail(email)
	if normalized == "" || !strings.Contains(normalized, "@") {
		return errors.New("a valid email is required")
	}
	if wedding.HasCollaborator(normalized) {
		return nil
	}

	emails := append(wedding.CollaboratorEmails, normalized)
	if err := s.db.Model(wedding).Update("collaborator_emails", emails).Error; err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	wedding.CollaboratorEmails = emails
	return nil
}

func (s *WeddingService) RemoveCollaborator(wedding *models.Wedding, email string) error {
	normalized := tenant.NormalizeEmail(email)
	emails := make(datatypes.JSONSlice[string], 0, len(wedding.CollaboratorEmails))
	for _, e := range wedding.CollaboratorEmails {
		if e != normalized {
			emails = append(emails, e)
		}
	}
	if len(emails) == len(wedding.CollaboratorEmails) {
		return nil
	}

	if err := s.db.Model(wedding).Update("collaborator_emails", emails).Error; err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	wedding.CollaboratorEmails = emails
	return nil
}

// Delete removes the wedding and everything scoped to it. Any failed child
// delete rolls back the whole transaction so no orphans are left behind.
func (s *WeddingService) Delete(wedding *models.Wedding) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		scoped := tenant.ForWedding(wedding.ID)
		for _, model := range []interface{}{
			&models.Guest{},
			&models.GuestGroup{},
			&models.Contribution{},
			&models.RegistryItem{},
			&models.PlanSubscription{},
			&models.PlanOrder{},
		} {
			if err := tx.Scopes(scoped).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete wedding records: %w", err)
			}
		}
		return tx.Delete(wedding).Error
	})
}

// List returns weddings for the operator panel, newest first.
func (s *WeddingService) List(page, limit int) ([]models.Wedding, int64, error) {
	var weddings []models.Wedding
	var total int64

	if err := s.db.Model(&models.Wedding{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count weddings: %w", err)
	}

	offset := (page - 1) * limit
	if err := s.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&weddings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list weddings: %w", err)
	}
	return weddings, total, nil
}
