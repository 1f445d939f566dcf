// internal/services/identity_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport-backend/internal/models"
)

var ErrIdentityNotFound = errors.New("identity not found")

// IdentityLookup is the prefill source for a new contract. DocumentData is
// nil when the client never uploaded an ID card.
type IdentityLookup struct {
	UserData     *models.User             `json:"userData"`
	DocumentData *models.IdentityDocument `json:"documentData"`
}

type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

func (s *IdentityService) Lookup(ctx context.Context, userID uuid.UUID) (*IdentityLookup, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	lookup := &IdentityLookup{UserData: &user}

	var doc models.IdentityDocument
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&doc).Error
	switch {
	case err == nil:
		lookup.DocumentData = &doc
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("failed to load identity document: %w", err)
	}

	return lookup, nil
}

// UpsertDocument stores the single identity document of a user.
func (s *IdentityService) UpsertDocument(ctx context.Context, userID uuid.UUID, doc *models.IdentityDocument) (*models.IdentityDocument, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Select("id").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var existing models.IdentityDocument
	err := db.Where("user_id = ?", userID).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load identity document: %w", err)
	}

	doc.UserID = userID
	if err == nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		err = db.Save(doc).Error
	} else {
		err = db.Create(doc).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save identity document: %w", err)
	}
	return doc, nil
}
