// Package services – ProfileService
//
// This file implements profile submission and retrieval. Profiles are
// upserted on the caller's user id: the first submission creates the row,
// later submissions replace the mutable fields in place.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"
)

// ProfileService provides profile persistence with input normalization.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// Save validates, normalizes, and upserts the caller's profile. The name is
// mandatory; the remaining attributes are free-form and stored trimmed.
func (s *ProfileService) Save(ctx context.Context, userID string, p domain.Profile) (*domain.Profile, error) {
	p.ID = userID
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	p.BloodType = strings.TrimSpace(p.BloodType)
	p.Birthdate = strings.TrimSpace(p.Birthdate)
	p.Zodiac = strings.TrimSpace(p.Zodiac)
	p.MBTI = strings.ToUpper(strings.TrimSpace(p.MBTI))

	if err := repo.UpsertProfile(ctx, s.DB, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the caller's profile, or repo.ErrNotFound.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return repo.GetProfile(ctx, s.DB, userID)
}
