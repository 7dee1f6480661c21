// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Profile
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a profile is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertProfile inserts or replaces the profile row keyed by p.ID. The first
// submission creates the row; later submissions overwrite the mutable fields
// in place, so there is always at most one profile per user.
func UpsertProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "blood_type", "birthdate", "zodiac", "mbti", "updated_at",
		}),
	}).Create(p).Error
}

// GetProfile fetches a single profile by user id, or ErrNotFound if missing.
func GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).
		Where("id = ?", userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfilesByID returns the profiles whose ids are in userIDs. Missing ids
// are silently absent from the result; callers decide how to handle gaps.
func GetProfilesByID(ctx context.Context, db *gorm.DB, userIDs []string) ([]domain.Profile, error) {
	var out []domain.Profile
	err := db.WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&out).Error
	return out, err
}

// ProfileNames resolves user ids to display names. Ids without a profile map
// to the empty string so callers can substitute a placeholder.
func ProfileNames(ctx context.Context, db *gorm.DB, userIDs []string) (map[string]string, error) {
	profiles, err := GetProfilesByID(ctx, db, userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Name
	}
	return names, nil
}
