// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// SurveyResponse and PersonalityComment models.
//
// Both tables hold at most one row per user; writes are upserts keyed on
// user_id (update-if-exists else insert), matching the one-response-per-user
// discipline of the survey flow.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
)

// UpsertSurveyResponse inserts or replaces the survey answers for userID.
// Resubmitting overwrites the previous answers; exactly one row remains.
func UpsertSurveyResponse(ctx context.Context, db *gorm.DB, userID string, responses map[string]int) (*domain.SurveyResponse, error) {
	now := time.Now().UTC()
	row := &domain.SurveyResponse{
		ID:        uuid.NewString(),
		UserID:    userID,
		Responses: responses,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"responses", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GetSurveyResponse fetches the survey answers for userID, or ErrNotFound.
// "Not found" is an expected outcome here: a user may be scored before
// completing the survey, and callers substitute an empty-default record.
func GetSurveyResponse(ctx context.Context, db *gorm.DB, userID string) (*domain.SurveyResponse, error) {
	var r domain.SurveyResponse
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertPersonalityComment inserts or replaces the personality comment for
// userID. The cascading recompute triggered by a comment edit is handled at
// the service layer, not here.
func UpsertPersonalityComment(ctx context.Context, db *gorm.DB, c *domain.PersonalityComment) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"desired_traits", "avoid_traits", "ideal_relationship", "updated_at",
		}),
	}).Create(c).Error
}

// GetPersonalityComment fetches the personality comment for userID, or
// ErrNotFound. Like the survey response, absence is tolerated upstream.
func GetPersonalityComment(ctx context.Context, db *gorm.DB, userID string) (*domain.PersonalityComment, error) {
	var c domain.PersonalityComment
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
