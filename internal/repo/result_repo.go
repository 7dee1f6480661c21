// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for pairwise and
// group-level compatibility results — the idempotent write path of the
// report pipeline.
//
// Invariants enforced here:
//   - Pairwise rows always store the lexicographically sorted user-id pair
//     (CanonicalPair), so (X,Y) and (Y,X) address the same row.
//   - SaveCompatibilityResult upserts on (user_a_id, user_b_id, group_id);
//     SaveGroupCompatibilityResult upserts on group_id. Re-running either
//     with equivalent logical input leaves exactly one row.
//
// Error semantics:
//   - Missing rows surface as ErrNotFound.
//   - A missing table/relation (unprovisioned store) surfaces as
//     ErrStorageUnavailable so callers can fall back to ad hoc generation.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
)

// ErrStorageUnavailable indicates that the target table does not exist or
// the write was rejected by the store itself.
var ErrStorageUnavailable = errors.New("storage unavailable")

// isMissingTable classifies driver errors for an unprovisioned relation.
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "no such table") ||
		strings.Contains(low, "does not exist")
}

// CanonicalPair returns the two user ids in lexicographic order. This is the
// stable identity of a pairwise result regardless of input order.
func CanonicalPair(x, y string) (string, string) {
	if x > y {
		return y, x
	}
	return x, y
}

// SaveCompatibilityResult canonicalizes the pair and upserts the pairwise
// report keyed on (user_a_id, user_b_id, group_id). Calling it twice with
// the same pair and group overwrites rather than duplicates; the latest
// payload wins.
func SaveCompatibilityResult(ctx context.Context, db *gorm.DB, groupID, userX, userY string, report *domain.PairReport) error {
	a, b := CanonicalPair(userX, userY)
	now := time.Now().UTC()
	row := &domain.CompatibilityResult{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		UserAID:     a,
		UserBID:     b,
		Degree:      report.Degree,
		Description: report.Description,
		Advice:      report.Advice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}, {Name: "group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"degree", "description", "advice", "created_at", "updated_at",
		}),
	}).Create(row).Error
	if isMissingTable(err) {
		return ErrStorageUnavailable
	}
	return err
}

// GetCompatibilityResult fetches the stored pairwise report for (userX,
// userY) in groupID, looking up by the canonical sorted pair. Returns
// ErrNotFound when the pair has not been scored.
func GetCompatibilityResult(ctx context.Context, db *gorm.DB, groupID, userX, userY string) (*domain.CompatibilityResult, error) {
	a, b := CanonicalPair(userX, userY)
	var r domain.CompatibilityResult
	err := db.WithContext(ctx).
		Where("group_id = ? AND user_a_id = ? AND user_b_id = ?", groupID, a, b).
		First(&r).Error
	if err != nil {
		if isMissingTable(err) {
			return nil, ErrStorageUnavailable
		}
		return nil, err
	}
	return &r, nil
}

// ListCompatibilityResults returns all stored pairwise reports for a group
// in storage-return order. The aggregation engine iterates this order when
// breaking best/worst ties (first seen wins).
func ListCompatibilityResults(ctx context.Context, db *gorm.DB, groupID string) ([]domain.CompatibilityResult, error) {
	var out []domain.CompatibilityResult
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Find(&out).Error
	if isMissingTable(err) {
		return nil, ErrStorageUnavailable
	}
	return out, err
}

// DeletePairResultsForUser removes every pairwise row in groupID that
// involves userID (on either side of the canonical pair). Used when a member
// leaves or is removed so stale pairs do not skew the aggregate.
func DeletePairResultsForUser(ctx context.Context, db *gorm.DB, groupID, userID string) error {
	err := db.WithContext(ctx).
		Where("group_id = ? AND (user_a_id = ? OR user_b_id = ?)", groupID, userID, userID).
		Delete(&domain.CompatibilityResult{}).Error
	if isMissingTable(err) {
		return ErrStorageUnavailable
	}
	return err
}

// SaveGroupCompatibilityResult upserts the single aggregate report for a
// group, keyed on group_id. Regeneration overwrites the previous row.
func SaveGroupCompatibilityResult(ctx context.Context, db *gorm.DB, r *domain.GroupCompatibilityResult) error {
	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"average_degree", "best_pair", "worst_pair", "analysis", "created_at", "updated_at",
		}),
	}).Create(r).Error
	if isMissingTable(err) {
		return ErrStorageUnavailable
	}
	return err
}

// GetGroupCompatibilityResult fetches the latest stored aggregate report for
// groupID. Returns ErrNotFound when no report exists and
// ErrStorageUnavailable when the table has not been provisioned — both are
// expected, non-fatal read-path outcomes.
func GetGroupCompatibilityResult(ctx context.Context, db *gorm.DB, groupID string) (*domain.GroupCompatibilityResult, error) {
	var r domain.GroupCompatibilityResult
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at desc").
		First(&r).Error
	if err != nil {
		if isMissingTable(err) {
			return nil, ErrStorageUnavailable
		}
		return nil, err
	}
	return &r, nil
}

// ResultsStats returns the number of stored pairwise results for a group and
// the latest updated_at among them. Used for cheap ETag construction on the
// group-report read path.
func ResultsStats(ctx context.Context, db *gorm.DB, groupID string) (int64, *time.Time, error) {
	var total int64
	if err := db.WithContext(ctx).
		Model(&domain.CompatibilityResult{}).
		Where("group_id = ?", groupID).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}
	if total == 0 {
		return 0, nil, nil
	}
	var maxTS time.Time
	row := db.WithContext(ctx).
		Model(&domain.CompatibilityResult{}).
		Where("group_id = ?", groupID).
		Select("MAX(updated_at)").
		Row()
	if err := row.Scan(&maxTS); err != nil {
		return total, nil, nil
	}
	return total, &maxTS, nil
}
