// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Group and
// GroupMember models.
//
// Error semantics:
//   - Missing rows surface as ErrNotFound.
//   - A duplicate (group_id, user_id) membership insert surfaces as
//     ErrDuplicate so the service layer can report a double join.
//   - Other DB errors are propagated raw.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
)

// ErrDuplicate indicates a unique-constraint violation, e.g. joining a group
// the user already belongs to.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation classifies driver errors for unique-index conflicts.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateGroup inserts a group row and its creator's admin membership in one
// transaction. The caller supplies the generated join-code group id.
func CreateGroup(ctx context.Context, db *gorm.DB, groupID, name, createdBy string) (*domain.Group, error) {
	g := &domain.Group{
		GroupID:   groupID,
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		return tx.Create(&domain.GroupMember{
			ID:        uuid.NewString(),
			GroupID:   groupID,
			UserID:    createdBy,
			Role:      domain.RoleAdmin,
			CreatedAt: g.CreatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGroup fetches a group by its join-code id, or ErrNotFound.
func GetGroup(ctx context.Context, db *gorm.DB, groupID string) (*domain.Group, error) {
	var g domain.Group
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CountGroups returns the total number of groups for pagination.
func CountGroups(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Group{}).
		Count(&total).Error
	return total, err
}

// ListGroupsPage returns a page of groups ordered by creation time
// descending.
func ListGroupsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Group, error) {
	var out []domain.Group
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListUserGroups returns the groups userID belongs to, most recent first.
func ListUserGroups(ctx context.Context, db *gorm.DB, userID string) ([]domain.Group, error) {
	var out []domain.Group
	err := db.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = groups.group_id").
		Where("gm.user_id = ?", userID).
		Order("groups.created_at desc").
		Find(&out).Error
	return out, err
}

// AddMember inserts a membership row with the given role. A second join of
// the same user returns ErrDuplicate.
func AddMember(ctx context.Context, db *gorm.DB, groupID, userID, role string) error {
	m := &domain.GroupMember{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetMember fetches one membership row, or ErrNotFound.
func GetMember(ctx context.Context, db *gorm.DB, groupID, userID string) (*domain.GroupMember, error) {
	var m domain.GroupMember
	err := db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMembers returns all membership rows for a group.
func ListMembers(ctx context.Context, db *gorm.DB, groupID string) ([]domain.GroupMember, error) {
	var out []domain.GroupMember
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Find(&out).Error
	return out, err
}

// ListMemberIDs returns the user ids of a group's members, excluding
// excludeUserID when non-empty. Used to enumerate the pairings for a newly
// joined member.
func ListMemberIDs(ctx context.Context, db *gorm.DB, groupID, excludeUserID string) ([]string, error) {
	q := db.WithContext(ctx).
		Model(&domain.GroupMember{}).
		Where("group_id = ?", groupID)
	if excludeUserID != "" {
		q = q.Where("user_id <> ?", excludeUserID)
	}
	var ids []string
	err := q.Pluck("user_id", &ids).Error
	return ids, err
}

// CountMembers returns the number of members in a group.
func CountMembers(ctx context.Context, db *gorm.DB, groupID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.GroupMember{}).
		Where("group_id = ?", groupID).
		Count(&total).Error
	return total, err
}

// RemoveMember deletes one membership row. Returns ErrNotFound when the user
// was not a member.
func RemoveMember(ctx context.Context, db *gorm.DB, groupID, userID string) error {
	res := db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&domain.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroup removes the group, its memberships, and all stored pairwise
// and group-level results in one transaction.
func DeleteGroup(ctx context.Context, db *gorm.DB, groupID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&domain.CompatibilityResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&domain.GroupCompatibilityResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&domain.GroupMember{}).Error; err != nil {
			return err
		}
		res := tx.Where("group_id = ?", groupID).Delete(&domain.Group{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
