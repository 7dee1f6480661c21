// Package services – GroupService
//
// This file implements group lifecycle and membership. A group's id doubles
// as its join code: an opaque, shareable token generated from a millisecond
// timestamp and a random suffix, both base36.
//
// Membership rules enforced here:
//   - The creator is the admin; they cannot leave, only delete the group.
//   - Joining twice is rejected (ErrAlreadyMember).
//   - A successful join triggers the pairwise generation pipeline in the
//     background; its outcome never affects the join response.
//   - Leaving removes the member's stored pairwise rows so the aggregate is
//     not skewed by departed members.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"
)

// PairPipeline runs the pairwise generation fan-out for a newly joined
// member. Implemented by CompatibilityService.
type PairPipeline interface {
	GenerateForNewMember(ctx context.Context, groupID, userID string)
}

// ReportInvalidator drops a group's cached aggregate report after a
// membership change. Implemented by GroupReportService.
type ReportInvalidator interface {
	Invalidate(groupID string)
}

// GroupInfo is a group together with its member count.
type GroupInfo struct {
	domain.Group
	MemberCount int64 `json:"member_count"`
}

// MemberInfo is one group member with the display name resolved from their
// profile. Name is empty when the member has not created a profile yet.
type MemberInfo struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// GroupService provides group lifecycle and membership operations.
type GroupService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Pipeline scores new members against the rest of the group.
	Pipeline PairPipeline
	// Reports invalidates cached aggregate reports on membership changes.
	Reports ReportInvalidator
	// IdempotencyTTL bounds how long a join's Idempotency-Key stays valid.
	IdempotencyTTL time.Duration
}

// NewGroupService wires the group lifecycle service.
func NewGroupService(db *gorm.DB, pipeline PairPipeline, reports ReportInvalidator, idemTTL time.Duration) *GroupService {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &GroupService{DB: db, Pipeline: pipeline, Reports: reports, IdempotencyTTL: idemTTL}
}

// newGroupID builds a join-code group id: "group-<ts36>-<rand36>" where ts36
// is the current millisecond timestamp in base36 and rand36 is a 6-char
// random base36 suffix.
func newGroupID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	// 36^6 keeps the suffix within 6 base36 digits.
	suffix := strconv.FormatUint(rand.Uint64N(2176782336), 36)
	for len(suffix) < 6 {
		suffix = "0" + suffix
	}
	return fmt.Sprintf("group-%s-%s", ts, suffix)
}

// Create makes a new group owned by userID and enrolls them as admin.
func (s *GroupService) Create(ctx context.Context, userID, name string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return repo.CreateGroup(ctx, s.DB, newGroupID(), name, userID)
}

// Get returns the group with its member count, or ErrGroupNotFound.
func (s *GroupService) Get(ctx context.Context, groupID string) (*GroupInfo, error) {
	g, err := repo.GetGroup(ctx, s.DB, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	count, err := repo.CountMembers(ctx, s.DB, groupID)
	if err != nil {
		return nil, err
	}
	return &GroupInfo{Group: *g, MemberCount: count}, nil
}

// ListPage returns a page of groups and the total count. Defaults are
// applied for invalid page/pageSize values.
func (s *GroupService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Group, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountGroups(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Group{}, 0, nil
	}
	items, err := repo.ListGroupsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// ListMine returns the groups userID belongs to, most recent first.
func (s *GroupService) ListMine(ctx context.Context, userID string) ([]domain.Group, error) {
	return repo.ListUserGroups(ctx, s.DB, userID)
}

// Members returns the group's membership with display names resolved.
func (s *GroupService) Members(ctx context.Context, groupID string) ([]MemberInfo, error) {
	if _, err := repo.GetGroup(ctx, s.DB, groupID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	members, err := repo.ListMembers(ctx, s.DB, groupID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	names, err := repo.ProfileNames(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	out := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		out = append(out, MemberInfo{
			UserID:   m.UserID,
			Name:     names[m.UserID],
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// Join enrolls userID into the group and kicks off pairwise scoring against
// the existing members in the background. The join succeeds independently of
// the pipeline outcome. A non-empty idemKey records the submission so client
// retries within the TTL window are detected upstream and do not re-trigger
// the pipeline.
func (s *GroupService) Join(ctx context.Context, groupID, userID, idemKey string) error {
	if _, err := repo.GetGroup(ctx, s.DB, groupID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if err := repo.AddMember(ctx, s.DB, groupID, userID, domain.RoleMember); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrAlreadyMember
		}
		return err
	}
	if idemKey != "" {
		if _, err := repo.CreateIdempotency(ctx, s.DB, userID, groupID, idemKey, http.StatusNoContent, s.IdempotencyTTL); err != nil &&
			!errors.Is(err, repo.ErrDuplicate) {
			log.Warn().Err(err).Str("group_id", groupID).Str("user_id", userID).
				Msg("recording join idempotency key failed")
		}
	}
	s.Reports.Invalidate(groupID)
	go s.Pipeline.GenerateForNewMember(context.WithoutCancel(ctx), groupID, userID)
	return nil
}

// Leave removes userID from the group along with their stored pairwise
// results. The creator cannot leave; they must delete the group.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) error {
	if _, err := repo.GetGroup(ctx, s.DB, groupID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	m, err := repo.GetMember(ctx, s.DB, groupID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}
	if m.Role == domain.RoleAdmin {
		return ErrCreatorCannotLeave
	}
	if err := repo.RemoveMember(ctx, s.DB, groupID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}
	if err := repo.DeletePairResultsForUser(ctx, s.DB, groupID, userID); err != nil &&
		!errors.Is(err, repo.ErrStorageUnavailable) {
		return err
	}
	s.Reports.Invalidate(groupID)
	return nil
}

// Delete removes the group and everything attached to it. Only the creator
// may delete.
func (s *GroupService) Delete(ctx context.Context, groupID, userID string) error {
	g, err := repo.GetGroup(ctx, s.DB, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if g.CreatedBy != userID {
		return ErrNotCreator
	}
	if err := repo.DeleteGroup(ctx, s.DB, groupID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	s.Reports.Invalidate(groupID)
	return nil
}
