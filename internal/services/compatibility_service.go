// Package services – CompatibilityService
//
// This file implements the pairwise orchestration engine. When a member
// joins a group, every (new member, existing member) pair is scored in a
// fan-out; when a member's personality comment changes, the pairs involving
// that member are rescored in every group they belong to.
//
// Failure isolation is the core rule of the fan-out: one pair's generation
// failure is logged and skipped, it never aborts sibling pairs. Once the
// pairs finish the group aggregate is refreshed exactly once, even when
// every pair failed: stored rows from earlier runs can still produce a
// current aggregate. Only a group with nobody to pair against skips the
// refresh.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"
)

// GroupRefresher regenerates a group's aggregate report after the pairwise
// rows changed. Implemented by GroupReportService.
type GroupRefresher interface {
	GenerateAndSave(ctx context.Context, groupID string) (*domain.GroupCompatibilityResult, error)
}

// CompatibilityService orchestrates pairwise report generation and
// persistence for groups.
type CompatibilityService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Members aggregates per-user input data.
	Members *MemberService
	// Reports runs the generation backend.
	Reports *ReportService
	// Groups refreshes the aggregate report after pairwise changes.
	Groups GroupRefresher
}

// NewCompatibilityService wires the orchestration engine.
func NewCompatibilityService(db *gorm.DB, members *MemberService, reports *ReportService, groups GroupRefresher) *CompatibilityService {
	return &CompatibilityService{DB: db, Members: members, Reports: reports, Groups: groups}
}

// GenerateForNewMember scores the new member against every existing member
// of the group, then refreshes the group aggregate. Designed to run in the
// background after a join: all failures are logged, none propagate to the
// joining request.
func (s *CompatibilityService) GenerateForNewMember(ctx context.Context, groupID, newUserID string) {
	tr := otel.Tracer("services/CompatibilityService")
	ctx, span := tr.Start(ctx, "GenerateForNewMember",
		trace.WithAttributes(
			attribute.String("group.id", groupID),
			attribute.String("user.id", newUserID),
		),
	)
	defer span.End()

	persisted, attempted := s.regeneratePairs(ctx, groupID, newUserID)
	if attempted == 0 {
		return
	}
	if persisted < attempted {
		log.Warn().Int("persisted", persisted).Int("attempted", attempted).
			Str("group_id", groupID).
			Msg("not all pairwise reports were stored, aggregate uses available rows")
	}
	if _, err := s.Groups.GenerateAndSave(ctx, groupID); err != nil {
		log.Warn().Err(err).Str("group_id", groupID).
			Msg("group report refresh failed after member join")
	}
}

// OnPersonalityCommentChanged rescores every pair involving userID in every
// group they belong to, refreshing each group's aggregate afterwards. Runs
// best effort; intended to be fired asynchronously after a comment save.
func (s *CompatibilityService) OnPersonalityCommentChanged(ctx context.Context, userID string) {
	tr := otel.Tracer("services/CompatibilityService")
	ctx, span := tr.Start(ctx, "OnPersonalityCommentChanged",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	groups, err := repo.ListUserGroups(ctx, s.DB, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).
			Msg("listing groups for comment cascade failed")
		return
	}
	for _, g := range groups {
		if _, attempted := s.regeneratePairs(ctx, g.GroupID, userID); attempted == 0 {
			continue
		}
		if _, err := s.Groups.GenerateAndSave(ctx, g.GroupID); err != nil {
			log.Warn().Err(err).Str("group_id", g.GroupID).
				Msg("group report refresh failed after comment change")
		}
	}
}

// regeneratePairs scores userID against every other member of groupID
// concurrently and returns how many pairs were persisted and how many were
// attempted. Each pair is independent: a failed fetch, generation, or save
// is logged and skipped. attempted is zero only when there is nobody to
// pair against or the member enumeration itself failed.
func (s *CompatibilityService) regeneratePairs(ctx context.Context, groupID, userID string) (persisted, attempted int) {
	self, err := s.Members.GetMemberData(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("group_id", groupID).Str("user_id", userID).
			Msg("member data unavailable, skipping pair generation")
		return 0, 0
	}
	otherIDs, err := repo.ListMemberIDs(ctx, s.DB, groupID, userID)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).
			Msg("listing group members failed")
		return 0, 0
	}

	var (
		wg      sync.WaitGroup
		created atomic.Int64
	)
	for _, otherID := range otherIDs {
		wg.Add(1)
		go func(otherID string) {
			defer wg.Done()
			other, err := s.Members.GetMemberData(ctx, otherID)
			if err != nil {
				log.Warn().Err(err).Str("group_id", groupID).Str("user_id", otherID).
					Msg("member data unavailable, skipping pair")
				return
			}
			rep, err := s.Reports.GeneratePairReport(ctx, self, other)
			if err != nil {
				log.Warn().Err(err).
					Str("group_id", groupID).
					Str("user_a", userID).Str("user_b", otherID).
					Msg("pair report generation failed")
				return
			}
			if err := repo.SaveCompatibilityResult(ctx, s.DB, groupID, userID, otherID, rep); err != nil {
				log.Error().Err(err).
					Str("group_id", groupID).
					Str("user_a", userID).Str("user_b", otherID).
					Msg("pair report save failed")
				return
			}
			created.Add(1)
		}(otherID)
	}
	wg.Wait()
	return int(created.Load()), len(otherIDs)
}

// PairResult returns the stored report for (me, other) in groupID,
// generating and persisting it on demand when no row exists yet. After a
// successful save the persisted row is returned, ids and timestamps
// included. A store that rejects the save does not fail the read: the
// freshly generated report is still returned with a synthetic id.
func (s *CompatibilityService) PairResult(ctx context.Context, groupID, me, other string) (*domain.CompatibilityResult, error) {
	tr := otel.Tracer("services/CompatibilityService")
	ctx, span := tr.Start(ctx, "PairResult",
		trace.WithAttributes(
			attribute.String("group.id", groupID),
			attribute.String("pair.user_a", me),
			attribute.String("pair.user_b", other),
		),
	)
	defer span.End()

	stored, err := repo.GetCompatibilityResult(ctx, s.DB, groupID, me, other)
	switch {
	case err == nil:
		return stored, nil
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, repo.ErrStorageUnavailable):
		// fall through to on-demand generation
	default:
		return nil, err
	}

	a, err := s.Members.GetMemberData(ctx, me)
	if err != nil {
		return nil, err
	}
	b, err := s.Members.GetMemberData(ctx, other)
	if err != nil {
		return nil, err
	}
	rep, err := s.Reports.GeneratePairReport(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if err := repo.SaveCompatibilityResult(ctx, s.DB, groupID, me, other, rep); err != nil {
		log.Warn().Err(err).Str("group_id", groupID).
			Msg("on-demand pair report save failed, returning unsaved result")
	} else if saved, err := repo.GetCompatibilityResult(ctx, s.DB, groupID, me, other); err == nil {
		return saved, nil
	}

	ua, ub := repo.CanonicalPair(me, other)
	now := time.Now().UTC()
	return &domain.CompatibilityResult{
		ID:          fmt.Sprintf("generated-%d", now.Unix()),
		GroupID:     groupID,
		UserAID:     ua,
		UserBID:     ub,
		Degree:      rep.Degree,
		Description: rep.Description,
		Advice:      rep.Advice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
