// Package services – GroupReportService
//
// This file implements the group-level aggregation engine: fold the stored
// pairwise results of a group into an average score and best/worst pair,
// run a second-order generation pass for the narrative analysis, and manage
// the cached aggregate the read path serves from.
//
// Read-path resilience: a viewer asking for a group report never sees a
// storage failure. The lookup order is cache, stored row, then ad hoc
// generation with a synthetic id. Only the absence of any pairwise results
// is an error (ErrNoResults).
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/aishou-app/go-aishou-backend/internal/cache"
	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"
)

// groupReportPrefix namespaces group-report cache keys.
const groupReportPrefix = "group-report"

// GroupReportService aggregates pairwise results and produces the cached
// group-level report.
type GroupReportService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Members aggregates per-user input data.
	Members *MemberService
	// Reports runs the generation backend.
	Reports *ReportService
	// Cache holds recently served group reports.
	Cache *cache.Cache
	// TTL is the cache expiry window for group reports.
	TTL time.Duration
}

// NewGroupReportService wires the aggregation engine with the given cache
// TTL. A non-positive TTL falls back to the cache default.
func NewGroupReportService(db *gorm.DB, members *MemberService, reports *ReportService, c *cache.Cache, ttl time.Duration) *GroupReportService {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &GroupReportService{DB: db, Members: members, Reports: reports, Cache: c, TTL: ttl}
}

// Aggregate folds the group's stored pairwise results into the average
// degree and the best/worst pair. Ties keep the first result seen in storage
// order. Returns ErrNoResults when the group has no scored pairs.
func (s *GroupReportService) Aggregate(ctx context.Context, groupID string) (int, domain.PairStat, domain.PairStat, error) {
	results, err := repo.ListCompatibilityResults(ctx, s.DB, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrStorageUnavailable) {
			return 0, domain.PairStat{}, domain.PairStat{}, ErrNoResults
		}
		return 0, domain.PairStat{}, domain.PairStat{}, err
	}
	if len(results) == 0 {
		return 0, domain.PairStat{}, domain.PairStat{}, ErrNoResults
	}

	sum := 0
	best, worst := results[0], results[0]
	for _, r := range results {
		sum += r.Degree
		if r.Degree > best.Degree {
			best = r
		}
		if r.Degree < worst.Degree {
			worst = r
		}
	}
	avg := int(math.Round(float64(sum) / float64(len(results))))

	names, err := repo.ProfileNames(ctx, s.DB, []string{best.UserAID, best.UserBID, worst.UserAID, worst.UserBID})
	if err != nil {
		log.Warn().Err(err).Str("group_id", groupID).
			Msg("resolving pair display names failed")
		names = map[string]string{}
	}
	return avg, pairStat(best, names), pairStat(worst, names), nil
}

// pairStat projects a stored pairwise result into the aggregate's pair shape
// with display names attached.
func pairStat(r domain.CompatibilityResult, names map[string]string) domain.PairStat {
	return domain.PairStat{
		UserIDs: []string{r.UserAID, r.UserBID},
		Names:   []string{names[r.UserAID], names[r.UserBID]},
		Degree:  r.Degree,
	}
}

// memberData loads the report input for every member of the group, skipping
// members who have no profile yet. The skipped members simply do not appear
// in the analysis prompt.
func (s *GroupReportService) memberData(ctx context.Context, groupID string) ([]domain.MemberData, error) {
	ids, err := repo.ListMemberIDs(ctx, s.DB, groupID, "")
	if err != nil {
		return nil, err
	}
	out := make([]domain.MemberData, 0, len(ids))
	for _, id := range ids {
		md, err := s.Members.GetMemberData(ctx, id)
		if err != nil {
			if errors.Is(err, ErrMissingProfile) {
				log.Debug().Str("group_id", groupID).Str("user_id", id).
					Msg("member without profile excluded from group analysis")
				continue
			}
			return nil, err
		}
		out = append(out, *md)
	}
	return out, nil
}

// generate produces a fresh aggregate report without persisting it. A group
// needs at least two members before an aggregate makes sense
// (ErrTooFewMembers).
func (s *GroupReportService) generate(ctx context.Context, groupID string) (*domain.GroupCompatibilityResult, error) {
	group, err := repo.GetGroup(ctx, s.DB, groupID)
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
	if count < 2 {
		return nil, ErrTooFewMembers
	}

	avg, best, worst, err := s.Aggregate(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberData(ctx, groupID)
	if err != nil {
		return nil, err
	}
	analysis, err := s.Reports.GenerateGroupAnalysis(ctx, group.Name, avg, best, worst, members)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &domain.GroupCompatibilityResult{
		GroupID:       groupID,
		AverageDegree: avg,
		BestPair:      best,
		WorstPair:     worst,
		Analysis:      *analysis,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GenerateAndSave regenerates the aggregate report, persists it via upsert
// on group_id, and refreshes the cache. An unavailable store downgrades to a
// warning: the fresh report is still cached and returned.
func (s *GroupReportService) GenerateAndSave(ctx context.Context, groupID string) (*domain.GroupCompatibilityResult, error) {
	tr := otel.Tracer("services/GroupReportService")
	ctx, span := tr.Start(ctx, "GenerateAndSave",
		trace.WithAttributes(attribute.String("group.id", groupID)),
	)
	defer span.End()

	result, err := s.generate(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := repo.SaveGroupCompatibilityResult(ctx, s.DB, result); err != nil {
		if !errors.Is(err, repo.ErrStorageUnavailable) {
			return nil, err
		}
		result.ID = fmt.Sprintf("generated-%d", time.Now().Unix())
		log.Warn().Str("group_id", groupID).
			Msg("group report store unavailable, serving unsaved result")
	}
	s.Cache.Set(cache.Key(groupReportPrefix, groupID), result, s.TTL)
	return result, nil
}

// EnsureGroupResult returns the group's aggregate report from the first
// source that has it: cache, stored row, or a fresh ad hoc generation that
// is cached but not persisted. Only a group with zero scored pairs fails
// (ErrNoResults).
func (s *GroupReportService) EnsureGroupResult(ctx context.Context, groupID string) (*domain.GroupCompatibilityResult, error) {
	tr := otel.Tracer("services/GroupReportService")
	ctx, span := tr.Start(ctx, "EnsureGroupResult",
		trace.WithAttributes(attribute.String("group.id", groupID)),
	)
	defer span.End()

	key := cache.Key(groupReportPrefix, groupID)
	if v, ok := s.Cache.Get(key); ok {
		if r, ok := v.(*domain.GroupCompatibilityResult); ok {
			return r, nil
		}
	}

	stored, err := repo.GetGroupCompatibilityResult(ctx, s.DB, groupID)
	if err == nil {
		s.Cache.Set(key, stored, s.TTL)
		return stored, nil
	}
	if !errors.Is(err, repo.ErrNotFound) && !errors.Is(err, repo.ErrStorageUnavailable) {
		return nil, err
	}

	result, err := s.generate(ctx, groupID)
	if err != nil {
		return nil, err
	}
	result.ID = fmt.Sprintf("generated-%d", time.Now().Unix())
	s.Cache.Set(key, result, s.TTL)
	return result, nil
}

// Invalidate drops the cached report for groupID. Called after membership
// changes so the next read reflects the new composition.
func (s *GroupReportService) Invalidate(groupID string) {
	s.Cache.Remove(cache.Key(groupReportPrefix, groupID))
}
