// Package services – MemberService
//
// This file implements the member data aggregator: given a user id it loads
// the profile, survey response, and personality comment and merges them into
// one MemberData record for prompt construction.
//
// Partial data is tolerated by design. A user may be scored before finishing
// every onboarding step, so a missing survey response or personality comment
// is substituted with an empty-default structure. Only the profile is
// mandatory — without identity data the member cannot participate in any
// report, and the aggregator fails with ErrMissingProfile.
package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MemberService aggregates a user's profile, survey answers, and personality
// comment into a single record for report generation.
type MemberService struct {
	DB *gorm.DB
}

// GetMemberData fetches all three inputs concurrently — there is no ordering
// dependency between them — and merges them. Missing survey/comment rows are
// replaced with empty defaults; a missing profile is ErrMissingProfile.
func (s *MemberService) GetMemberData(ctx context.Context, userID string) (*domain.MemberData, error) {
	tr := otel.Tracer("services/MemberService")
	ctx, span := tr.Start(ctx, "GetMemberData",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	var (
		profile *domain.Profile
		survey  *domain.SurveyResponse
		comment *domain.PersonalityComment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := repo.GetProfile(gctx, s.DB, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrMissingProfile
			}
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		r, err := repo.GetSurveyResponse(gctx, s.DB, userID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		survey = r
		return nil
	})
	g.Go(func() error {
		c, err := repo.GetPersonalityComment(gctx, s.DB, userID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		comment = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	md := &domain.MemberData{Profile: *profile}
	if survey != nil {
		md.SurveyResponse = *survey
	} else {
		md.SurveyResponse = domain.SurveyResponse{UserID: userID, Responses: map[string]int{}}
	}
	if comment != nil {
		md.PersonalityComment = *comment
	} else {
		md.PersonalityComment = domain.PersonalityComment{UserID: userID}
	}
	return md, nil
}
