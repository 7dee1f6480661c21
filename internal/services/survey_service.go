// Package services – SurveyService
//
// This file implements survey-answer and personality-comment submission.
// Both are one-row-per-user upserts. Saving a personality comment changes
// the generation input for every pair the user participates in, so the save
// fires a change notification that the compatibility engine consumes to
// rescore those pairs in the background.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"
)

// CommentListener is notified after a personality comment is persisted.
// Implemented by CompatibilityService; the notification runs in the
// background and must not fail the save.
type CommentListener interface {
	OnPersonalityCommentChanged(ctx context.Context, userID string)
}

// SurveyService provides survey and personality-comment persistence.
type SurveyService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Listener receives comment-change notifications; nil disables them.
	Listener CommentListener
}

// NewSurveyService constructs a SurveyService with the given change
// listener.
func NewSurveyService(db *gorm.DB, listener CommentListener) *SurveyService {
	return &SurveyService{DB: db, Listener: listener}
}

// SaveResponses validates and upserts the caller's survey answers. Every
// answer must be an integer in 1..5 and at least one answer is required.
func (s *SurveyService) SaveResponses(ctx context.Context, userID string, responses map[string]int) (*domain.SurveyResponse, error) {
	if len(responses) == 0 {
		return nil, ErrInvalidAnswer
	}
	for _, v := range responses {
		if v < 1 || v > 5 {
			return nil, ErrInvalidAnswer
		}
	}
	return repo.UpsertSurveyResponse(ctx, s.DB, userID, responses)
}

// SaveComment trims and upserts the caller's personality comment, then
// notifies the listener so affected pairwise reports are rescored. The
// notification runs detached from the request context: the rescoring
// outlives the HTTP request that triggered it.
func (s *SurveyService) SaveComment(ctx context.Context, userID string, c domain.PersonalityComment) (*domain.PersonalityComment, error) {
	c.ID = ""
	c.UserID = userID
	c.DesiredTraits = strings.TrimSpace(c.DesiredTraits)
	c.AvoidTraits = strings.TrimSpace(c.AvoidTraits)
	c.IdealRelationship = strings.TrimSpace(c.IdealRelationship)

	if err := repo.UpsertPersonalityComment(ctx, s.DB, &c); err != nil {
		return nil, err
	}
	if s.Listener != nil {
		go s.Listener.OnPersonalityCommentChanged(context.WithoutCancel(ctx), userID)
	}
	return &c, nil
}
