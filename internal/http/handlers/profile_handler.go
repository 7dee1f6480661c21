// Profile HTTP handlers.
//
// This file defines the handler wiring shared by the whole package plus the
// profile endpoints:
//   - PUT /profile   (create or replace the caller's profile)
//   - GET /profile   (fetch the caller's profile)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/repo"
	"github.com/aishou-app/go-aishou-backend/internal/services"
	"github.com/aishou-app/go-aishou-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ProfileService defines profile operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ProfileService interface {
	// Save upserts the caller's profile.
	Save(ctx context.Context, userID string, p domain.Profile) (*domain.Profile, error)
	// Get returns the caller's profile.
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

// SurveyService defines survey and personality-comment submission operations.
type SurveyService interface {
	// SaveResponses upserts the caller's survey answers.
	SaveResponses(ctx context.Context, userID string, responses map[string]int) (*domain.SurveyResponse, error)
	// SaveComment upserts the caller's personality comment.
	SaveComment(ctx context.Context, userID string, c domain.PersonalityComment) (*domain.PersonalityComment, error)
}

// GroupService defines group lifecycle and membership operations.
type GroupService interface {
	// Create makes a group owned by userID.
	Create(ctx context.Context, userID, name string) (*domain.Group, error)
	// Get returns a group with its member count.
	Get(ctx context.Context, groupID string) (*services.GroupInfo, error)
	// ListPage returns a page of groups and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Group, int64, error)
	// ListMine returns the groups userID belongs to.
	ListMine(ctx context.Context, userID string) ([]domain.Group, error)
	// Members returns the group's membership with names resolved.
	Members(ctx context.Context, groupID string) ([]services.MemberInfo, error)
	// Join enrolls userID into the group, recording idemKey when non-empty.
	Join(ctx context.Context, groupID, userID, idemKey string) error
	// Leave removes userID from the group.
	Leave(ctx context.Context, groupID, userID string) error
	// Delete removes the group (creator only).
	Delete(ctx context.Context, groupID, userID string) error
}

// PairService returns or generates a pairwise report.
type PairService interface {
	// PairResult returns the stored report for the pair, generating it on
	// demand when absent.
	PairResult(ctx context.Context, groupID, me, other string) (*domain.CompatibilityResult, error)
}

// GroupReportService serves and refreshes group-level aggregate reports.
type GroupReportService interface {
	// EnsureGroupResult returns the group report from cache, store, or a
	// fresh generation.
	EnsureGroupResult(ctx context.Context, groupID string) (*domain.GroupCompatibilityResult, error)
	// GenerateAndSave forces regeneration and persistence of the report.
	GenerateAndSave(ctx context.Context, groupID string) (*domain.GroupCompatibilityResult, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for profiles, surveys, groups, and
// compatibility reports. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	profileSvc ProfileService
	surveySvc  SurveyService
	groupSvc   GroupService
	pairSvc    PairService
	reportSvc  GroupReportService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(profileSvc ProfileService, surveySvc SurveyService, groupSvc GroupService, pairSvc PairService, reportSvc GroupReportService) *Handlers {
	return &Handlers{
		profileSvc: profileSvc,
		surveySvc:  surveySvc,
		groupSvc:   groupSvc,
		pairSvc:    pairSvc,
		reportSvc:  reportSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// DTOs
//

// PutProfileRequest is the JSON payload for creating or replacing a profile.
type PutProfileRequest struct {
	// Name is the display name shown in reports (1–255 chars).
	Name string `json:"name" binding:"required,min=1,max=255" example:"田中太郎"`
	// BloodType is a self-reported attribute used as generation input.
	BloodType string `json:"blood_type" example:"A"`
	// Birthdate in any self-reported format.
	Birthdate string `json:"birthdate" example:"1995-04-12"`
	// Zodiac sign.
	Zodiac string `json:"zodiac" example:"おひつじ座"`
	// MBTI type, optional.
	MBTI string `json:"mbti" example:"INFP"`
}

//
// Handlers
//

// PutProfile godoc
// @ID          putProfile
// @Summary     Create or replace the caller's profile
// @Description Upserts the profile keyed by the current user id and returns the stored resource.
// @Tags        Profiles
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.PutProfileRequest  true  "Profile payload"
//
// @Success     200  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profile [put]
func (h *Handlers) PutProfile(c *gin.Context) {
	var req PutProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.profileSvc.Save(c.Request.Context(), userID(c), domain.Profile{
		Name:      req.Name,
		BloodType: req.BloodType,
		Birthdate: req.Birthdate,
		Zodiac:    req.Zodiac,
		MBTI:      req.MBTI,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyName) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name must not be empty")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Fetch the caller's profile
// @Description Returns the profile stored for the current user id.
// @Tags        Profiles
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  domain.Profile
// @Failure     404  {object}  handlers.ErrorResponse  "Profile not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.profileSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}
