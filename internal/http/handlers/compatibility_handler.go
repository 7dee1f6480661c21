// Compatibility HTTP handlers.
//
// This file exposes the report read endpoints:
//   - GET  /groups/{id}/compatibility/{memberId}  (pairwise report vs caller)
//   - GET  /groups/{id}/report                    (group aggregate, ETag support)
//   - POST /groups/{id}/report/refresh            (force regeneration)
//
// The group-report GET supports conditional requests: a weak ETag derived
// from the stored pairwise results lets clients poll cheaply while the
// background pipeline fills the group in.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aishou-app/go-aishou-backend/internal/repo"
	"github.com/aishou-app/go-aishou-backend/internal/services"
)

// failReport translates report-pipeline errors into HTTP responses with
// stable codes. Shared by the pairwise and group report endpoints.
func failReport(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
	case errors.Is(err, services.ErrMissingProfile):
		fail(c, http.StatusNotFound, ErrCodeMissingProfile, "a participant has no profile")
	case errors.Is(err, services.ErrNoResults):
		fail(c, http.StatusNotFound, ErrCodeNoResults, "no compatibility results for this group yet")
	case errors.Is(err, services.ErrTooFewMembers):
		fail(c, http.StatusBadRequest, ErrCodeTooFewMembers, "the group needs at least two members")
	case errors.Is(err, services.ErrGenerationFailed):
		fail(c, http.StatusBadGateway, ErrCodeGenerationFailed, "report generation failed")
	case errors.Is(err, services.ErrParseFailed):
		fail(c, http.StatusBadGateway, ErrCodeParseFailed, "report output could not be parsed")
	case errors.Is(err, services.ErrStorageUnavailable), errors.Is(err, repo.ErrStorageUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "result storage unavailable")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// GetPairCompatibility godoc
// @ID          getPairCompatibility
// @Summary     Fetch the pairwise report between the caller and a member
// @Description Returns the stored compatibility report for the pair, generating it on demand when no row exists yet. Lookup is symmetric: either member can ask.
// @Tags        Compatibility
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Group ID (join code)"   example(group-m1abc2-x7k9q2)
// @Param       memberId   path    string  true  "Other member's user ID" example(user456)
//
// @Success     200  {object}  domain.CompatibilityResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Group or participant data not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Generation failed"
// @Router      /groups/{id}/compatibility/{memberId} [get]
func (h *Handlers) GetPairCompatibility(c *gin.Context) {
	me := userID(c)
	other := c.Param("memberId")
	if other == "" || other == me {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "memberId must identify another member")
		return
	}

	r, err := h.pairSvc.PairResult(c.Request.Context(), c.Param("id"), me, other)
	if err != nil {
		failReport(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// GetGroupReport godoc
// @ID          getGroupReport
// @Summary     Fetch the group aggregate report
// @Description Returns the group-level report from cache or storage, generating it on the fly when absent. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Compatibility
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"        example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"   example(W/\"abc123\")
// @Param       id             path    string  true  "Group ID (join code)"         example(group-m1abc2-x7k9q2)
//
// @Success     200  {object}  domain.GroupCompatibilityResult
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Fewer than two members"
// @Failure     404  {object}  handlers.ErrorResponse  "Group not found or no results"
// @Failure     502  {object}  handlers.ErrorResponse  "Generation failed"
// @Router      /groups/{id}/report [get]
func (h *Handlers) GetGroupReport(c *gin.Context) {
	ctx := c.Request.Context()
	groupID := c.Param("id")

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.reportSvc.(*services.GroupReportService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.ResultsStats(ctx, db, groupID)
		if err == nil && count > 0 {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"group-report:%s:%d:%d"`, groupID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	r, err := h.reportSvc.EnsureGroupResult(ctx, groupID)
	if err != nil {
		failReport(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// RefreshGroupReport godoc
// @ID          refreshGroupReport
// @Summary     Regenerate the group aggregate report
// @Description Forces a fresh aggregation and generation pass, persists the result, and returns it.
// @Tags        Compatibility
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Group ID (join code)"   example(group-m1abc2-x7k9q2)
//
// @Success     200  {object}  domain.GroupCompatibilityResult
// @Failure     400  {object}  handlers.ErrorResponse  "Fewer than two members"
// @Failure     404  {object}  handlers.ErrorResponse  "Group not found or no results"
// @Failure     502  {object}  handlers.ErrorResponse  "Generation failed"
// @Router      /groups/{id}/report/refresh [post]
func (h *Handlers) RefreshGroupReport(c *gin.Context) {
	r, err := h.reportSvc.GenerateAndSave(c.Request.Context(), c.Param("id"))
	if err != nil {
		failReport(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}
