// Survey HTTP handlers.
//
// This file exposes the survey submission endpoints:
//   - PUT /survey/responses  (submit or replace Likert answers)
//   - PUT /survey/comment    (submit or replace the personality comment)
//
// Both operations are one-row-per-user upserts; resubmitting replaces the
// previous payload. Saving a comment additionally triggers background
// rescoring of the caller's pairwise reports (handled in the service layer).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/services"
)

// PutSurveyResponsesRequest is the JSON payload for submitting survey
// answers: question id → integer answer in 1..5.
type PutSurveyResponsesRequest struct {
	// Responses maps question ids (q1..q19) to Likert answers.
	Responses map[string]int `json:"responses" binding:"required"`
}

// PutPersonalityCommentRequest is the JSON payload for submitting the
// free-text personality comment.
type PutPersonalityCommentRequest struct {
	// DesiredTraits describes what the user looks for in others.
	DesiredTraits string `json:"desired_traits" example:"正直で思いやりのある人"`
	// AvoidTraits describes what the user wants to avoid.
	AvoidTraits string `json:"avoid_traits" example:"約束を守らない人"`
	// IdealRelationship describes the user's ideal relationship.
	IdealRelationship string `json:"ideal_relationship" example:"お互いを尊重し合える関係"`
}

// PutSurveyResponses godoc
// @ID          putSurveyResponses
// @Summary     Submit survey answers
// @Description Upserts the caller's Likert answers. Every answer must be an integer from 1 to 5.
// @Tags        Surveys
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.PutSurveyResponsesRequest  true  "Survey answers"
//
// @Success     200  {object}  domain.SurveyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /survey/responses [put]
func (h *Handlers) PutSurveyResponses(c *gin.Context) {
	var req PutSurveyResponsesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	r, err := h.surveySvc.SaveResponses(c.Request.Context(), userID(c), req.Responses)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAnswer) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "survey answers must be integers from 1 to 5")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, r)
}

// PutPersonalityComment godoc
// @ID          putPersonalityComment
// @Summary     Submit the personality comment
// @Description Upserts the caller's free-text relationship preferences. Affected pairwise reports are rescored in the background.
// @Tags        Surveys
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.PutPersonalityCommentRequest  true  "Personality comment"
//
// @Success     200  {object}  domain.PersonalityComment
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /survey/comment [put]
func (h *Handlers) PutPersonalityComment(c *gin.Context) {
	var req PutPersonalityCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cm, err := h.surveySvc.SaveComment(c.Request.Context(), userID(c), domain.PersonalityComment{
		DesiredTraits:     req.DesiredTraits,
		AvoidTraits:       req.AvoidTraits,
		IdealRelationship: req.IdealRelationship,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, cm)
}
