// Group HTTP handlers.
//
// This file exposes REST endpoints for group resources:
//   - POST   /groups               (create; the caller becomes admin)
//   - GET    /groups               (list all, paginated)
//   - GET    /groups/mine          (list the caller's groups)
//   - GET    /groups/{id}          (fetch with member count)
//   - GET    /groups/{id}/members  (membership with display names)
//   - POST   /groups/{id}/join     (join; triggers background scoring)
//   - POST   /groups/{id}/leave    (leave; creator must delete instead)
//   - DELETE /groups/{id}          (delete, creator only)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aishou-app/go-aishou-backend/internal/domain"
	"github.com/aishou-app/go-aishou-backend/internal/http/middleware"
	"github.com/aishou-app/go-aishou-backend/internal/services"
)

//
// DTOs
//

// CreateGroupRequest is the JSON payload for creating a group.
type CreateGroupRequest struct {
	// Name is the group's display name (1–255 chars).
	Name string `json:"name" binding:"required,min=1,max=255" example:"開発チーム"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListGroupsResponse wraps a page of groups and pagination information.
type ListGroupsResponse struct {
	Groups     []domain.Group `json:"groups"`
	Pagination Pagination     `json:"pagination"`
}

//
// Handlers
//

// CreateGroup godoc
// @ID          createGroup
// @Summary     Create a new group
// @Description Creates a group owned by the current user and enrolls them as admin. The returned group_id doubles as the join code.
// @Tags        Groups
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.CreateGroupRequest  true  "Create group payload"
//
// @Success     201  {object}  domain.Group
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /groups [post]
func (h *Handlers) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required (1–255 chars)")
		return
	}

	g, err := h.groupSvc.Create(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, g)
}

// ListGroups godoc
// @ID          listGroups
// @Summary     List groups (paginated)
// @Description Returns a page of all groups, most recent first.
// @Tags        Groups
// @Produce     json
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListGroupsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /groups [get]
func (h *Handlers) ListGroups(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.groupSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListGroupsResponse{
		Groups: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// ListMyGroups godoc
// @ID          listMyGroups
// @Summary     List the caller's groups
// @Description Returns the groups the current user belongs to, most recent first.
// @Tags        Groups
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {array}   domain.Group
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /groups/mine [get]
func (h *Handlers) ListMyGroups(c *gin.Context) {
	items, err := h.groupSvc.ListMine(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetGroup godoc
// @ID          getGroup
// @Summary     Fetch a group
// @Description Returns the group with its member count.
// @Tags        Groups
// @Produce     json
//
// @Param       id  path  string  true  "Group ID (join code)"  example(group-m1abc2-x7k9q2)
//
// @Success     200  {object}  services.GroupInfo
// @Failure     404  {object}  handlers.ErrorResponse  "Group not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /groups/{id} [get]
func (h *Handlers) GetGroup(c *gin.Context) {
	info, err := h.groupSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, info)
}

// ListGroupMembers godoc
// @ID          listGroupMembers
// @Summary     List group members
// @Description Returns the group's membership with display names resolved from profiles.
// @Tags        Groups
// @Produce     json
//
// @Param       id  path  string  true  "Group ID (join code)"  example(group-m1abc2-x7k9q2)
//
// @Success     200  {array}   services.MemberInfo
// @Failure     404  {object}  handlers.ErrorResponse  "Group not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /groups/{id}/members [get]
func (h *Handlers) ListGroupMembers(c *gin.Context) {
	members, err := h.groupSvc.Members(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, members)
}

// JoinGroup godoc
// @ID          joinGroup
// @Summary     Join a group
// @Description Enrolls the current user into the group and starts pairwise scoring against the existing members in the background. Supports Idempotency-Key for safe retries.
// @Tags        Groups
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"            example(user123)
// @Param       Idempotency-Key  header  string  false "Deduplicates retried submissions" example(4a3bfb3f-74a5-4ae8-8536-68f4ab1cf0f4)
// @Param       id               path    string  true  "Group ID (join code)"             example(group-m1abc2-x7k9q2)
//
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Group not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already a member"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /groups/{id}/join [post]
func (h *Handlers) JoinGroup(c *gin.Context) {
	// A detected replay means this exact join already completed within the
	// TTL window; acknowledge without re-triggering the pipeline.
	if middleware.IsReplay(c) {
		noContent(c)
		return
	}
	idemKey, _ := middleware.GetIdempotencyKey(c)

	err := h.groupSvc.Join(c.Request.Context(), c.Param("id"), userID(c), idemKey)
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrGroupNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
	case errors.Is(err, services.ErrAlreadyMember):
		fail(c, http.StatusConflict, ErrCodeConflict, "already a member of this group")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// LeaveGroup godoc
// @ID          leaveGroup
// @Summary     Leave a group
// @Description Removes the current user from the group together with their stored pairwise results. The creator cannot leave and must delete the group instead.
// @Tags        Groups
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Group ID (join code)"   example(group-m1abc2-x7k9q2)
//
// @Success     204  {string}  string "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Creator cannot leave"
// @Failure     404  {object}  handlers.ErrorResponse  "Group or membership not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /groups/{id}/leave [post]
func (h *Handlers) LeaveGroup(c *gin.Context) {
	err := h.groupSvc.Leave(c.Request.Context(), c.Param("id"), userID(c))
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrGroupNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
	case errors.Is(err, services.ErrNotMember):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "not a member of this group")
	case errors.Is(err, services.ErrCreatorCannotLeave):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "group creator cannot leave; delete the group instead")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// DeleteGroup godoc
// @ID          deleteGroup
// @Summary     Delete a group
// @Description Removes the group, its memberships, and all stored reports. Only the creator may delete.
// @Tags        Groups
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Group ID (join code)"   example(group-m1abc2-x7k9q2)
//
// @Success     204  {string}  string "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the creator"
// @Failure     404  {object}  handlers.ErrorResponse  "Group not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /groups/{id} [delete]
func (h *Handlers) DeleteGroup(c *gin.Context) {
	err := h.groupSvc.Delete(c.Request.Context(), c.Param("id"), userID(c))
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrGroupNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
	case errors.Is(err, services.ErrNotCreator):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "only the group creator can delete the group")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
