// User HTTP handlers.
//
//   - POST  /users       (create a profile)
//   - GET   /users/{id}  (fetch a profile)
//   - PATCH /users/{id}  (merge optional fields)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/utils"
)

// CreateUserRequest is the payload for POST /users.
type CreateUserRequest struct {
	Name         string `json:"name" binding:"required" example:"You"`
	About        string `json:"about" example:"Hey there! I am using Thoughts."`
	Subtitle     string `json:"subtitle" example:"Notes to self"`
	ProfileImage string `json:"profile_image" example:"https://example.com/me.png"`
}

// UpdateUserResponse reports whether a PATCH changed anything.
type UpdateUserResponse struct {
	Updated bool `json:"updated"`
}

// CreateUser godoc
// @ID          createUser
// @Summary     Create a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateUserRequest  true  "Profile"
// @Success     201   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse  "Missing name"
// @Failure     503   {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /users [post]
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeEmptyName, "name required")
		return
	}
	u, err := h.users.Create(c.Request.Context(), req.Name, req.About, req.Subtitle, req.ProfileImage)
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, u)
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user
// @Tags        Users
// @Produce     json
// @Param       id   path      int  true  "User id"  minimum(1)
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown user"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeInvalidID, "user id must be a positive integer")
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err, ErrCodeInternal)
		return
	}
	if u == nil {
		fail(c, http.StatusNotFound, ErrCodeUserNotFound, "user not found")
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateUser godoc
// @ID          updateUser
// @Summary     Update a user
// @Description Merges the fields present in the body. An empty body or an unknown id reports updated=false.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       id    path      int               true  "User id"  minimum(1)
// @Param       body  body      domain.UserPatch  true  "Fields to change"
// @Success     200   {object}  handlers.UpdateUserResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid id or body"
// @Router      /users/{id} [patch]
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeInvalidID, "user id must be a positive integer")
		return
	}
	var patch domain.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	updated, err := h.users.Update(c.Request.Context(), id, patch)
	if err != nil {
		failErr(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, UpdateUserResponse{Updated: updated})
}
