package handler

import (
	"errors"
	"net/http"

	"github.com/critics-hub/yamdb/internal/middleware"
	"github.com/critics-hub/yamdb/internal/service"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required"`
	Username  string  `json:"username" binding:"required"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

type PatchUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

func (r *PatchUserRequest) patch() service.UserPatch {
	return service.UserPatch{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}

// Me returns the authenticated user's own profile.
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	actor := middleware.Actor(c)

	user, err := h.userService.GetByID(actor.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

// UpdateMe applies a partial update to the authenticated user's profile.
// A role field from a plain user is ignored, not rejected.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	actor := middleware.Actor(c)

	var req PatchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.UpdateSelf(actor, req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

// List returns all accounts, optionally filtered by a partial username.
// GET /api/v1/users?search=
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	search := c.Query("search")

	users, total, err := h.userService.List(search, page, pageSize)
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, userJSON(&users[i]))
	}

	c.JSON(http.StatusOK, listResponse(items, total))
}

// Create provisions an account without the email confirmation step.
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.Create(actor, req.Email, req.Username, service.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userJSON(user))
}

// Get returns one account by username.
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetByUsername(c.Param("username"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

// Update patches any account, role included.
// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	actor := middleware.Actor(c)

	var req PatchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.UpdateByUsername(actor, c.Param("username"), req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

// Delete removes an account together with its reviews and comments.
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	actor := middleware.Actor(c)

	if err := h.userService.DeleteByUsername(actor, c.Param("username")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) writeError(c *gin.Context, err error) {
	statusCode := http.StatusBadRequest
	if errors.Is(err, service.ErrUserNotFound) {
		statusCode = http.StatusNotFound
	}

	c.JSON(statusCode, gin.H{"error": err.Error()})
}
