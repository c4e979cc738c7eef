package handler

import (
	"errors"
	"net/http"

	"github.com/critics-hub/yamdb/internal/service"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// Signup registers an account and emails a confirmation code.
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Signup request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if err := h.authService.Signup(c.Request.Context(), req.Email, req.Username); err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, service.ErrDeliveryFailed) {
			statusCode = http.StatusBadGateway
		}

		c.JSON(statusCode, gin.H{
			"error": err.Error(),
		})
		return
	}

	// The payload is echoed back; the code travels by email only.
	c.JSON(http.StatusOK, gin.H{
		"email":    req.Email,
		"username": req.Username,
	})
}

// Token exchanges username + confirmation code for a JWT.
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Token request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	token, err := h.authService.ObtainToken(req.Username, req.ConfirmationCode)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, service.ErrBadConfirmationCode):
			statusCode = http.StatusUnauthorized
		}

		c.JSON(statusCode, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}
