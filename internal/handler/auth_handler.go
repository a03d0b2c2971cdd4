package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plz-territory-go/internal/auth"
	"plz-territory-go/pkg/model"
)

// AuthHandler handles admin login
type AuthHandler struct {
	authService *auth.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var creds model.AdminCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, expiresAt, err := h.authService.Login(creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Falsches Passwort"})
			return
		}
		h.logger.Error("Failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}
