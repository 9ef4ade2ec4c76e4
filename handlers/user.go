package handlers

import (
	"net/http"

	"github.com/LovationAdmin/tripchalo-api/middleware"
	"github.com/LovationAdmin/tripchalo-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	Users  *services.UserService
	Logger *zap.Logger
}

func NewUserHandler(users *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

// ============================================================================
// PROFILE
// ============================================================================

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.Users.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
