package handlers

import (
	"net/http"

	"github.com/LovationAdmin/tripchalo-api/models"
	"github.com/LovationAdmin/tripchalo-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Users  *services.UserService
	Logger *zap.Logger
}

func NewAuthHandler(users *services.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Logger: logger}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Users.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Users.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
