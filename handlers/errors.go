package handlers

import (
	"net/http"

	"github.com/LovationAdmin/tripchalo-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusFor maps a service error kind to an HTTP status.
func StatusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindExternal:
		return http.StatusBadGateway
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": message}. Unknown errors are logged and
// answered with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusFor(err)
	msg := services.MessageOf(err)
	if status == http.StatusInternalServerError || msg == "" {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		if status == http.StatusInternalServerError {
			msg = "Internal server error"
		} else {
			msg = http.StatusText(status)
		}
	}
	c.JSON(status, gin.H{"error": msg})
}
