package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/registry"
	"rollcall/internal/session"
)

// fail maps engine errors onto the transport taxonomy: caller mistakes are
// 400, bad credentials 401, state conflicts 403, unresolved ids 404,
// anything else is a store failure and stays a 500.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registry.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, registry.ErrDuplicateID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "id already exists"})
	case errors.Is(err, attendance.ErrInvalidSession):
		c.JSON(http.StatusForbidden, gin.H{"error": "no active session"})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, registry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
