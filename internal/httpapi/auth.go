package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/auth"
	"rollcall/internal/registry"
)

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Role     string `json:"role" binding:"required"`
		ID       string `json:"id" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "role, id, and password are required")
		return
	}

	user, err := h.registry.Authenticate(c.Request.Context(), registry.Role(req.Role), req.ID, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, _, err := auth.Issue(user.ID, string(user.Role), h.opts.JWTIssuer, h.opts.JWTSigningKey, h.opts.AccessTTL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role, "id": user.ID})
}

func (h *Handler) logout(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	token, ok := auth.TokenFromContext(c)
	if ok {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := h.revoked.Revoke(c.Request.Context(), token, ttl); err != nil {
			h.logger.Warn("token revoke failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) me(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	user, err := h.registry.User(c.Request.Context(), claims.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      user.ID,
		"role":    user.Role,
		"name":    user.Name,
		"roll":    user.Roll,
		"classId": user.ClassID,
	})
}
