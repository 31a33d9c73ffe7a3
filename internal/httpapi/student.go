package httpapi

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"rollcall/internal/auth"
)

func (h *Handler) ownActiveSession(c *gin.Context) {
	ctx := c.Request.Context()
	claims, _ := auth.FromContext(c)
	user, err := h.registry.User(ctx, claims.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	if user.ClassID == "" {
		badRequest(c, "student not assigned to class")
		return
	}
	sess, ok, err := h.sessions.ActiveSession(ctx, user.ClassID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) markAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	claims, _ := auth.FromContext(c)
	user, err := h.registry.User(ctx, claims.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	sess, ok, err := h.sessions.ActiveSession(ctx, user.ClassID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "no active session"})
		return
	}
	record, err := h.ledger.Mark(ctx, sess.ID, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) ownHistory(c *gin.Context) {
	ctx := c.Request.Context()
	claims, _ := auth.FromContext(c)
	user, err := h.registry.User(ctx, claims.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}
	history, err := h.agg.StudentHistory(ctx, user.ClassID, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	sort.SliceStable(history, func(i, j int) bool {
		if history[i].Date != history[j].Date {
			return history[i].Date > history[j].Date
		}
		return history[i].ID > history[j].ID
	})
	c.JSON(http.StatusOK, history)
}
