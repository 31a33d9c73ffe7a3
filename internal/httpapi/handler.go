package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/registry"
	"rollcall/internal/report"
	"rollcall/internal/session"
	"rollcall/internal/timetable"
)

// Options carries the transport-level knobs the handler needs.
type Options struct {
	JWTIssuer       string
	JWTSigningKey   string
	AccessTTL       time.Duration
	RateLimitPerMin int
}

// HealthChecker reports a dependency's liveness for /api/health.
type HealthChecker func(ctx context.Context) bool

// Handler wires the attendance engine to its HTTP surface.
type Handler struct {
	opts     Options
	registry *registry.Service
	sessions *session.Manager
	ledger   *attendance.Ledger
	agg      *report.Aggregator
	resolver *timetable.Resolver
	index    *timetable.Index
	revoked  auth.RevocationList
	health   map[string]HealthChecker
	logger   *zap.Logger
}

// New builds a handler over the engine components.
func New(
	opts Options,
	reg *registry.Service,
	sessions *session.Manager,
	ledger *attendance.Ledger,
	agg *report.Aggregator,
	resolver *timetable.Resolver,
	index *timetable.Index,
	revoked auth.RevocationList,
	health map[string]HealthChecker,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		opts:     opts,
		registry: reg,
		sessions: sessions,
		ledger:   ledger,
		agg:      agg,
		resolver: resolver,
		index:    index,
		revoked:  revoked,
		health:   health,
		logger:   logger,
	}
}

// Router assembles the gin engine: middleware stack, metrics, health and
// every API route.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/health", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	if h.opts.RateLimitPerMin > 0 {
		r.Use(httpmiddleware.NewTokenBucket(h.opts.RateLimitPerMin, h.opts.RateLimitPerMin).Middleware())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/health", h.healthz)
	r.POST("/api/auth/login", h.login)

	authed := r.Group("/api", auth.Middleware(h.opts.JWTSigningKey, h.opts.JWTIssuer, h.revoked))
	authed.POST("/auth/logout", h.logout)
	authed.GET("/me", h.me)
	authed.GET("/timetable/day/:day", h.timetableDay)
	authed.GET("/timetable/now", h.timetableNow)

	teacher := authed.Group("", auth.RequireRole(string(registry.RoleTeacher)))
	teacher.GET("/classes", h.listClasses)
	teacher.POST("/classes", h.createClass)
	teacher.GET("/classes/:id/students", h.listStudents)
	teacher.GET("/classes/:id/students/attendance", h.listStudentsWithAttendance)
	teacher.POST("/students", h.createStudent)
	teacher.POST("/sessions/open", h.openSession)
	teacher.POST("/sessions/close", h.closeSession)
	teacher.GET("/sessions/active/:classId", h.activeSession)
	teacher.GET("/sessions/class/:classId", h.listSessions)
	teacher.GET("/attendance/session/:sessionId", h.sessionRecords)
	teacher.GET("/attendance/session/:sessionId/details", h.sessionDetails)
	teacher.GET("/teachers/students/:studentId/attendance", h.studentAttendance)

	student := authed.Group("/student", auth.RequireRole(string(registry.RoleStudent)))
	student.GET("/session", h.ownActiveSession)
	student.POST("/attendance", h.markAttendance)
	student.GET("/attendance/history", h.ownHistory)

	return r
}

func (h *Handler) healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range h.health {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}
