package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/httpapi"
	"rollcall/internal/logging"
	"rollcall/internal/queue"
	"rollcall/internal/registry"
	"rollcall/internal/report"
	"rollcall/internal/session"
	"rollcall/internal/store"
	"rollcall/internal/timetable"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)
	defer logger.Sync()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.App, logger *zap.Logger) error {
	ctx := context.Background()

	schedule, err := timetable.LoadFile(cfg.TimetablePath)
	if err != nil {
		return err
	}
	resolver := timetable.NewResolver(schedule.Index, schedule.Lunch)

	redisClient := store.NewRedis(cfg.RedisAddr)
	health := map[string]httpapi.HealthChecker{
		"redis": redisClient.Healthy,
	}

	var (
		sessionStore session.Store
		recordStore  attendance.Store
		userStore    registry.Store
		revoked      auth.RevocationList
	)
	if cfg.StoreBackend == "memory" {
		logger.Warn("using in-memory stores; state is lost on restart")
		sessionStore = session.NewMemoryStore()
		recordStore = attendance.NewMemoryStore()
		userStore = registry.NewMemoryStore()
		revoked = auth.NewMemoryRevocationList()
	} else {
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := store.Migrate(ctx, db.Client); err != nil {
			return err
		}
		health["db"] = func(ctx context.Context) bool {
			return db.Client.PingContext(ctx) == nil
		}
		sessionStore = session.NewCachedStore(
			session.NewRepository(db.Client), redisClient.Client, cfg.ActiveCacheTTL, logger)
		recordStore = attendance.NewRepository(db.Client)
		userStore = registry.NewRepository(db.Client)
		revoked = auth.NewRedisRevocationList(redisClient.Client)
	}

	var events queue.Queue
	if cfg.QueueBackend == "memory" {
		events = queue.NewInMemory(64)
	} else {
		events = queue.NewRedisQueue(redisClient.Client, "rollcall:events")
	}

	reg := registry.NewService(userStore, logger)
	if err := reg.SeedTeacher(ctx, cfg.TeacherID, cfg.TeacherPass); err != nil {
		return err
	}

	sessions := session.NewManager(sessionStore, logger).WithEvents(events)
	ledger := attendance.NewLedger(recordStore, sessionStore, logger).WithEvents(events)
	agg := report.NewAggregator(sessionStore, recordStore)

	handler := httpapi.New(
		httpapi.Options{
			JWTIssuer:       cfg.JWTIssuer,
			JWTSigningKey:   cfg.JWTSigningKey,
			AccessTTL:       cfg.AccessTTL,
			RateLimitPerMin: cfg.RateLimitPerMin,
		},
		reg, sessions, ledger, agg, resolver, schedule.Index, revoked, health, logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}
