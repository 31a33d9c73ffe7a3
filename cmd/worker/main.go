package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"rollcall/internal/config"
	"rollcall/internal/logging"
	"rollcall/internal/queue"
	"rollcall/internal/store"
)

// The worker drains the attendance event queue and writes the audit trail.
// It runs beside the API and shares nothing with it but redis.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)
	defer logger.Sync()

	if cfg.QueueBackend == "memory" {
		logger.Fatal("worker requires the redis queue backend; memory queues live inside the api process")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	events := queue.NewRedisQueue(redisClient.Client, "rollcall:events")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		cancel()
	}()

	stream, err := events.Consume(ctx)
	if err != nil {
		logger.Fatal("consume failed", zap.Error(err))
	}

	logger.Info("worker started")
	for evt := range stream {
		logger.Info("audit",
			zap.String("type", evt.Type),
			zap.String("session_id", evt.SessionID),
			zap.String("class_id", evt.ClassID),
			zap.String("student_id", evt.StudentID),
			zap.String("subject", evt.Subject),
			zap.Time("at", evt.At))
	}
	logger.Info("worker exited")
}
