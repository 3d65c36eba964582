package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/adapters/cache"
	"github.com/aethernova/habits-api/internal/adapters/repository"
	"github.com/aethernova/habits-api/internal/config"
	"github.com/aethernova/habits-api/internal/core/domain"
)

//	@title						Habits API
//	@version					1.0
//	@description				Habit tracking with streaks, freezes, statistics and weekly reviews.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	startTime := time.Now()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Critical: failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := repository.Connect(connectCtx, cfg.DB.Driver, cfg.DB.DSN(), logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = cache.Connect(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache and rate limiting", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			logger.Info("Redis connected")
		}
	}

	application := newApp(cfg, db, rdb, domain.SystemClock{}, logger, startTime)
	application.startWorkers(ctx)

	srv := &http.Server{
		Addr:         cfg.HTTP.Address(),
		Handler:      application.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Habits API listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Critical server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Stop signal received. Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
