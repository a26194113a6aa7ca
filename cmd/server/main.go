// Package main - Entry point for the HydroSpark analytics service
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hydrospark/api"
	"hydrospark/core/rates"
	"hydrospark/internal/cache"
	"hydrospark/internal/config"
	"hydrospark/internal/logging"
	"hydrospark/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load config", zap.Error(err))
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		logging.Fatal("failed to initialize logging", zap.Error(err))
	}
	defer logging.Sync()

	schedule := rates.DefaultSchedule()
	if cfg.RateSchedulePath != "" {
		schedule, err = rates.LoadSchedule(cfg.RateSchedulePath)
		if err != nil {
			logging.Fatal("failed to load rate schedule", zap.Error(err))
		}
		logging.Info("rate schedule loaded", zap.String("path", cfg.RateSchedulePath))
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logging.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logging.Fatal("failed to ping postgres", zap.Error(err))
	}

	store := storage.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logging.Fatal("failed to apply schema", zap.Error(err))
	}
	logging.Info("postgres connected")

	var bills *cache.BillCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logging.Fatal("failed to ping redis", zap.Error(err))
		}
		bills = cache.New(rdb)
		logging.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	}

	server := api.NewServer(store, schedule, bills, cfg.SigmaThreshold)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logging.Info("hydrospark analytics service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	logging.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Fatal("forced shutdown", zap.Error(err))
	}
	logging.Info("server stopped")
}
