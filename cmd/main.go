package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/config"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/db"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/handler"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/repository/cache"
	repo "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/repository/postgres"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/service"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbPool); err != nil {
			logger.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
	}

	userRepo := repo.NewPostgresRepository(dbPool)
	sessionRepo := repo.NewSessionRepository(dbPool)
	auditRepo := repo.NewAuditRepository(dbPool)
	tokenService := service.NewTokenService(cfg)
	m := metrics.New()

	opts := []service.Option{service.WithLogger(logger), service.WithMetrics(m)}
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("login throttle disabled", "error", err)
		} else {
			defer redisClient.Close()
			throttle := cache.NewRedisLoginThrottle(redisClient, cfg.LoginThrottleLimit, cfg.LoginThrottleWindow())
			opts = append(opts, service.WithThrottle(throttle))
		}
	}

	authService := service.NewAuthService(userRepo, sessionRepo, auditRepo, tokenService, cfg, opts...)
	authHandler := handler.NewAuthHandler(authService, tokenService, cfg)

	app := handler.NewApp(cfg, logger)
	handler.RegisterRoutes(app, authHandler, m)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("auth service listening", "port", cfg.Port, "env", cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
