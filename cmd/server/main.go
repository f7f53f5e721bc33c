package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/souleimarejeb/rbac-app/docs"
	"github.com/souleimarejeb/rbac-app/internal/auth"
	"github.com/souleimarejeb/rbac-app/internal/cache"
	"github.com/souleimarejeb/rbac-app/internal/config"
	"github.com/souleimarejeb/rbac-app/internal/db"
	"github.com/souleimarejeb/rbac-app/internal/handler"
	"github.com/souleimarejeb/rbac-app/internal/logger"
	"github.com/souleimarejeb/rbac-app/internal/metrics"
	"github.com/souleimarejeb/rbac-app/internal/middleware"
	"github.com/souleimarejeb/rbac-app/internal/repository"
	"github.com/souleimarejeb/rbac-app/internal/router"
	"github.com/souleimarejeb/rbac-app/internal/service"
)

// @title Users API
// @version 1.0
// @description User directory and authentication API with JWT bearer tokens.
// @host localhost:3000
// @BasePath /v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	gormDB, err := db.NewMySQL(cfg.Database)
	if err != nil {
		logger.Fatal(log, "database init", slog.Any("error", err))
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := repository.DropAll(gormDB); err != nil {
			log.Warn("failed to drop tables (may not exist)", slog.Any("error", err))
		}
	}
	if err := repository.Migrate(gormDB); err != nil {
		logger.Fatal(log, "auto-migrate", slog.Any("error", err))
	}

	var (
		cacheClient *cache.Client
		cachePing   handler.Pinger
	)
	if cfg.Redis.Enabled {
		cacheClient = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		defer cacheClient.Close()
		cachePing = cacheClient.Ping
	}

	hasher := auth.NewPasswordHasher(auth.Argon2Params{
		Memory:      cfg.Hash.Memory,
		Iterations:  cfg.Hash.Iterations,
		Parallelism: cfg.Hash.Parallelism,
		SaltLength:  cfg.Hash.SaltLength,
		KeyLength:   cfg.Hash.KeyLength,
	})
	jwtService := auth.NewJWTService(cfg.JWT.Secret)
	m := metrics.New()

	userRepo := repository.NewUserRepository(gormDB)
	authService := service.NewAuthService(userRepo, hasher, jwtService, cfg.JWT.AccessTTL, log)
	userService := service.NewUserService(userRepo, hasher, cacheClient, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, middleware.NewGuard(jwtService, log), router.Handlers{
		Auth:   handler.NewAuthHandler(authService, m),
		Users:  handler.NewUserHandler(userService),
		Health: handler.NewHealthHandler(pingDB(gormDB), cachePing, log),
	}, router.Options{
		BodyLimit: cfg.Server.BodyLimit,
		Logger:    log,
		Metrics:   m,
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = swaggerHost(cfg.SwaggerHost)
	}
	log.Info("swagger documentation available", slog.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Server.Port
		log.Info("server listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(log, "server start", slog.Any("error", err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("error", err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func pingDB(gormDB *gorm.DB) handler.Pinger {
	return func(ctx context.Context) error {
		return db.Ping(ctx, gormDB)
	}
}

// swaggerHost strips the scheme, which SwaggerInfo.Host must not carry.
func swaggerHost(host string) string {
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimPrefix(host, "https://")
}
