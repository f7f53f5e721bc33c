package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/souleimarejeb/rbac-app/internal/response"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing service answers.
type Pinger func(ctx context.Context) error

// HealthStatus is the body of GET /healthz.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	database Pinger
	cache    Pinger
	logger   *slog.Logger
}

// NewHealthHandler creates a health handler. The cache is informational:
// the service keeps working without it. A nil cache reports "disabled".
func NewHealthHandler(database, cache Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{database: database, cache: cache, logger: logger}
}

// Health answers 200 while the database responds and 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	status := HealthStatus{Status: "ok", Database: "up", Cache: "disabled"}
	if h.cache != nil {
		status.Cache = "up"
		if err := h.cache(ctx); err != nil {
			h.logger.WarnContext(ctx, "cache ping failed", slog.Any("error", err))
			status.Cache = "down"
		}
	}
	if err := h.database(ctx); err != nil {
		h.logger.ErrorContext(ctx, "database ping failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusServiceUnavailable).SetInternal(err)
	}
	return response.OK(c, status)
}
