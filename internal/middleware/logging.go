package middleware

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/souleimarejeb/rbac-app/internal/metrics"
)

// RequestLogger logs one line per request and records request metrics. Errors
// are rendered here so the logged status is the one the client received.
// Request bodies and headers are never logged.
func RequestLogger(logger *slog.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		HandleError:  true,
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			m.ObserveRequest(v.Method, v.RoutePath, v.Status, v.Latency)

			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.String("route", v.RoutePath),
				slog.Int("status", v.Status),
				slog.Int64("duration_ms", v.Latency.Milliseconds()),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			}
			if claims, ok := ClaimsFromContext(c.Request().Context()); ok {
				attrs = append(attrs, slog.String("username", claims.Subject))
			}
			if v.Error != nil {
				attrs = append(attrs, slog.Any("error", v.Error))
			}
			logger.LogAttrs(context.Background(), level, "HTTP request", attrs...)
			return nil
		},
	})
}
