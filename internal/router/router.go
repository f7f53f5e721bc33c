package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/souleimarejeb/rbac-app/internal/handler"
	"github.com/souleimarejeb/rbac-app/internal/metrics"
	"github.com/souleimarejeb/rbac-app/internal/middleware"
	"github.com/souleimarejeb/rbac-app/internal/validation"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth   *handler.AuthHandler
	Users  *handler.UserHandler
	Health *handler.HealthHandler
}

// Options tunes the middleware stack.
type Options struct {
	BodyLimit string
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Register wires routes and middleware. Every route requires a bearer token
// unless it is passed to guard.Public.
func Register(e *echo.Echo, guard *middleware.Guard, h Handlers, opts Options) {
	e.Validator = validation.EchoValidator{}
	e.HTTPErrorHandler = middleware.ErrorHandler(opts.Logger)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger, opts.Metrics))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	if opts.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opts.BodyLimit))
	}
	e.Use(guard.Middleware())

	guard.Public(
		e.GET("/healthz", h.Health.Health),
		e.GET("/swagger/*", echoSwagger.WrapHandler),
	)
	if opts.Metrics != nil {
		guard.Public(e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler())))
	}

	v1 := e.Group("/v1")

	authGroup := v1.Group("/auth")
	guard.Public(
		authGroup.POST("/signup", h.Auth.SignUp),
		authGroup.POST("/login", h.Auth.Login),
	)
	authGroup.GET("/profile", h.Auth.Profile)

	users := v1.Group("/users")
	users.POST("", h.Users.CreateUser)
	users.GET("", h.Users.ListUsers)
	users.GET("/username/:username", h.Users.GetUserByUsername)
	users.GET("/:id", h.Users.GetUser)
	users.PUT("/:id", h.Users.UpdateUser)
	users.DELETE("/:id", h.Users.DeleteUser)
}
