package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
	"github.com/souleimarejeb/rbac-app/internal/metrics"
	"github.com/souleimarejeb/rbac-app/internal/middleware"
	"github.com/souleimarejeb/rbac-app/internal/model"
	"github.com/souleimarejeb/rbac-app/internal/response"
	"github.com/souleimarejeb/rbac-app/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new auth handler. m may be nil.
func NewAuthHandler(authService service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m}
}

// SignUp godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.NewUser true "Registration data"
// @Success 201 {object} response.SuccessResponse{data=service.TokenPair}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req model.NewUser
	if err := bindJSON(c, &req); err != nil {
		h.metrics.AuthAttempt("signup", metrics.OutcomeRejected)
		return err
	}

	pair, err := h.authService.SignUp(c.Request().Context(), req)
	h.metrics.AuthAttempt("signup", outcome(err))
	if err != nil {
		return err
	}
	return response.Created(c, pair)
}

// Login godoc
// @Summary Sign in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.Credentials true "Login credentials"
// @Success 200 {object} response.SuccessResponse{data=service.TokenPair}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req model.Credentials
	if err := bindJSON(c, &req); err != nil {
		h.metrics.AuthAttempt("signin", metrics.OutcomeRejected)
		return err
	}

	pair, err := h.authService.SignIn(c.Request().Context(), req)
	h.metrics.AuthAttempt("signin", outcome(err))
	if err != nil {
		return err
	}
	return response.OK(c, pair)
}

// Profile godoc
// @Summary Claims of the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse{data=auth.Claims}
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c.Request().Context())
	if !ok {
		return apperrors.Unauthorized("missing bearer token")
	}
	return response.OK(c, claims)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, apperrors.ErrAuthentication),
		errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrValidation):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
