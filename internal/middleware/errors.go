package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
)

// ErrorHandler renders every error as the error envelope. Errors outside the
// taxonomy become a 500 with a generic message; the cause is only logged.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := ToHTTPError(err)
		req := c.Request()
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.ErrorContext(req.Context(), "request failed",
				slog.String("method", req.Method),
				slog.String("route", c.Path()),
				slog.Any("error", err),
			)
		}

		var writeErr error
		if req.Method == http.MethodHead {
			writeErr = c.NoContent(httpErr.StatusCode)
		} else {
			writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if writeErr != nil {
			logger.ErrorContext(req.Context(), "write error response", slog.Any("error", writeErr))
		}
	}
}

// ToHTTPError maps err to the status, message and code sent to the client.
func ToHTTPError(err error) *apperrors.HTTPError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.MapErrorToHTTP(err)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		return apperrors.MapErrorToHTTP(apperrors.Validation(details, "invalid request body"))
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message := http.StatusText(echoErr.Code)
		if m, ok := echoErr.Message.(string); ok && m != "" && echoErr.Code < http.StatusInternalServerError {
			message = m
		}
		return apperrors.NewHTTPError(echoErr.Code, message, statusCode(echoErr.Code))
	}

	return apperrors.MapErrorToHTTP(err)
}

// statusCode turns "Method Not Allowed" into METHOD_NOT_ALLOWED.
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
