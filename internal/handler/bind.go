package handler

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
)

// bindJSON decodes the request body into dst, rejecting unknown fields, then
// runs the echo validator on it. An empty body decodes to the zero value.
func bindJSON(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.Validation([]string{decodeDetail(err)}, "invalid request body")
	}
	if dec.More() {
		return apperrors.Validation(nil, "invalid request body")
	}
	return c.Validate(dst)
}

// decodeDetail describes a decode failure without echoing the payload.
func decodeDetail(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field + ": wrong type"
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "malformed JSON at offset " + strconv.FormatInt(syntaxErr.Offset, 10)
	}
	// json reports unknown fields as `json: unknown field "x"`.
	return err.Error()
}

// queryInt reads an optional positive integer query parameter.
func queryInt(c echo.Context, name string) (int, bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false, apperrors.Validation([]string{name + ": must be a positive integer"}, "invalid query parameters")
	}
	return n, true, nil
}
