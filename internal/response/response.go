package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessMessage is the message of every success envelope.
const SuccessMessage = "Success"

// SuccessResponse is the success envelope.
type SuccessResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Meta       any    `json:"meta,omitempty"`
}

// Paginated is implemented by results that carry a page of items and its meta.
type Paginated interface {
	PageItems() any
	PageMeta() any
}

// Wrap shapes result into the success envelope. A paginated result is split
// into data (the items) and meta; anything else becomes data as is.
func Wrap(status int, result any) SuccessResponse {
	env := SuccessResponse{StatusCode: status, Message: SuccessMessage, Data: result}

	switch r := result.(type) {
	case Paginated:
		env.Data = r.PageItems()
		env.Meta = r.PageMeta()
	case map[string]any:
		items, hasItems := r["items"]
		meta, hasMeta := r["meta"]
		if hasItems && hasMeta {
			env.Data = items
			env.Meta = meta
		}
	}
	return env
}

// Success writes result wrapped in the success envelope with the given status.
func Success(c echo.Context, status int, result any) error {
	return c.JSON(status, Wrap(status, result))
}

// OK is Success with 200.
func OK(c echo.Context, result any) error {
	return Success(c, http.StatusOK, result)
}

// Created is Success with 201.
func Created(c echo.Context, result any) error {
	return Success(c, http.StatusCreated, result)
}
