package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/souleimarejeb/rbac-app/internal/model"
	"github.com/souleimarejeb/rbac-app/internal/response"
	"github.com/souleimarejeb/rbac-app/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body model.NewUser true "User payload"
// @Success 201 {object} response.SuccessResponse{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req model.NewUser
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	created, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.Created(c, created)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.SuccessResponse{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, user)
}

// GetUserByUsername godoc
// @Summary Get user by username
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} response.SuccessResponse{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/username/{username} [get]
func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.svc.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return response.OK(c, user)
}

// ListUsers godoc
// @Summary List users
// @Description Without page or limit every active user is returned. With either, one page
// @Description is returned and meta carries the totals.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number, starting at 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} response.SuccessResponse{data=[]model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, hasPage, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, hasLimit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if hasPage || hasLimit {
		result, err := h.svc.ListPage(ctx, page, limit)
		if err != nil {
			return err
		}
		return response.OK(c, result)
	}

	users, err := h.svc.List(ctx)
	if err != nil {
		return err
	}
	return response.OK(c, users)
}

// UpdateUser godoc
// @Summary Update user
// @Description Only the fields present in the body change.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body model.UserPatch true "Fields to change"
// @Success 200 {object} response.SuccessResponse{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var patch model.UserPatch
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	user, err := h.svc.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return response.OK(c, user)
}

// DeleteUser godoc
// @Summary Soft-delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.SuccessResponse{data=model.DeleteResult}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	res, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, res)
}
