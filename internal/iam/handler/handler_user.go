package handler

import (
	"net/http"

	"iam/internal/iam/model"

	"github.com/labstack/echo/v4"
)

// ListUsers handles GET /admin/users
func (h *IAMHandler) ListUsers(c echo.Context) error {
	var req model.ListUsersReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid parameters")
	}

	resp, err := h.Service.ListUsers(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateUser handles POST /admin/users
func (h *IAMHandler) CreateUser(c echo.Context) error {
	var req model.CreateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	user, err := h.Service.CreateUser(c.Request().Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PATCH /admin/users/:id
func (h *IAMHandler) UpdateUser(c echo.Context) error {
	var req model.UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	user, err := h.Service.UpdateUser(c.Request().Context(), caller(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/users/:id
func (h *IAMHandler) DeleteUser(c echo.Context) error {
	if err := h.Service.DeleteUser(c.Request().Context(), caller(c), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// LookupUser handles GET /users/lookup
func (h *IAMHandler) LookupUser(c echo.Context) error {
	var req model.LookupUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid parameters")
	}

	resp, err := h.Service.LookupUser(c.Request().Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
