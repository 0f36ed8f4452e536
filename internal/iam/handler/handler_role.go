package handler

import (
	"net/http"

	"iam/internal/iam/model"

	"github.com/labstack/echo/v4"
)

// AssignRole handles PUT /admin/assign-role
func (h *IAMHandler) AssignRole(c echo.Context) error {
	var req model.AssignRoleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	resp, err := h.Service.AssignRole(c.Request().Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RemoveRole handles PUT /admin/remove-role
func (h *IAMHandler) RemoveRole(c echo.Context) error {
	var req model.RemoveRoleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	resp, err := h.Service.RemoveRole(c.Request().Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
