package handler

import (
	"net/http"

	"iam/internal/iam/model"

	"github.com/labstack/echo/v4"
)

// GrantTempPermission handles POST /admin/temp-permissions/grant
func (h *IAMHandler) GrantTempPermission(c echo.Context) error {
	var req model.GrantTempPermissionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	grant, err := h.Service.GrantTempPermission(c.Request().Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, model.GrantTempPermissionResp{Success: true, Grant: grant})
}

// ListTempPermissions handles GET /admin/temp-permissions
func (h *IAMHandler) ListTempPermissions(c echo.Context) error {
	var req model.ListTempPermissionsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid parameters")
	}

	resp, err := h.Service.ListTempPermissions(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RevokeTempPermission handles POST /admin/temp-permissions/revoke
func (h *IAMHandler) RevokeTempPermission(c echo.Context) error {
	var req model.RevokeTempPermissionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	resp, err := h.Service.RevokeTempPermission(c.Request().Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
