package handler

import (
	"net/http"

	"iam/internal/iam/model"

	"github.com/labstack/echo/v4"
)

// ListSessions handles GET /admin/sessions
func (h *IAMHandler) ListSessions(c echo.Context) error {
	var req model.ListSessionsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid parameters")
	}

	resp, err := h.Service.ListSessions(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RevokeSession handles POST /admin/sessions/revoke
func (h *IAMHandler) RevokeSession(c echo.Context) error {
	var req model.RevokeSessionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	resp, err := h.Service.RevokeSession(c.Request().Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListAuditLogs handles GET /admin/audit-logs
func (h *IAMHandler) ListAuditLogs(c echo.Context) error {
	var req model.ListAuditLogsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid parameters")
	}

	resp, err := h.Service.ListAuditLogs(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
