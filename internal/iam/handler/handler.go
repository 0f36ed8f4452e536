package handler

import (
	"net/http"

	"iam/internal/iam/model"
	"iam/internal/iam/service"

	"github.com/labstack/echo/v4"
)

type IAMHandler struct {
	Service service.IAMService
}

func NewIAMHandler(s service.IAMService) *IAMHandler {
	return &IAMHandler{Service: s}
}

// caller describes who is acting, from where.
func caller(c echo.Context) model.Caller {
	return model.Caller{
		UserID:    PrincipalFrom(c).UserID(),
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		RequestID: requestID(c),
	}
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Me handles GET /me
func (h *IAMHandler) Me(c echo.Context) error {
	p := PrincipalFrom(c)
	if p == nil {
		return respondError(c, service.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, model.NewMeResponse(p))
}
