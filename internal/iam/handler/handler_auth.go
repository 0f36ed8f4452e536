package handler

import (
	"errors"
	"net/http"

	"iam/internal/iam/model"
	"iam/internal/iam/service"

	"github.com/labstack/echo/v4"
)

// Signup handles POST /auth/signup
func (h *IAMHandler) Signup(c echo.Context) error {
	var req model.SignupReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	resp, err := h.Service.Signup(c.Request().Context(), caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *IAMHandler) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}

	resp, err := h.Service.Login(c.Request().Context(), caller(c), req)
	if errors.Is(err, service.ErrUnauthenticated) {
		return c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Error: model.ErrorDetail{Code: "unauthorized", Message: "Invalid credentials", RequestID: requestID(c)},
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
