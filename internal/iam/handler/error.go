package handler

import (
	"errors"
	"net/http"

	"iam/internal/iam/model"
	"iam/internal/iam/service"
	"iam/internal/iam/util"

	"github.com/labstack/echo/v4"
)

// httpError maps a service error to a status and body. Internal causes are logged, never returned.
func httpError(c echo.Context, err error) (int, model.ErrorResponse) {
	var status int
	var code, msg string

	var detail *model.ErrorDetail
	switch {
	case errors.As(err, &detail):
		status = http.StatusBadRequest
		code = detail.Code
		msg = detail.Message
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
		code = "unauthorized"
		msg = "Authentication required"
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
		code = "forbidden"
		msg = "Permission denied"
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		code = "not_found"
		msg = "Resource not found"
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
		code = "conflict"
		msg = "Resource already exists or was changed concurrently"
	default:
		status = http.StatusInternalServerError
		code = "internal_error"
		msg = "Internal server error"
		util.GetLogger().Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err,
		)
	}

	return status, model.ErrorResponse{
		Error: model.ErrorDetail{Code: code, Message: msg, RequestID: requestID(c)},
	}
}

func respondError(c echo.Context, err error) error {
	status, body := httpError(c, err)
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Error: model.ErrorDetail{Code: "bad_request", Message: msg, RequestID: requestID(c)},
	})
}
