package handler

import (
	"net/http"

	"iam/internal/iam/metrics"
	"iam/internal/iam/model"
	"iam/internal/iam/policy"

	"github.com/labstack/echo/v4"
)

// RBACMiddleware enforces the catalog requirement declared for each route template.
type RBACMiddleware struct {
	engine  *policy.Engine
	metrics *metrics.Metrics
}

func NewRBACMiddleware(engine *policy.Engine, m *metrics.Metrics) *RBACMiddleware {
	return &RBACMiddleware{engine: engine, metrics: m}
}

// Middleware returns the Echo middleware function
func (m *RBACMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := policy.RouteKey(c.Request().Method, c.Path())
			decision := m.engine.Authorize(c.Request().Method, c.Path(), PrincipalFrom(c))
			m.metrics.Decision(key, string(decision))

			switch decision {
			case policy.DecisionAllow:
				return next(c)
			case policy.DecisionUnauthenticated:
				return c.JSON(http.StatusUnauthorized, model.ErrorResponse{
					Error: model.ErrorDetail{Code: "unauthorized", Message: "Authentication required", RequestID: requestID(c)},
				})
			default:
				return c.JSON(http.StatusForbidden, model.ErrorResponse{
					Error: model.ErrorDetail{Code: "forbidden", Message: "You do not have permission to perform this action", RequestID: requestID(c)},
				})
			}
		}
	}
}
