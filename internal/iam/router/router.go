package router

import (
	"net/http"
	"time"

	"iam/internal/iam/config"
	"iam/internal/iam/handler"
	"iam/internal/iam/metrics"
	"iam/internal/iam/policy"
	"iam/internal/iam/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func RegisterRoutes(e *echo.Echo, cfg *config.Config, svc service.IAMService, engine *policy.Engine, m *metrics.Metrics) {
	h := handler.NewIAMHandler(svc)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	e.Use(handler.RequestIDMiddleware)
	e.Use(m.Middleware())

	e.GET("/health", handler.HealthCheck)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	// Signup and login are throttled per client IP.
	auth := e.Group("/auth")
	auth.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.AuthRateLimit),
			Burst:     cfg.AuthRateBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]map[string]string{
				"error": {"code": "rate_limited", "message": "Too many requests"},
			})
		},
	}))
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)

	// Everything below requires the catalog requirement of its route template.
	guard := handler.NewRBACMiddleware(engine, m)
	protected := []echo.MiddlewareFunc{handler.AuthMiddleware(svc), guard.Middleware()}

	e.GET("/me", h.Me, protected...)

	e.PUT("/admin/assign-role", h.AssignRole, protected...)
	e.PUT("/admin/remove-role", h.RemoveRole, protected...)

	e.POST("/admin/temp-permissions/grant", h.GrantTempPermission, protected...)
	e.GET("/admin/temp-permissions", h.ListTempPermissions, protected...)
	e.POST("/admin/temp-permissions/revoke", h.RevokeTempPermission, protected...)

	e.GET("/admin/sessions", h.ListSessions, protected...)
	e.POST("/admin/sessions/revoke", h.RevokeSession, protected...)

	e.GET("/admin/audit-logs", h.ListAuditLogs, protected...)

	e.GET("/admin/users", h.ListUsers, protected...)
	e.POST("/admin/users", h.CreateUser, protected...)
	e.PATCH("/admin/users/:id", h.UpdateUser, protected...)
	e.DELETE("/admin/users/:id", h.DeleteUser, protected...)
	e.GET("/users/lookup", h.LookupUser, protected...)
}
