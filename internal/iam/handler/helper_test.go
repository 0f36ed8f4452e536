package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"iam/internal/iam/metrics"
	"iam/internal/iam/model"
	"iam/internal/iam/policy"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminToken   = "admin-token"
	analystToken = "analyst-token"
	userToken    = "user-token"
)

func testPrincipal(id, role string, perms ...string) *model.Principal {
	return &model.Principal{
		User:      model.User{ID: id, Email: id + "@example.com"},
		SessionID: "sess-" + id,
		Access:    model.NewEffectivePermissions([]string{role}, perms, nil, time.Now()),
	}
}

var (
	adminPrincipal = testPrincipal("admin-1", model.RoleAdmin,
		model.PermUserRead, model.PermUserCreate, model.PermUserUpdate, model.PermUserDelete,
		model.PermRoleAssign, model.PermAuditRead, model.PermSessionRead, model.PermSessionRevoke, model.PermTempGrant)
	analystPrincipal = testPrincipal("analyst-1", model.RoleSecurityAnalyst, model.PermAuditRead, model.PermSessionRead)
	userPrincipal    = testPrincipal("user-1", model.RoleUser, model.PermUserRead)
)

// SetupServer wires the handlers behind the same middleware chain the router uses.
func SetupServer(t *testing.T, svc *MockIAMService, m *metrics.Metrics) *echo.Echo {
	t.Helper()
	engine, err := policy.NewEngine()
	require.NoError(t, err)

	svc.On("Authenticate", mock.Anything, adminToken).Return(adminPrincipal, nil).Maybe()
	svc.On("Authenticate", mock.Anything, analystToken).Return(analystPrincipal, nil).Maybe()
	svc.On("Authenticate", mock.Anything, userToken).Return(userPrincipal, nil).Maybe()

	h := NewIAMHandler(svc)
	guard := NewRBACMiddleware(engine, m)
	protected := []echo.MiddlewareFunc{AuthMiddleware(svc), guard.Middleware()}

	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.POST("/auth/signup", h.Signup)
	e.POST("/auth/login", h.Login)
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
	e.GET("/admin/unlisted", func(c echo.Context) error { return c.NoContent(204) }, protected...)
	return e
}

func PerformRequest(e *echo.Echo, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var bodyReader *strings.Reader
	switch b := body.(type) {
	case nil:
		bodyReader = strings.NewReader("")
	case string:
		bodyReader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		bodyReader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "handler-test")
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorDetail {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}
