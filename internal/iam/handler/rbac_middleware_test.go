package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"iam/internal/iam/metrics"
	"iam/internal/iam/model"
	"iam/internal/iam/service"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRBACMiddleware(t *testing.T) {
	t.Run("missing token is unauthenticated", func(t *testing.T) {
		svc := new(MockIAMService)
		e := SetupServer(t, svc, nil)

		rec := PerformRequest(e, http.MethodGet, "/admin/sessions", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decodeError(t, rec).Code)
		svc.AssertNotCalled(t, "ListSessions", mock.Anything, mock.Anything)
	})

	t.Run("rejected token is unauthenticated", func(t *testing.T) {
		svc := new(MockIAMService)
		svc.On("Authenticate", mock.Anything, "revoked").Return(nil, service.ErrUnauthenticated)
		e := SetupServer(t, svc, nil)

		rec := PerformRequest(e, http.MethodGet, "/me", nil, "revoked")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer scheme is ignored", func(t *testing.T) {
		svc := new(MockIAMService)
		e := SetupServer(t, svc, nil)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Basic YWRtaW46c2VjcmV0")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("store failure during authentication is internal and not leaked", func(t *testing.T) {
		svc := new(MockIAMService)
		svc.On("Authenticate", mock.Anything, "flaky").Return(nil, errors.New("server selection timeout on mongo-0"))
		e := SetupServer(t, svc, nil)

		rec := PerformRequest(e, http.MethodGet, "/me", nil, "flaky")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, "Internal server error", detail.Message)
		assert.NotContains(t, rec.Body.String(), "mongo-0")
		assert.NotEmpty(t, detail.RequestID)
	})

	t.Run("missing permission is forbidden without naming it", func(t *testing.T) {
		svc := new(MockIAMService)
		m := metrics.New()
		e := SetupServer(t, svc, m)

		rec := PerformRequest(e, http.MethodPut, "/admin/assign-role", model.AssignRoleReq{UserID: "u1", RoleName: "manager"}, analystToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NotContains(t, rec.Body.String(), model.PermRoleAssign)
		svc.AssertNotCalled(t, "AssignRole", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthzDecisions.WithLabelValues("PUT:/admin/assign-role", "deny")))
	})

	t.Run("undeclared route is denied even for admin", func(t *testing.T) {
		svc := new(MockIAMService)
		e := SetupServer(t, svc, nil)

		rec := PerformRequest(e, http.MethodGet, "/admin/unlisted", nil, adminToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("authorized request reaches the handler", func(t *testing.T) {
		svc := new(MockIAMService)
		m := metrics.New()
		e := SetupServer(t, svc, m)
		svc.On("ListSessions", mock.Anything, mock.Anything).Return(&model.SessionListResp{Sessions: []*model.Session{}}, nil)

		rec := PerformRequest(e, http.MethodGet, "/admin/sessions", nil, analystToken)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthzDecisions.WithLabelValues("GET:/admin/sessions", "allow")))
	})
}
