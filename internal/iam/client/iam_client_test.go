package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"iam/internal/iam/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: model.ErrorDetail{Code: "unauthorized", Message: "Authentication required"}})
			return
		}
		_ = json.NewEncoder(w).Encode(model.MeResponse{
			User:  model.UserSummary{ID: "u1", Email: "u1@example.com"},
			Roles: []string{model.RoleAuditor},
			Permissions: model.PermissionBreakdown{
				Permanent: []string{model.PermAuditRead},
				Temporary: []string{model.PermSessionRead},
				Combined:  []string{model.PermAuditRead, model.PermSessionRead},
			},
		})
	})
	mux.HandleFunc("/users/lookup", func(w http.ResponseWriter, r *http.Request) {
		found := r.URL.Query().Get("identifier") == "a+b@example.com"
		resp := model.LookupUserResp{Found: found}
		if found {
			resp.User = &model.UserSummary{ID: "u2", Email: "a+b@example.com"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIAMClient(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c := NewIAMClient(srv.URL+"/", nil)

	t.Run("me", func(t *testing.T) {
		me, err := c.Me(ctx, "good")
		require.NoError(t, err)
		assert.Equal(t, "u1", me.User.ID)
		assert.Equal(t, []string{model.RoleAuditor}, me.Roles)
	})

	t.Run("has permission checks the combined set", func(t *testing.T) {
		ok, err := c.HasPermission(ctx, "good", model.PermSessionRead)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = c.HasPermission(ctx, "good", model.PermRoleAssign)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("non-200 carries the status", func(t *testing.T) {
		_, err := c.HasPermission(ctx, "bad", model.PermAuditRead)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusUnauthorized, se.Status)
		assert.Equal(t, "unauthorized", se.Code)
	})

	t.Run("lookup escapes the identifier", func(t *testing.T) {
		resp, err := c.LookupUser(ctx, "good", "a+b@example.com")
		require.NoError(t, err)
		assert.True(t, resp.Found)
		assert.Equal(t, "u2", resp.User.ID)
	})
}
