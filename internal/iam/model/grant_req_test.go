package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutes(v float64) *float64 { return &v }

func TestGrantTempPermissionReqValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     GrantTempPermissionReq
		wantErr string
	}{
		{
			name: "valid by user id",
			req:  GrantTempPermissionReq{UserID: "u1", Permission: PermSessionRevoke, DurationMinutes: minutes(10)},
		},
		{
			name: "valid by identifier with aliases",
			req:  GrantTempPermissionReq{Identifier: " bob@example.com ", PermissionCode: PermAuditRead, Minutes: minutes(30)},
		},
		{
			name: "lower bound accepted",
			req:  GrantTempPermissionReq{UserID: "u1", Permission: PermAuditRead, DurationMinutes: minutes(1)},
		},
		{
			name:    "zero minutes rejected",
			req:     GrantTempPermissionReq{UserID: "u1", Permission: PermAuditRead, DurationMinutes: minutes(0)},
			wantErr: "between 1 and 30",
		},
		{
			name:    "thirty one minutes rejected",
			req:     GrantTempPermissionReq{UserID: "u1", Permission: PermAuditRead, DurationMinutes: minutes(31)},
			wantErr: "between 1 and 30",
		},
		{
			name:    "fractional minutes rejected",
			req:     GrantTempPermissionReq{UserID: "u1", Permission: PermAuditRead, DurationMinutes: minutes(10.5)},
			wantErr: "whole number",
		},
		{
			name:    "missing duration rejected",
			req:     GrantTempPermissionReq{UserID: "u1", Permission: PermAuditRead},
			wantErr: "durationMinutes is required",
		},
		{
			name:    "admin permission rejected",
			req:     GrantTempPermissionReq{UserID: "u1", Permission: "admin", DurationMinutes: minutes(10)},
			wantErr: "not role names",
		},
		{
			name:    "admin permission rejected regardless of case",
			req:     GrantTempPermissionReq{UserID: "u1", Permission: " ADMIN ", DurationMinutes: minutes(5)},
			wantErr: "not role names",
		},
		{
			name:    "missing permission rejected",
			req:     GrantTempPermissionReq{UserID: "u1", DurationMinutes: minutes(5)},
			wantErr: "permission is required",
		},
		{
			name:    "missing target rejected",
			req:     GrantTempPermissionReq{Permission: PermAuditRead, DurationMinutes: minutes(5)},
			wantErr: "userId or identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, req.Permission)
				assert.GreaterOrEqual(t, req.Duration(), MinGrantMinutes)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestListRequestDefaults(t *testing.T) {
	t.Run("grant listing defaults and caps", func(t *testing.T) {
		req := ListTempPermissionsReq{}
		require.NoError(t, req.Validate())
		assert.Equal(t, DefaultGrantPageSize, req.Limit)
		assert.True(t, req.OnlyActive())

		req = ListTempPermissionsReq{Limit: 10000, ActiveOnly: "false"}
		require.NoError(t, req.Validate())
		assert.Equal(t, MaxGrantPageSize, req.Limit)
		assert.False(t, req.OnlyActive())
	})

	t.Run("session listing defaults to active", func(t *testing.T) {
		req := ListSessionsReq{}
		require.NoError(t, req.Validate())
		assert.Equal(t, SessionStatusActive, req.Status)
		assert.Equal(t, DefaultSessionPageSize, req.Limit)

		req = ListSessionsReq{Status: "expired"}
		assert.ErrorIs(t, req.Validate(), ErrInvalid)
	})

	t.Run("session revoke needs exactly one key", func(t *testing.T) {
		assert.Error(t, (&RevokeSessionReq{}).Validate())
		assert.Error(t, (&RevokeSessionReq{SessionID: "s", RefreshTokenID: "r"}).Validate())
		assert.NoError(t, (&RevokeSessionReq{RefreshTokenID: "r"}).Validate())
	})

	t.Run("remove role rejects base role", func(t *testing.T) {
		req := RemoveRoleReq{UserID: "u1", RoleName: " User "}
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Base role")
	})

	t.Run("update user needs at least one field", func(t *testing.T) {
		assert.Error(t, (&UpdateUserReq{}).Validate())
		mfa := true
		assert.NoError(t, (&UpdateUserReq{MFAEnabled: &mfa}).Validate())
	})
}
