package handler

import (
	"context"

	"iam/internal/iam/model"
	"iam/internal/iam/service"

	"github.com/stretchr/testify/mock"
)

type MockIAMService struct {
	mock.Mock
}

var _ service.IAMService = (*MockIAMService)(nil)

func (m *MockIAMService) Signup(ctx context.Context, caller model.Caller, req model.SignupReq) (*model.AuthResp, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResp), args.Error(1)
}

func (m *MockIAMService) Login(ctx context.Context, caller model.Caller, req model.LoginReq) (*model.AuthResp, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResp), args.Error(1)
}

func (m *MockIAMService) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Principal), args.Error(1)
}

func (m *MockIAMService) AssignRole(ctx context.Context, caller model.Caller, req model.AssignRoleReq) (*model.RoleChangeResp, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleChangeResp), args.Error(1)
}

func (m *MockIAMService) RemoveRole(ctx context.Context, caller model.Caller, req model.RemoveRoleReq) (*model.RoleChangeResp, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleChangeResp), args.Error(1)
}

func (m *MockIAMService) GrantTempPermission(ctx context.Context, caller model.Caller, req model.GrantTempPermissionReq) (*model.TempPermissionGrant, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TempPermissionGrant), args.Error(1)
}

func (m *MockIAMService) ListTempPermissions(ctx context.Context, req model.ListTempPermissionsReq) (*model.GrantListResp, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GrantListResp), args.Error(1)
}

func (m *MockIAMService) RevokeTempPermission(ctx context.Context, caller model.Caller, req model.RevokeTempPermissionReq) (*model.RevokeTempPermissionResp, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RevokeTempPermissionResp), args.Error(1)
}

func (m *MockIAMService) ListSessions(ctx context.Context, req model.ListSessionsReq) (*model.SessionListResp, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionListResp), args.Error(1)
}

func (m *MockIAMService) RevokeSession(ctx context.Context, caller model.Caller, req model.RevokeSessionReq) (*model.RevokeSessionResp, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RevokeSessionResp), args.Error(1)
}

func (m *MockIAMService) ListAuditLogs(ctx context.Context, req model.ListAuditLogsReq) (*model.AuditLogListResp, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditLogListResp), args.Error(1)
}

func (m *MockIAMService) ListUsers(ctx context.Context, req model.ListUsersReq) (*model.UserListResp, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserListResp), args.Error(1)
}

func (m *MockIAMService) CreateUser(ctx context.Context, caller model.Caller, req model.CreateUserReq) (*model.User, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockIAMService) UpdateUser(ctx context.Context, caller model.Caller, id string, req model.UpdateUserReq) (*model.User, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockIAMService) DeleteUser(ctx context.Context, caller model.Caller, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockIAMService) LookupUser(ctx context.Context, caller model.Caller, req model.LookupUserReq) (*model.LookupUserResp, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LookupUserResp), args.Error(1)
}
