package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"iam/internal/iam/metrics"
	"iam/internal/iam/model"
	"iam/internal/iam/policy"
	"iam/internal/iam/repository"
	"iam/internal/iam/util"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	// ErrInvalid matches every *model.ErrorDetail returned for bad input.
	ErrInvalid = model.ErrInvalid
)

type IAMService interface {
	Signup(ctx context.Context, caller model.Caller, req model.SignupReq) (*model.AuthResp, error)
	Login(ctx context.Context, caller model.Caller, req model.LoginReq) (*model.AuthResp, error)
	Authenticate(ctx context.Context, token string) (*model.Principal, error)

	AssignRole(ctx context.Context, caller model.Caller, req model.AssignRoleReq) (*model.RoleChangeResp, error)
	RemoveRole(ctx context.Context, caller model.Caller, req model.RemoveRoleReq) (*model.RoleChangeResp, error)

	GrantTempPermission(ctx context.Context, caller model.Caller, req model.GrantTempPermissionReq) (*model.TempPermissionGrant, error)
	ListTempPermissions(ctx context.Context, req model.ListTempPermissionsReq) (*model.GrantListResp, error)
	RevokeTempPermission(ctx context.Context, caller model.Caller, req model.RevokeTempPermissionReq) (*model.RevokeTempPermissionResp, error)

	ListSessions(ctx context.Context, req model.ListSessionsReq) (*model.SessionListResp, error)
	RevokeSession(ctx context.Context, caller model.Caller, req model.RevokeSessionReq) (*model.RevokeSessionResp, error)

	ListAuditLogs(ctx context.Context, req model.ListAuditLogsReq) (*model.AuditLogListResp, error)

	ListUsers(ctx context.Context, req model.ListUsersReq) (*model.UserListResp, error)
	CreateUser(ctx context.Context, caller model.Caller, req model.CreateUserReq) (*model.User, error)
	UpdateUser(ctx context.Context, caller model.Caller, id string, req model.UpdateUserReq) (*model.User, error)
	DeleteUser(ctx context.Context, caller model.Caller, id string) error
	LookupUser(ctx context.Context, caller model.Caller, req model.LookupUserReq) (*model.LookupUserResp, error)
}

type Service struct {
	Store     repository.Store
	Engine    *policy.Engine
	Evaluator *policy.Evaluator
	Audit     AuditSink
	Tokens    *TokenIssuer
	Metrics   *metrics.Metrics

	SessionTTL time.Duration
	// Clock is the source of "now" for expiry decisions.
	Clock func() time.Time
}

var _ IAMService = (*Service)(nil)

func NewService(store repository.Store, engine *policy.Engine, audit AuditSink, tokens *TokenIssuer, m *metrics.Metrics, sessionTTL time.Duration) *Service {
	return &Service{
		Store:      store,
		Engine:     engine,
		Evaluator:  policy.NewEvaluator(store, store),
		Audit:      audit,
		Tokens:     tokens,
		Metrics:    m,
		SessionTTL: sessionTTL,
		Clock:      time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

// SeedCatalog writes the role and permission catalog into the store.
func (s *Service) SeedCatalog(ctx context.Context) error {
	return s.Store.SeedCatalog(ctx, s.Engine.Permissions(), s.Engine.SeedRoles(s.now()))
}

// EnsureAdmin creates an admin account when no user with that email exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	req := model.CreateUserReq{Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return err
	}
	email = req.Email
	existing, err := s.Store.FindUserByIdentifier(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.createUser(ctx, email, "", password, model.RoleAdmin)
	if err == nil {
		util.GetLogger().Info("seeded admin user", "email", email)
	}
	return err
}

// resolveSubject maps a userId or identifier to a user id. Unknown identifiers yield "".
func (s *Service) resolveSubject(ctx context.Context, userID, identifier string) (string, error) {
	if userID != "" {
		return userID, nil
	}
	if identifier == "" {
		return "", nil
	}
	u, err := s.Store.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	return u.ID, nil
}

// record hands an audit entry to the sink; it never fails the caller.
func (s *Service) record(ctx context.Context, caller model.Caller, action, subject string, meta map[string]any) {
	if s.Audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["ip"] = caller.IP
	meta["userAgent"] = caller.UserAgent
	if caller.RequestID != "" {
		meta["requestId"] = caller.RequestID
	}
	s.Audit.Record(ctx, model.AuditEntry{
		Action:  action,
		Subject: subject,
		Caller:  caller,
		Meta:    meta,
	})
}

func cursorErr(err error) error {
	if errors.Is(err, repository.ErrInvalidCursor) {
		return model.Invalid("invalid cursor")
	}
	return err
}

func logger() *slog.Logger {
	return util.GetLogger()
}
