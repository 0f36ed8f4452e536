package repository

import (
	"context"
	"errors"
	"time"

	"iam/internal/iam/model"
)

var (
	ErrDuplicate     = errors.New("duplicate record")
	ErrInvalidCursor = errors.New("invalid cursor")
)

// Lookups return (nil, nil) when nothing matches.
// List methods return up to page.FetchLimit() rows ordered by created_at desc, id desc,
// starting strictly after the row named by page.Cursor.

type UserRepository interface {
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	// FindUserByIdentifier matches an email (case-insensitive) or a username.
	FindUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	ListUsers(ctx context.Context, page model.PageRequest) ([]*model.User, error)
	// CreateUser inserts the user and its single role edge atomically.
	CreateUser(ctx context.Context, user *model.User, edge *model.UserRole) error
	UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
	// DeleteUserCascade removes the user with its sessions, role edge, audit logs and grants.
	DeleteUserCascade(ctx context.Context, id string) (bool, error)
}

type RoleRepository interface {
	// SeedCatalog upserts permissions and roles; existing edges are kept and missing ones added.
	SeedCatalog(ctx context.Context, permissions []string, roles []*model.Role) error
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
	FindUserRole(ctx context.Context, userID string) (*model.UserRole, error)
	// ReplaceUserRole deletes every edge of edge.UserID and inserts edge in one transaction.
	// It returns the role name the user held before, if any.
	ReplaceUserRole(ctx context.Context, edge *model.UserRole) (string, error)
}

type GrantRepository interface {
	CreateGrant(ctx context.Context, grant *model.TempPermissionGrant) error
	FindGrant(ctx context.Context, id string) (*model.TempPermissionGrant, error)
	// DeleteGrant hard-deletes a grant and reports whether it existed.
	DeleteGrant(ctx context.Context, id string) (bool, error)
	ListActiveGrantsForUser(ctx context.Context, userID string, now time.Time) ([]*model.TempPermissionGrant, error)
	ListGrants(ctx context.Context, filter model.GrantFilter, page model.PageRequest) ([]*model.TempPermissionGrant, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	FindSession(ctx context.Context, id string) (*model.Session, error)
	FindSessionByRefreshToken(ctx context.Context, refreshTokenID string) (*model.Session, error)
	// RevokeSessions flips active sessions matching sel to inactive and returns how many changed.
	RevokeSessions(ctx context.Context, sel model.SessionSelector) (int64, error)
	ListSessions(ctx context.Context, filter model.SessionFilter, page model.PageRequest) ([]*model.Session, error)
}

// AuditRepository is append-only.
type AuditRepository interface {
	CreateAuditLog(ctx context.Context, log *model.AuditLog) error
	ListAuditLogs(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]*model.AuditLog, error)
}

// Store is the single process-wide handle injected into every component.
type Store interface {
	UserRepository
	RoleRepository
	GrantRepository
	SessionRepository
	AuditRepository
	EnsureIndexes(ctx context.Context) error
}
