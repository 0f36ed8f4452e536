package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"iam/internal/iam/model"
	"iam/internal/iam/util"
)

// MemoryRepository is a process-local Store for development and tests.
// The mutex is never held across anything but map access.
type MemoryRepository struct {
	mu          sync.RWMutex
	users       map[string]*model.User
	roles       map[string]*model.Role // by name
	permissions map[string]bool
	userRoles   map[string]*model.UserRole // by user id
	grants      map[string]*model.TempPermissionGrant
	sessions    map[string]*model.Session
	auditLogs   map[string]*model.AuditLog
}

var _ Store = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:       make(map[string]*model.User),
		roles:       make(map[string]*model.Role),
		permissions: make(map[string]bool),
		userRoles:   make(map[string]*model.UserRole),
		grants:      make(map[string]*model.TempPermissionGrant),
		sessions:    make(map[string]*model.Session),
		auditLogs:   make(map[string]*model.AuditLog),
	}
}

func (r *MemoryRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}

// keysetPage filters rows, orders them newest first and returns up to fetch rows after cursor.
func keysetPage[T any](all map[string]T, keep func(T) bool, key func(T) (time.Time, string), cursor string, fetch int, clone func(T) T) ([]T, error) {
	var anchorAt time.Time
	var anchorID string
	if cursor != "" {
		anchor, ok := all[cursor]
		if !ok {
			return nil, ErrInvalidCursor
		}
		anchorAt, anchorID = key(anchor)
	}

	rows := make([]T, 0, len(all))
	for _, row := range all {
		if !keep(row) {
			continue
		}
		if cursor != "" {
			at, id := key(row)
			if !(at.Before(anchorAt) || (at.Equal(anchorAt) && id < anchorID)) {
				continue
			}
		}
		rows = append(rows, row)
	}

	slices.SortFunc(rows, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		if c := bt.Compare(at); c != 0 {
			return c
		}
		return strings.Compare(bid, aid)
	})

	if len(rows) > fetch {
		rows = rows[:fetch]
	}
	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = clone(row)
	}
	return out, nil
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func cloneGrant(g *model.TempPermissionGrant) *model.TempPermissionGrant {
	c := *g
	return &c
}

func cloneSession(s *model.Session) *model.Session {
	c := *s
	return &c
}

func cloneAudit(a *model.AuditLog) *model.AuditLog {
	c := *a
	return &c
}

func cloneRole(ro *model.Role) *model.Role {
	c := *ro
	c.Permissions = slices.Clone(ro.Permissions)
	return &c
}

func anyRow[T any](T) bool { return true }

// Users

func (r *MemoryRepository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *MemoryRepository) FindUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	email := strings.ToLower(identifier)
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	for _, u := range r.users {
		if u.Username != "" && u.Username == identifier {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListUsers(ctx context.Context, page model.PageRequest) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keysetPage(r.users, anyRow[*model.User], userKey, page.Cursor, page.FetchLimit(), cloneUser)
}

func userKey(u *model.User) (time.Time, string) { return u.CreatedAt, u.ID }

// uniqueLocked reports whether email/username are free for user id. Callers hold mu.
func (r *MemoryRepository) uniqueLocked(id, email, username string) bool {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if u.Email == email || (username != "" && u.Username == username) {
			return false
		}
	}
	return true
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *model.User, edge *model.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists || !r.uniqueLocked(user.ID, user.Email, user.Username) {
		return ErrDuplicate
	}
	r.users[user.ID] = cloneUser(user)
	if edge != nil {
		c := *edge
		r.userRoles[edge.UserID] = &c
	}
	return nil
}

func (r *MemoryRepository) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	next := cloneUser(current)
	if upd.Email != nil {
		next.Email = *upd.Email
	}
	if upd.Username != nil {
		next.Username = *upd.Username
	}
	if upd.ClearUsername {
		next.Username = ""
	}
	if upd.PasswordHash != nil {
		next.PasswordHash = *upd.PasswordHash
	}
	if upd.MFAEnabled != nil {
		next.MFAEnabled = *upd.MFAEnabled
	}
	if !r.uniqueLocked(id, next.Email, next.Username) {
		return nil, ErrDuplicate
	}
	r.users[id] = next
	return cloneUser(next), nil
}

func (r *MemoryRepository) DeleteUserCascade(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	for k, s := range r.sessions {
		if s.UserID == id {
			delete(r.sessions, k)
		}
	}
	for k, a := range r.auditLogs {
		if a.UserID == id {
			delete(r.auditLogs, k)
		}
	}
	for k, g := range r.grants {
		if g.UserID == id {
			delete(r.grants, k)
		}
	}
	delete(r.userRoles, id)
	delete(r.users, id)
	return true, nil
}

// Roles

func (r *MemoryRepository) SeedCatalog(ctx context.Context, permissions []string, roles []*model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range permissions {
		r.permissions[code] = true
	}
	for _, role := range roles {
		existing, ok := r.roles[role.Name]
		if !ok {
			r.roles[role.Name] = cloneRole(role)
			continue
		}
		for _, p := range role.Permissions {
			if !slices.Contains(existing.Permissions, p) {
				existing.Permissions = append(existing.Permissions, p)
			}
		}
	}
	return nil
}

func (r *MemoryRepository) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ro, ok := r.roles[name]; ok {
		return cloneRole(ro), nil
	}
	return nil, nil
}

func (r *MemoryRepository) FindUserRole(ctx context.Context, userID string) (*model.UserRole, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ur, ok := r.userRoles[userID]; ok {
		c := *ur
		return &c, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ReplaceUserRole(ctx context.Context, edge *model.UserRole) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var previous string
	if ur, ok := r.userRoles[edge.UserID]; ok {
		previous = ur.RoleName
	}
	c := *edge
	if c.ID == "" {
		c.ID = util.NewID()
	}
	r.userRoles[edge.UserID] = &c
	return previous, nil
}

// Grants

func grantKey(g *model.TempPermissionGrant) (time.Time, string) { return g.CreatedAt, g.ID }

func (r *MemoryRepository) CreateGrant(ctx context.Context, grant *model.TempPermissionGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.grants[grant.ID]; exists {
		return ErrDuplicate
	}
	r.grants[grant.ID] = cloneGrant(grant)
	return nil
}

func (r *MemoryRepository) FindGrant(ctx context.Context, id string) (*model.TempPermissionGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.grants[id]; ok {
		return cloneGrant(g), nil
	}
	return nil, nil
}

func (r *MemoryRepository) DeleteGrant(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.grants[id]; !ok {
		return false, nil
	}
	delete(r.grants, id)
	return true, nil
}

func (r *MemoryRepository) ListActiveGrantsForUser(ctx context.Context, userID string, now time.Time) ([]*model.TempPermissionGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	active := func(g *model.TempPermissionGrant) bool { return g.UserID == userID && g.Active(now) }
	return keysetPage(r.grants, active, grantKey, "", len(r.grants), cloneGrant)
}

func (r *MemoryRepository) ListGrants(ctx context.Context, filter model.GrantFilter, page model.PageRequest) ([]*model.TempPermissionGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	match := func(g *model.TempPermissionGrant) bool {
		if filter.UserID != "" && g.UserID != filter.UserID {
			return false
		}
		return !filter.ActiveOnly || g.Active(filter.Now)
	}
	return keysetPage(r.grants, match, grantKey, page.Cursor, page.FetchLimit(), cloneGrant)
}

// Sessions

func sessionKey(s *model.Session) (time.Time, string) { return s.CreatedAt, s.ID }

func (r *MemoryRepository) CreateSession(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == session.ID || s.RefreshTokenID == session.RefreshTokenID {
			return ErrDuplicate
		}
	}
	r.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *MemoryRepository) FindSession(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[id]; ok {
		return cloneSession(s), nil
	}
	return nil, nil
}

func (r *MemoryRepository) FindSessionByRefreshToken(ctx context.Context, refreshTokenID string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.RefreshTokenID == refreshTokenID {
			return cloneSession(s), nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) RevokeSessions(ctx context.Context, sel model.SessionSelector) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		matched := (sel.SessionID != "" && s.ID == sel.SessionID) ||
			(sel.SessionID == "" && sel.RefreshTokenID != "" && s.RefreshTokenID == sel.RefreshTokenID)
		if matched && s.Active {
			s.Active = false
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) ListSessions(ctx context.Context, filter model.SessionFilter, page model.PageRequest) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	match := func(s *model.Session) bool {
		if filter.UserID != "" && s.UserID != filter.UserID {
			return false
		}
		switch filter.Status {
		case model.SessionStatusActive:
			return s.Active
		case model.SessionStatusInactive:
			return !s.Active
		}
		return true
	}
	return keysetPage(r.sessions, match, sessionKey, page.Cursor, page.FetchLimit(), cloneSession)
}

// Audit logs

func auditKey(a *model.AuditLog) (time.Time, string) { return a.CreatedAt, a.ID }

func (r *MemoryRepository) CreateAuditLog(ctx context.Context, log *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.auditLogs[log.ID]; exists {
		return ErrDuplicate
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.auditLogs[log.ID] = cloneAudit(log)
	return nil
}

func (r *MemoryRepository) ListAuditLogs(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]*model.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	match := func(a *model.AuditLog) bool {
		if filter.UserID != "" && a.UserID != filter.UserID {
			return false
		}
		return filter.Action == "" || a.Action == filter.Action
	}
	return keysetPage(r.auditLogs, match, auditKey, page.Cursor, page.FetchLimit(), cloneAudit)
}
