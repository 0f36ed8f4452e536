package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"iam/internal/iam/model"
	"iam/internal/iam/policy"
	"iam/internal/iam/repository"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret!"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingSink struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (r *recordingSink) Record(ctx context.Context, entry model.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingSink) byAction(action string) []model.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	svc   *Service
	store *repository.MemoryRepository
	sink  *recordingSink
	clock *fakeClock
	admin model.Caller
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	engine, err := policy.NewEngine()
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	store := repository.NewMemoryRepository()
	sink := &recordingSink{}
	tokens := NewTokenIssuer(testSecret, "iam-test", time.Hour)
	tokens.Clock = clock.Now

	svc := NewService(store, engine, sink, tokens, nil, 7*24*time.Hour)
	svc.Clock = clock.Now
	require.NoError(t, svc.SeedCatalog(context.Background()))

	env := &testEnv{svc: svc, store: store, sink: sink, clock: clock}
	env.addUser(t, "admin-1", "admin@example.com", "root", model.RoleAdmin)
	env.admin = model.Caller{UserID: "admin-1", IP: "10.0.0.1", UserAgent: "test-agent"}
	return env
}

// addUser writes a user straight to the store, skipping password hashing.
func (e *testEnv) addUser(t *testing.T, id, email, username, roleName string) *model.User {
	t.Helper()
	ctx := context.Background()
	now := e.clock.Now()
	user := &model.User{ID: id, Email: email, Username: username, CreatedAt: now}

	var edge *model.UserRole
	if roleName != "" {
		role, err := e.store.FindRoleByName(ctx, roleName)
		require.NoError(t, err)
		require.NotNil(t, role)
		edge = &model.UserRole{ID: "ur-" + id, UserID: id, RoleID: role.ID, RoleName: role.Name, CreatedAt: now}
	}
	require.NoError(t, e.store.CreateUser(ctx, user, edge))
	return user
}

func (e *testEnv) effective(t *testing.T, userID string) model.EffectivePermissions {
	t.Helper()
	eff, err := e.svc.Evaluator.EffectivePermissions(context.Background(), userID, e.clock.Now())
	require.NoError(t, err)
	return eff
}

func ptr[T any](v T) *T { return &v }
