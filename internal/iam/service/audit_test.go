package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"iam/internal/iam/metrics"
	"iam/internal/iam/model"
	"iam/internal/iam/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) CreateAuditLog(ctx context.Context, log *model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditRepository) ListAuditLogs(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]*model.AuditLog, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AuditLog), args.Error(1)
}

func closeSink(t *testing.T, sink *AsyncAuditSink) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))
}

func auditCount(m *metrics.Metrics, action, outcome string) float64 {
	return testutil.ToFloat64(m.AuditEvents.WithLabelValues(action, outcome))
}

func TestAsyncAuditSink(t *testing.T) {
	cfg := AuditSinkConfig{Timeout: time.Second, MaxRetries: 2, Backoff: time.Millisecond}
	entry := model.AuditEntry{
		Action:  model.ActionRoleAssign,
		Subject: "u1",
		Caller:  model.Caller{UserID: "admin-1", IP: "10.0.0.1"},
		Meta:    map[string]any{"newRole": "manager"},
	}

	t.Run("writes subject and actor separately", func(t *testing.T) {
		repo := new(MockAuditRepository)
		m := metrics.New()
		repo.On("CreateAuditLog", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
			return l.UserID == "u1" && l.ActorID == "admin-1" && l.IP == "10.0.0.1" && l.Action == model.ActionRoleAssign
		})).Return(nil).Once()

		sink := NewAsyncAuditSink(repo, cfg, m)
		sink.Record(context.Background(), entry)
		closeSink(t, sink)

		repo.AssertExpectations(t)
		assert.Equal(t, 1.0, auditCount(m, model.ActionRoleAssign, "recorded"))
	})

	t.Run("retries with the same id until the write lands", func(t *testing.T) {
		repo := new(MockAuditRepository)
		m := metrics.New()
		var ids []string
		capture := func(args mock.Arguments) { ids = append(ids, args.Get(1).(*model.AuditLog).ID) }
		repo.On("CreateAuditLog", mock.Anything, mock.Anything).Return(errors.New("primary stepped down")).Run(capture).Once()
		repo.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil).Run(capture).Once()

		sink := NewAsyncAuditSink(repo, cfg, m)
		sink.Record(context.Background(), entry)
		closeSink(t, sink)

		repo.AssertExpectations(t)
		require.Len(t, ids, 2)
		assert.Equal(t, ids[0], ids[1])
		assert.Equal(t, 1.0, auditCount(m, model.ActionRoleAssign, "retried"))
		assert.Equal(t, 1.0, auditCount(m, model.ActionRoleAssign, "recorded"))
	})

	t.Run("duplicate after a lost ack counts as recorded", func(t *testing.T) {
		repo := new(MockAuditRepository)
		m := metrics.New()
		repo.On("CreateAuditLog", mock.Anything, mock.Anything).Return(repository.ErrDuplicate).Once()

		sink := NewAsyncAuditSink(repo, cfg, m)
		sink.Record(context.Background(), entry)
		closeSink(t, sink)

		repo.AssertExpectations(t)
		assert.Equal(t, 1.0, auditCount(m, model.ActionRoleAssign, "recorded"))
	})

	t.Run("drops after the last attempt", func(t *testing.T) {
		repo := new(MockAuditRepository)
		m := metrics.New()
		repo.On("CreateAuditLog", mock.Anything, mock.Anything).Return(errors.New("store down")).Times(3)

		sink := NewAsyncAuditSink(repo, cfg, m)
		sink.Record(context.Background(), entry)
		closeSink(t, sink)

		repo.AssertExpectations(t)
		assert.Equal(t, 1.0, auditCount(m, model.ActionRoleAssign, "dropped"))
		assert.Equal(t, 0.0, auditCount(m, model.ActionRoleAssign, "recorded"))
	})

	t.Run("cancelled request context does not abort the write", func(t *testing.T) {
		repo := new(MockAuditRepository)
		repo.On("CreateAuditLog", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), mock.Anything).Return(nil).Once()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sink := NewAsyncAuditSink(repo, cfg, nil)
		sink.Record(ctx, entry)
		closeSink(t, sink)

		repo.AssertExpectations(t)
	})

	t.Run("close gives up when its context ends first", func(t *testing.T) {
		repo := new(MockAuditRepository)
		release := make(chan struct{})
		repo.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) { <-release }).Once()

		sink := NewAsyncAuditSink(repo, cfg, nil)
		sink.Record(context.Background(), entry)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, sink.Close(ctx), context.DeadlineExceeded)

		close(release)
		closeSink(t, sink)
	})
}

func TestAuditRetryPolicy(t *testing.T) {
	sink := NewAsyncAuditSink(new(MockAuditRepository), AuditSinkConfig{
		Timeout: time.Second, MaxRetries: 3, Backoff: 100 * time.Millisecond,
	}, nil)

	policy := sink.retryPolicy()
	assert.Equal(t, 100*time.Millisecond, policy.NextBackOff())
	assert.Equal(t, 200*time.Millisecond, policy.NextBackOff())
	assert.Equal(t, 400*time.Millisecond, policy.NextBackOff())
	assert.Equal(t, backoff.Stop, policy.NextBackOff(), "gives up after MaxRetries")

	noRetry := NewAsyncAuditSink(new(MockAuditRepository), AuditSinkConfig{Timeout: time.Second}, nil)
	assert.Equal(t, backoff.Stop, noRetry.retryPolicy().NextBackOff())
}

func TestListAuditLogs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sink := NewAsyncAuditSink(env.store, AuditSinkConfig{Timeout: time.Second}, nil)
	sink.clock = env.clock.Now
	env.svc.Audit = sink

	env.addUser(t, "u1", "u1@example.com", "lee", model.RoleUser)
	_, err := env.svc.AssignRole(ctx, env.admin, model.AssignRoleReq{UserID: "u1", RoleName: model.RoleAuditor})
	require.NoError(t, err)
	env.clock.Advance(time.Second)
	_, err = env.svc.GrantTempPermission(ctx, env.admin, model.GrantTempPermissionReq{
		UserID: "u1", Permission: model.PermSessionRead, DurationMinutes: ptr(10.0),
	})
	require.NoError(t, err)
	env.clock.Advance(time.Second)
	_, err = env.svc.RemoveRole(ctx, env.admin, model.RemoveRoleReq{UserID: "u1", RoleName: model.RoleAuditor})
	require.NoError(t, err)
	closeSink(t, sink)

	t.Run("subject history newest first", func(t *testing.T) {
		resp, err := env.svc.ListAuditLogs(ctx, model.ListAuditLogsReq{Identifier: "lee"})
		require.NoError(t, err)
		var actions []string
		for _, l := range resp.Logs {
			actions = append(actions, l.Action)
			assert.Equal(t, "admin-1", l.ActorID)
		}
		assert.Equal(t, []string{model.ActionRoleReset, model.ActionTempPermissionGrant, model.ActionRoleAssign}, actions)
	})

	t.Run("action filter is case-insensitive", func(t *testing.T) {
		resp, err := env.svc.ListAuditLogs(ctx, model.ListAuditLogsReq{Action: "role_assign"})
		require.NoError(t, err)
		require.Len(t, resp.Logs, 1)
		assert.Equal(t, model.RoleAuditor, resp.Logs[0].Meta["newRole"])
	})

	t.Run("paging", func(t *testing.T) {
		resp, err := env.svc.ListAuditLogs(ctx, model.ListAuditLogsReq{UserID: "u1", Limit: 2})
		require.NoError(t, err)
		require.True(t, resp.HasMore)
		require.NotNil(t, resp.NextCursor)

		next, err := env.svc.ListAuditLogs(ctx, model.ListAuditLogsReq{UserID: "u1", Limit: 2, Cursor: *resp.NextCursor})
		require.NoError(t, err)
		require.Len(t, next.Logs, 1)
		assert.False(t, next.HasMore)
	})
}
