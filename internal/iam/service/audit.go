package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"iam/internal/iam/metrics"
	"iam/internal/iam/model"
	"iam/internal/iam/repository"
	"iam/internal/iam/util"

	"github.com/cenkalti/backoff/v4"
)

// AuditSink accepts audit entries. Record never blocks on the store and never reports failure.
type AuditSink interface {
	Record(ctx context.Context, entry model.AuditEntry)
}

type AuditSinkConfig struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// AsyncAuditSink writes each entry on its own goroutine, retrying and then logging and dropping.
type AsyncAuditSink struct {
	repo    repository.AuditRepository
	cfg     AuditSinkConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
	clock   func() time.Time
	wg      sync.WaitGroup
}

func NewAsyncAuditSink(repo repository.AuditRepository, cfg AuditSinkConfig, m *metrics.Metrics) *AsyncAuditSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &AsyncAuditSink{
		repo:    repo,
		cfg:     cfg,
		metrics: m,
		logger:  util.GetLogger(),
		clock:   time.Now,
	}
}

func (a *AsyncAuditSink) Record(ctx context.Context, entry model.AuditEntry) {
	// Every attempt writes the same id.
	now := a.clock()
	log := &model.AuditLog{
		ID:        util.NewIDAt(now),
		UserID:    entry.Subject,
		ActorID:   entry.Caller.UserID,
		Action:    entry.Action,
		IP:        entry.Caller.IP,
		Meta:      entry.Meta,
		CreatedAt: now,
	}

	base := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.write(base, log)
	}()
}

func (a *AsyncAuditSink) write(base context.Context, log *model.AuditLog) {
	attempt := func() error {
		ctx, cancel := context.WithTimeout(base, a.cfg.Timeout)
		defer cancel()
		err := a.repo.CreateAuditLog(ctx, log)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}
	retried := func(error, time.Duration) {
		a.metrics.Audit(log.Action, "retried")
	}

	err := backoff.RetryNotify(attempt, a.retryPolicy(), retried)
	if err == nil {
		a.metrics.Audit(log.Action, "recorded")
		return
	}

	a.metrics.Audit(log.Action, "dropped")
	a.logger.Error("audit event dropped",
		"action", log.Action,
		"audit_id", log.ID,
		"user_id", log.UserID,
		"actor_id", log.ActorID,
		"attempts", a.cfg.MaxRetries+1,
		"error", err,
	)
}

// retryPolicy doubles the wait after each failed attempt, starting at cfg.Backoff.
func (a *AsyncAuditSink) retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.cfg.Backoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = a.cfg.Timeout
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(a.cfg.MaxRetries))
}

// Close waits for in-flight writes or until ctx is done.
func (a *AsyncAuditSink) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
