// Package scheduler runs the periodic session expiry.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type sessionRepository interface {
	ListIdleSince(ctx context.Context, cutoff time.Time) ([]string, error)
	Delete(ctx context.Context, ids []string) (int64, error)
}

type Janitor struct {
	repo     sessionRepository
	ttl      time.Duration
	interval time.Duration
	onPurged func(ids []string)
	logger   *slog.Logger
	now      func() time.Time
	stopCh   chan struct{}
}

type JanitorConfig struct {
	TTL      time.Duration
	Interval time.Duration
	// OnPurged receives the ids removed by each run.
	OnPurged func(ids []string)
}

func NewJanitor(repo sessionRepository, cfg JanitorConfig, logger *slog.Logger) *Janitor {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Interval <= 0 {
		cfg.Interval = cfg.TTL / 4
	}
	if cfg.OnPurged == nil {
		cfg.OnPurged = func([]string) {}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Janitor{
		repo:     repo,
		ttl:      cfg.TTL,
		interval: cfg.Interval,
		onPurged: cfg.OnPurged,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("session janitor started", "ttl", j.ttl.String(), "interval", j.interval.String())
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Warn("session janitor initial run failed", "error", err)
		}
		for {
			select {
			case <-ctx.Done():
				j.logger.Info("session janitor stopped")
				close(j.stopCh)
				return
			case <-ticker.C:
				if _, err := j.RunOnce(ctx); err != nil {
					j.logger.Warn("session janitor cycle failed", "error", err)
				}
			}
		}
	}()
}

func (j *Janitor) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-j.stopCh:
	case <-time.After(timeout):
	}
}

// RunOnce deletes sessions idle for longer than the TTL and returns how many
// were removed.
func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.ttl)
	ids, err := j.repo.ListIdleSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list idle sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := j.repo.Delete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	j.onPurged(ids)

	j.logger.Info("idle sessions purged", "count", deleted, "cutoff", cutoff.Format(time.RFC3339))
	return deleted, nil
}
