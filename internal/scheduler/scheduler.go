package scheduler

import (
	"context"
	"log/slog"
	"time"

	"bevents/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Sync(ctx context.Context) (*domain.SyncStats, error)
}

// Scheduler runs every syncer once at start and then on each tick. Syncers
// run one after another; a failing syncer does not stop the others.
type Scheduler struct {
	syncers    []Syncer
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(syncers []Syncer, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncers:    syncers,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "syncers", len(s.syncers))

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs each syncer under its own timeout.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, syncer := range s.syncers {
		if ctx.Err() != nil {
			return
		}
		s.runSync(ctx, syncer)
	}
}

func (s *Scheduler) runSync(ctx context.Context, syncer Syncer) {
	syncCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	if _, err := syncer.Sync(syncCtx); err != nil {
		s.logger.Error("sync failed", "error", err)
	}
}
