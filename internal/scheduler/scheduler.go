package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketsync/internal/domain"
)

// Runner is one category's sync entry point. Runners are safe to execute
// concurrently because each category owns its own database file.
type Runner interface {
	Category() string
	Run(ctx context.Context) (*domain.Report, error)
}

type Scheduler struct {
	runners  []Runner
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(runners []Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runners:  runners,
		interval: interval,
		logger:   logger,
	}
}

// Start runs every category once immediately, then again on each tick until
// the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "categories", len(s.runners))

	s.runAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Scheduler) runAll(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)

	for _, r := range s.runners {
		g.Go(func() error {
			report, err := r.Run(gctx)
			if err != nil {
				s.logger.Error("category sync failed", "category", r.Category(), "error", err)
				return nil // one category's failure must not cancel the others
			}
			written, skipped, failed := report.Totals()
			s.logger.Info("category sync finished",
				"category", r.Category(),
				"run_id", report.RunID,
				"written", written,
				"skipped", skipped,
				"failed_units", failed,
				"duration", report.Duration,
			)
			return nil
		})
	}

	_ = g.Wait()
}
