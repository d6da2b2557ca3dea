package scheduler

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketsync/internal/domain"
)

type countingRunner struct {
	name string
	runs atomic.Int64
}

func (r *countingRunner) Category() string { return r.name }

func (r *countingRunner) Run(context.Context) (*domain.Report, error) {
	r.runs.Add(1)
	return &domain.Report{RunID: "test", Category: r.name}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRunsOnceImmediatelyThenOnTicks(t *testing.T) {
	runner := &countingRunner{name: "stock"}
	s := NewScheduler([]Runner{runner}, 30*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	runs := runner.runs.Load()
	assert.GreaterOrEqual(t, runs, int64(2), "expected the immediate run plus at least one tick")
}

func TestAllCategoriesRunEachCycle(t *testing.T) {
	stock := &countingRunner{name: "stock"}
	fund := &countingRunner{name: "fund"}
	s := NewScheduler([]Runner{stock, fund}, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool {
		return stock.runs.Load() == 1 && fund.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStopsOnCancelWithoutExtraRuns(t *testing.T) {
	runner := &countingRunner{name: "stock"}
	s := NewScheduler([]Runner{runner}, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool { return runner.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, int64(1), runner.runs.Load())
}
