package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MilestoneSweepJobName is the name of the overdue milestone sweep job
const MilestoneSweepJobName = "milestone_sweep"

// DefaultSweepTimeout bounds a single sweep run
const DefaultSweepTimeout = 2 * time.Minute

// MilestoneSweeper defines the interface for sweeping overdue milestones.
// This interface allows the job to call the service without importing the
// service package directly.
type MilestoneSweeper interface {
	// SweepOverdue marks pending and in-progress milestones past their due
	// date as missed. Returns the number of milestones swept.
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
}

// MilestoneSweepJob periodically marks overdue milestones as missed.
type MilestoneSweepJob struct {
	sweeper MilestoneSweeper
	logger  *zap.Logger
	timeout time.Duration
}

// NewMilestoneSweepJob creates a new overdue milestone sweep job.
func NewMilestoneSweepJob(sweeper MilestoneSweeper, logger *zap.Logger, timeout time.Duration) *MilestoneSweepJob {
	return &MilestoneSweepJob{
		sweeper: sweeper,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the sweep. This is called by the scheduler according to the
// configured cron expression.
func (j *MilestoneSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	swept, err := j.sweeper.SweepOverdue(ctx, start)
	if err != nil {
		j.logger.Error("milestone sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if swept > 0 {
		j.logger.Info("milestone sweep completed",
			zap.Int("milestones_missed", swept),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterMilestoneSweepJob registers the sweep with the scheduler.
// The cronExpr should be a valid cron expression with seconds field
// (e.g., "0 0 * * * *" for the top of every hour). If runOnStartup is
// true, a sweep also runs immediately in a background goroutine so
// milestones that went overdue while the API was down are caught up.
func RegisterMilestoneSweepJob(scheduler *Scheduler, sweeper MilestoneSweeper, logger *zap.Logger, cronExpr string, runOnStartup bool) error {
	job := NewMilestoneSweepJob(sweeper, logger, DefaultSweepTimeout)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(MilestoneSweepJobName, cronExpr, job.Run)
}
