package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"statuspulse/internal/aggregate"
)

// RollupLoop recomputes the open hourly and daily buckets on a fixed
// cadence. Each pass is an idempotent upsert per (target, period, bucket),
// so it is safe to run while probes keep landing in the open bucket.
type RollupLoop struct {
	Logger     *zap.Logger
	Aggregator *aggregate.Aggregator
	Interval   time.Duration
}

func NewRollupLoop(logger *zap.Logger, agg *aggregate.Aggregator, interval time.Duration) *RollupLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RollupLoop{Logger: logger, Aggregator: agg, Interval: interval}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *RollupLoop) Run(ctx context.Context) {
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rollup_loop_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *RollupLoop) runOnce(ctx context.Context) {
	if err := r.Aggregator.RollupAll(ctx, time.Now().UTC()); err != nil {
		r.Logger.Warn("rollup_pass_error", zap.Error(err))
	}
}
