// Package aggregate rolls raw probe results up into calendar-aligned hourly
// and daily uptime buckets so history queries never scan the probe log.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
	"statuspulse/internal/status"
)

type Aggregator struct {
	targets repo.TargetStore
	probes  repo.ProbeStore
	history repo.HistoryStore
	log     *zap.Logger
}

func New(targets repo.TargetStore, probes repo.ProbeStore, history repo.HistoryStore, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{targets: targets, probes: probes, history: history, log: log}
}

// Rollup recomputes the bucket starting at bucketStart from the probe rows
// inside [bucketStart, bucketEnd) and upserts it. Calling it again with the
// same inputs replaces the row with identical totals; a bucket holding zero
// probes writes nothing at all (no row until the first check).
func (a *Aggregator) Rollup(ctx context.Context, id domain.TargetID, p domain.Period, bucketStart time.Time) (*domain.UptimeBucket, error) {
	start := p.BucketStart(bucketStart)
	probes, err := a.probes.ListProbes(ctx, id, repo.ProbeFilter{
		Since: start,
		Until: p.BucketEnd(start),
	})
	if err != nil {
		return nil, fmt.Errorf("list probes for rollup: %w", err)
	}
	if len(probes) == 0 {
		return nil, nil
	}

	sum := status.Summarize(probes)
	b := &domain.UptimeBucket{
		TargetID:          id,
		Period:            p,
		Timestamp:         start,
		TotalChecks:       sum.TotalChecks,
		SuccessfulChecks:  sum.SuccessfulChecks,
		UptimePercentage:  sum.UptimePercentage,
		AvgResponseTimeMS: sum.AvgResponseTimeMS,
	}
	if err := a.history.UpsertBucket(ctx, b); err != nil {
		return nil, fmt.Errorf("upsert %s bucket at %s: %w", p, start.Format(time.RFC3339), err)
	}
	return b, nil
}

// RollupAll recomputes the currently-open hourly and daily bucket for every
// active target. The open bucket keeps changing until it closes, so each
// pass simply replaces it.
func (a *Aggregator) RollupAll(ctx context.Context, now time.Time) error {
	targets, err := a.targets.ListTargets(ctx, true)
	if err != nil {
		return fmt.Errorf("list targets: %w", err)
	}
	for _, t := range targets {
		for _, p := range []domain.Period{domain.PeriodHourly, domain.PeriodDaily} {
			if _, err := a.Rollup(ctx, t.ID, p, now); err != nil {
				a.log.Warn("rollup_error",
					zap.Int64("target_id", int64(t.ID)),
					zap.String("period", string(p)),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}
