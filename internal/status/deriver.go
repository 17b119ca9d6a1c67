// Package status derives point-in-time and windowed health views from the
// probe log. All operations are pure reads.
package status

import (
	"context"
	"fmt"
	"math"
	"time"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
)

type Deriver struct {
	probes repo.ProbeStore
}

func NewDeriver(probes repo.ProbeStore) *Deriver {
	return &Deriver{probes: probes}
}

// CurrentStatus is the outcome of the single most recent probe for the
// target. It returns nil, nil when the target has never been probed —
// "unknown", which callers must not render as online or offline.
func (d *Deriver) CurrentStatus(ctx context.Context, id domain.TargetID) (*domain.TargetStatus, error) {
	last, err := d.probes.LastProbe(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("last probe for target %d: %w", id, err)
	}
	if last == nil {
		return nil, nil
	}
	return &domain.TargetStatus{
		TargetID:       id,
		IsOnline:       last.Success,
		LastCheckTime:  last.CheckedAt,
		StatusCode:     last.StatusCode,
		ResponseTimeMS: last.ResponseTimeMS,
		ErrorMessage:   last.ErrorMessage,
	}, nil
}

// WindowedStats summarises probes with checked_at >= now-window. It returns
// nil, nil when the window is empty, so "no data" never reads as 0% uptime.
func (d *Deriver) WindowedStats(ctx context.Context, id domain.TargetID, window time.Duration) (*domain.WindowStats, error) {
	since := time.Now().UTC().Add(-window)
	probes, err := d.probes.ListProbes(ctx, id, repo.ProbeFilter{Since: since})
	if err != nil {
		return nil, fmt.Errorf("list probes for target %d: %w", id, err)
	}
	if len(probes) == 0 {
		return nil, nil
	}
	stats := Summarize(probes)
	stats.TargetID = id
	return stats, nil
}

// Summarize computes the shared uptime math over a probe set. The response
// time average only counts probes that carried a value; a connection failure
// with no latency is excluded from the denominator, not treated as zero.
func Summarize(probes []domain.ProbeResult) *domain.WindowStats {
	var (
		successes int
		latSum    int64
		latCount  int64
	)
	for _, p := range probes {
		if p.Success {
			successes++
		}
		if p.ResponseTimeMS != nil {
			latSum += *p.ResponseTimeMS
			latCount++
		}
	}
	stats := &domain.WindowStats{
		TotalChecks:      len(probes),
		SuccessfulChecks: successes,
		UptimePercentage: Percent(successes, len(probes)),
	}
	if latCount > 0 {
		avg := latSum / latCount
		stats.AvgResponseTimeMS = &avg
	}
	return stats
}

// Percent is successes over total as a percentage rounded to two decimals.
func Percent(successes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(successes)/float64(total)*10000) / 100
}
