package probe

import (
	"context"
	"time"

	"statuspulse/internal/domain"
)

// RetryProber re-checks a failing target before the failure is recorded,
// smoothing over one-off network blips. The final attempt's outcome is what
// gets reported.
type RetryProber struct {
	Inner    Prober
	Attempts int
	Backoff  time.Duration
}

func (r *RetryProber) Check(ctx context.Context, t domain.Target) domain.ProbeResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last domain.ProbeResult
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, t)
		if last.Success {
			return last
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(r.Backoff):
			}
		}
	}
	return last
}
