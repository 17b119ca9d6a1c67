package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"statuspulse/internal/domain"
	"statuspulse/internal/incident"
	"statuspulse/internal/probe"
	"statuspulse/internal/repo"
)

// ProbeLoop drives the built-in prober: every tick it picks the active
// targets whose check interval has elapsed and checks them concurrently,
// feeding each result through the incident tracker — the same ingest path
// the API uses for externally recorded results.
type ProbeLoop struct {
	Logger      *zap.Logger
	Targets     repo.TargetStore
	Tracker     *incident.Tracker
	Prober      probe.Prober
	Tick        time.Duration
	Concurrency int

	mu      sync.Mutex
	lastRun map[domain.TargetID]time.Time
}

func NewProbeLoop(
	logger *zap.Logger,
	targets repo.TargetStore,
	tracker *incident.Tracker,
	prober probe.Prober,
	tick time.Duration,
	concurrency int,
) *ProbeLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if tick <= 0 {
		tick = time.Second
	}
	return &ProbeLoop{
		Logger:      logger,
		Targets:     targets,
		Tracker:     tracker,
		Prober:      prober,
		Tick:        tick,
		Concurrency: concurrency,
		lastRun:     make(map[domain.TargetID]time.Time),
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (p *ProbeLoop) Run(ctx context.Context) {
	t := time.NewTicker(p.Tick)
	defer t.Stop()

	p.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("probe_loop_stopped")
			return
		case <-t.C:
			p.runOnce(ctx)
		}
	}
}

func (p *ProbeLoop) runOnce(ctx context.Context) {
	targets, err := p.Targets.ListTargets(ctx, true)
	if err != nil {
		p.Logger.Warn("probe_loop_list_error", zap.Error(err))
		return
	}

	due := p.dueTargets(targets, time.Now().UTC())
	if len(due) == 0 {
		return
	}

	sem := make(chan struct{}, p.Concurrency)
	var wg sync.WaitGroup
	for _, t := range due {
		t := t
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			p.checkOne(ctx, t)
		}()
	}
	wg.Wait()
}

// dueTargets filters for targets whose interval has elapsed since their
// last run and marks them as started.
func (p *ProbeLoop) dueTargets(targets []domain.Target, now time.Time) []domain.Target {
	p.mu.Lock()
	defer p.mu.Unlock()
	due := make([]domain.Target, 0, len(targets))
	for _, t := range targets {
		last, ok := p.lastRun[t.ID]
		if ok && now.Sub(last) < t.CheckInterval() {
			continue
		}
		p.lastRun[t.ID] = now
		due = append(due, t)
	}
	return due
}

func (p *ProbeLoop) checkOne(ctx context.Context, t domain.Target) {
	result := p.Prober.Check(ctx, t)
	if _, err := p.Tracker.Record(ctx, &result); err != nil {
		p.Logger.Warn("probe_record_error",
			zap.Int64("target_id", int64(t.ID)),
			zap.String("url", t.URL),
			zap.Error(err),
		)
		return
	}
	p.Logger.Debug("probe_checked",
		zap.Int64("target_id", int64(t.ID)),
		zap.String("url", t.URL),
		zap.Bool("success", result.Success),
	)
}
