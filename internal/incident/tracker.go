// Package incident maintains the downtime-incident lifecycle. Each target is
// either healthy (no ongoing incident) or unhealthy (exactly one), and every
// transition is evaluated against the persisted ongoing slot rather than any
// cached health flag, so restarts and concurrent writers cannot fork state.
package incident

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
)

// ErrOngoingExists rejects a manual open while an ongoing incident is
// already tracked for the target. The same rule the automatic path enforces.
var ErrOngoingExists = errors.New("target already has an ongoing incident")

type Tracker struct {
	probes    repo.ProbeStore
	incidents repo.IncidentStore
	log       *zap.Logger

	mu    sync.Mutex
	locks map[domain.TargetID]*sync.Mutex
}

func NewTracker(probes repo.ProbeStore, incidents repo.IncidentStore, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		probes:    probes,
		incidents: incidents,
		log:       log,
		locks:     make(map[domain.TargetID]*sync.Mutex),
	}
}

// targetLock serializes transitions per target. Different targets proceed in
// parallel; two probes for the same target never race the ongoing slot.
func (t *Tracker) targetLock(id domain.TargetID) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l := t.locks[id]
	if l == nil {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	return l
}

// Record is the single ingest point for probe results: it appends the probe
// row and then applies the health transition. The returned incident is the
// one opened or resolved by this probe, nil when nothing changed.
func (t *Tracker) Record(ctx context.Context, pr *domain.ProbeResult) (*domain.Incident, error) {
	if pr.CheckedAt.IsZero() {
		pr.CheckedAt = time.Now().UTC()
	}

	l := t.targetLock(pr.TargetID)
	l.Lock()
	defer l.Unlock()

	if err := t.probes.AppendProbe(ctx, pr); err != nil {
		return nil, fmt.Errorf("append probe: %w", err)
	}
	return t.transition(ctx, pr)
}

func (t *Tracker) transition(ctx context.Context, pr *domain.ProbeResult) (*domain.Incident, error) {
	ongoing, err := t.incidents.OngoingIncident(ctx, pr.TargetID)
	if err != nil {
		return nil, fmt.Errorf("ongoing incident lookup: %w", err)
	}

	switch {
	case !pr.Success && ongoing == nil:
		// healthy -> unhealthy
		reason := failureReason(pr)
		in := &domain.Incident{
			TargetID:  pr.TargetID,
			StartTime: pr.CheckedAt,
			Status:    domain.IncidentOngoing,
			Reason:    &reason,
		}
		if err := t.incidents.OpenIncident(ctx, in); err != nil {
			// Lost a cross-process race for the slot: the incident exists,
			// the invariant held. Anything else is a real failure.
			if errors.Is(err, repo.ErrConflict) {
				t.log.Warn("incident_open_race", zap.Int64("target_id", int64(pr.TargetID)))
				return nil, nil
			}
			return nil, fmt.Errorf("open incident: %w", err)
		}
		t.log.Info("incident_opened",
			zap.Int64("incident_id", in.ID),
			zap.Int64("target_id", int64(pr.TargetID)),
			zap.String("reason", reason),
		)
		return in, nil

	case pr.Success && ongoing != nil:
		// unhealthy -> healthy
		resolved, err := t.incidents.ResolveIncident(ctx, ongoing.ID, pr.CheckedAt)
		if err != nil {
			return nil, fmt.Errorf("resolve incident %d: %w", ongoing.ID, err)
		}
		t.log.Info("incident_resolved",
			zap.Int64("incident_id", resolved.ID),
			zap.Int64("target_id", int64(pr.TargetID)),
			zap.Duration("duration", pr.CheckedAt.Sub(resolved.StartTime)),
		)
		return resolved, nil
	}

	// healthy -> healthy or unhealthy -> unhealthy: no incident change.
	return nil, nil
}

// Open creates an incident by operator action. The at-most-one-ongoing rule
// applies exactly as it does for the automatic path.
func (t *Tracker) Open(ctx context.Context, id domain.TargetID, start time.Time, reason string) (*domain.Incident, error) {
	l := t.targetLock(id)
	l.Lock()
	defer l.Unlock()

	in := &domain.Incident{
		TargetID:  id,
		StartTime: start.UTC(),
		Status:    domain.IncidentOngoing,
	}
	if reason != "" {
		in.Reason = &reason
	}
	if err := t.incidents.OpenIncident(ctx, in); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrOngoingExists
		}
		return nil, fmt.Errorf("open incident: %w", err)
	}
	t.log.Info("incident_opened_manual",
		zap.Int64("incident_id", in.ID),
		zap.Int64("target_id", int64(id)),
	)
	return in, nil
}

// Resolve force-closes an incident by id. Closing clears the ongoing slot,
// so the target's next failing probe opens a fresh incident.
func (t *Tracker) Resolve(ctx context.Context, id int64) (*domain.Incident, error) {
	in, err := t.incidents.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	l := t.targetLock(in.TargetID)
	l.Lock()
	defer l.Unlock()

	resolved, err := t.incidents.ResolveIncident(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve incident %d: %w", id, err)
	}
	t.log.Info("incident_resolved_manual", zap.Int64("incident_id", id))
	return resolved, nil
}

// failureReason builds the human-readable cause stored on the incident:
// the probe's error message when there is one, otherwise the unexpected
// status line.
func failureReason(pr *domain.ProbeResult) string {
	if pr.ErrorMessage != nil && *pr.ErrorMessage != "" {
		return *pr.ErrorMessage
	}
	if pr.StatusCode != nil {
		return fmt.Sprintf("unexpected status %d %s", *pr.StatusCode, http.StatusText(*pr.StatusCode))
	}
	return "check failed"
}
