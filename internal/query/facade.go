// Package query is the read side: it composes the deriver and the persisted
// incident/history rows into the views the API serves. It never writes.
package query

import (
	"context"
	"fmt"
	"time"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
	"statuspulse/internal/status"
)

type Facade struct {
	targets   repo.TargetStore
	incidents repo.IncidentStore
	history   repo.HistoryStore
	deriver   *status.Deriver
}

func NewFacade(targets repo.TargetStore, incidents repo.IncidentStore, history repo.HistoryStore, deriver *status.Deriver) *Facade {
	return &Facade{targets: targets, incidents: incidents, history: history, deriver: deriver}
}

// TargetWithStatus pairs a target with its derived status. Status is null in
// the JSON when the target has never been probed.
type TargetWithStatus struct {
	Target domain.Target        `json:"target"`
	Status *domain.TargetStatus `json:"status"`
}

func (f *Facade) Status(ctx context.Context, id domain.TargetID) (*domain.TargetStatus, error) {
	if _, err := f.targets.GetTarget(ctx, id); err != nil {
		return nil, err
	}
	return f.deriver.CurrentStatus(ctx, id)
}

// AllStatus reports every active target, one derived status each. Targets
// with no probe history are included with a nil status, not skipped; the
// caller decides how to render "unknown".
func (f *Facade) AllStatus(ctx context.Context) ([]TargetWithStatus, error) {
	targets, err := f.targets.ListTargets(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	out := make([]TargetWithStatus, 0, len(targets))
	for _, t := range targets {
		st, err := f.deriver.CurrentStatus(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, TargetWithStatus{Target: t, Status: st})
	}
	return out, nil
}

// Uptime computes live windowed stats over the last windowHours hours.
// Nil when the window holds no probes.
func (f *Facade) Uptime(ctx context.Context, id domain.TargetID, windowHours int) (*domain.WindowStats, error) {
	if _, err := f.targets.GetTarget(ctx, id); err != nil {
		return nil, err
	}
	return f.deriver.WindowedStats(ctx, id, time.Duration(windowHours)*time.Hour)
}

// Incidents lists up to limit incidents newest-first. Incidents survive
// target deactivation; only the id has to resolve.
func (f *Facade) Incidents(ctx context.Context, id domain.TargetID, limit int) ([]domain.Incident, error) {
	if limit <= 0 {
		limit = 50
	}
	return f.incidents.ListIncidents(ctx, id, limit)
}

// History returns materialized buckets for the period going back daysBack
// days, newest first.
func (f *Facade) History(ctx context.Context, id domain.TargetID, p domain.Period, daysBack int) ([]domain.UptimeBucket, error) {
	if daysBack <= 0 {
		daysBack = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -daysBack)
	return f.history.ListBuckets(ctx, id, p, since)
}
