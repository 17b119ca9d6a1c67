package repo

import (
	"context"
	"errors"
	"time"

	"statuspulse/internal/domain"
)

// Sentinel errors shared by all adapters.
var (
	// ErrNotFound is returned when an id has no matching row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would violate a uniqueness rule,
	// most importantly the one-ongoing-incident-per-target slot.
	ErrConflict = errors.New("conflict")
)

// Ports (interfaces) — swap in any DB adapter later.

type TargetStore interface {
	CreateTarget(ctx context.Context, t *domain.Target) error
	GetTarget(ctx context.Context, id domain.TargetID) (*domain.Target, error)
	// ListTargets returns active targets only when activeOnly is set;
	// otherwise every target including soft-removed ones.
	ListTargets(ctx context.Context, activeOnly bool) ([]domain.Target, error)
	UpdateTarget(ctx context.Context, t *domain.Target) error
}

// ProbeFilter narrows a probe listing. Zero values mean "unbounded".
type ProbeFilter struct {
	Since time.Time // inclusive
	Until time.Time // exclusive
	Limit int
}

type ProbeStore interface {
	// AppendProbe records a result. The log is append-only; results are
	// never updated or deleted.
	AppendProbe(ctx context.Context, r *domain.ProbeResult) error
	// ListProbes returns matching results ordered by checked_at descending.
	ListProbes(ctx context.Context, id domain.TargetID, f ProbeFilter) ([]domain.ProbeResult, error)
	// LastProbe returns nil, nil when the target has never been probed.
	LastProbe(ctx context.Context, id domain.TargetID) (*domain.ProbeResult, error)
}

type IncidentStore interface {
	// OpenIncident inserts an ongoing incident. It returns ErrConflict if an
	// ongoing incident already exists for the target; the check and insert
	// are a single atomic operation in every adapter.
	OpenIncident(ctx context.Context, in *domain.Incident) error
	GetIncident(ctx context.Context, id int64) (*domain.Incident, error)
	// OngoingIncident returns nil, nil when the target is healthy.
	OngoingIncident(ctx context.Context, id domain.TargetID) (*domain.Incident, error)
	// ResolveIncident sets end time and flips status to resolved.
	ResolveIncident(ctx context.Context, id int64, endTime time.Time) (*domain.Incident, error)
	// ListIncidents returns up to limit incidents, newest start time first.
	ListIncidents(ctx context.Context, id domain.TargetID, limit int) ([]domain.Incident, error)
}

type HistoryStore interface {
	// UpsertBucket replaces the bucket for (target, period, timestamp) if it
	// exists and inserts it otherwise. Safe to call repeatedly.
	UpsertBucket(ctx context.Context, b *domain.UptimeBucket) error
	GetBucket(ctx context.Context, id domain.TargetID, p domain.Period, ts time.Time) (*domain.UptimeBucket, error)
	// ListBuckets returns buckets with timestamp >= since, newest first.
	ListBuckets(ctx context.Context, id domain.TargetID, p domain.Period, since time.Time) ([]domain.UptimeBucket, error)
}

// Store is the full persistence surface the engine needs.
type Store interface {
	TargetStore
	ProbeStore
	IncidentStore
	HistoryStore
}
