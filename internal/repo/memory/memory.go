package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
)

var _ repo.Store = (*Store)(nil)

// Store keeps everything in process memory. Used by tests and as the
// fallback when no database is configured.
type Store struct {
	mu        sync.RWMutex
	nextID    int64
	targets   map[domain.TargetID]*domain.Target
	probes    []*domain.ProbeResult
	incidents map[int64]*domain.Incident
	buckets   map[string]*domain.UptimeBucket
}

func New() *Store {
	return &Store{
		targets:   make(map[domain.TargetID]*domain.Target),
		probes:    make([]*domain.ProbeResult, 0, 128),
		incidents: make(map[int64]*domain.Incident),
		buckets:   make(map[string]*domain.UptimeBucket),
	}
}

func (m *Store) nextIDLocked() int64 {
	m.nextID++
	return m.nextID
}

// ---- TargetStore ----

func (m *Store) CreateTarget(ctx context.Context, t *domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = domain.TargetID(m.nextIDLocked())
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	cp := *t
	m.targets[t.ID] = &cp
	return nil
}

func (m *Store) GetTarget(ctx context.Context, id domain.TargetID) (*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.targets[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Store) ListTargets(ctx context.Context, activeOnly bool) ([]domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Target, 0, len(m.targets))
	for _, t := range m.targets {
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) UpdateTarget(ctx context.Context, t *domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.targets[t.ID]; !ok {
		return repo.ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	m.targets[t.ID] = &cp
	return nil
}

// ---- ProbeStore ----

func (m *Store) AppendProbe(ctx context.Context, r *domain.ProbeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextIDLocked()
	cp := *r
	m.probes = append(m.probes, &cp)
	return nil
}

func (m *Store) ListProbes(ctx context.Context, id domain.TargetID, f repo.ProbeFilter) ([]domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ProbeResult, 0)
	for _, r := range m.probes {
		if r.TargetID != id {
			continue
		}
		if !f.Since.IsZero() && r.CheckedAt.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && !r.CheckedAt.Before(f.Until) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckedAt.After(out[j].CheckedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Store) LastProbe(ctx context.Context, id domain.TargetID) (*domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *domain.ProbeResult
	for _, r := range m.probes {
		if r.TargetID != id {
			continue
		}
		if last == nil || r.CheckedAt.After(last.CheckedAt) {
			last = r
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

// ---- IncidentStore ----

func (m *Store) OpenIncident(ctx context.Context, in *domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.incidents {
		if ex.TargetID == in.TargetID && ex.Status == domain.IncidentOngoing {
			return fmt.Errorf("ongoing incident %d exists for target %d: %w", ex.ID, in.TargetID, repo.ErrConflict)
		}
	}
	in.ID = m.nextIDLocked()
	in.Status = domain.IncidentOngoing
	now := time.Now().UTC()
	in.CreatedAt = now
	in.UpdatedAt = now
	cp := *in
	m.incidents[in.ID] = &cp
	return nil
}

func (m *Store) GetIncident(ctx context.Context, id int64) (*domain.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.incidents[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *in
	return &cp, nil
}

func (m *Store) OngoingIncident(ctx context.Context, id domain.TargetID) (*domain.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, in := range m.incidents {
		if in.TargetID == id && in.Status == domain.IncidentOngoing {
			cp := *in
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Store) ResolveIncident(ctx context.Context, id int64, endTime time.Time) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.incidents[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	end := endTime.UTC()
	in.EndTime = &end
	in.Status = domain.IncidentResolved
	in.UpdatedAt = time.Now().UTC()
	cp := *in
	return &cp, nil
}

func (m *Store) ListIncidents(ctx context.Context, id domain.TargetID, limit int) ([]domain.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Incident, 0)
	for _, in := range m.incidents {
		if in.TargetID == id {
			out = append(out, *in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- HistoryStore ----

func bucketKey(id domain.TargetID, p domain.Period, ts time.Time) string {
	return fmt.Sprintf("%d|%s|%d", id, p, ts.UTC().Unix())
}

func (m *Store) UpsertBucket(ctx context.Context, b *domain.UptimeBucket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucketKey(b.TargetID, b.Period, b.Timestamp)
	if ex, ok := m.buckets[key]; ok {
		b.ID = ex.ID
		b.CreatedAt = ex.CreatedAt
	} else {
		b.ID = m.nextIDLocked()
		b.CreatedAt = time.Now().UTC()
	}
	cp := *b
	m.buckets[key] = &cp
	return nil
}

func (m *Store) GetBucket(ctx context.Context, id domain.TargetID, p domain.Period, ts time.Time) (*domain.UptimeBucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[bucketKey(id, p, ts)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Store) ListBuckets(ctx context.Context, id domain.TargetID, p domain.Period, since time.Time) ([]domain.UptimeBucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.UptimeBucket, 0)
	for _, b := range m.buckets {
		if b.TargetID != id || b.Period != p {
			continue
		}
		if !since.IsZero() && b.Timestamp.Before(since) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
