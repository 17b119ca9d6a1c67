package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTarget(t *testing.T, s *Store) *domain.Target {
	t.Helper()
	tg := &domain.Target{Name: "t", URL: "https://t.dev", Active: true}
	tg.Normalize()
	if err := s.CreateTarget(context.Background(), tg); err != nil {
		t.Fatal(err)
	}
	return tg
}

func TestSQLite_TargetRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tg := newTarget(t, s)
	if tg.ID == 0 {
		t.Fatal("no id assigned")
	}

	got, err := s.GetTarget(ctx, tg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != tg.Name || got.URL != tg.URL || !got.Active {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Method != "GET" || got.CheckIntervalSecs != 300 {
		t.Fatalf("defaults lost: %+v", got)
	}

	got.Active = false
	got.Description = "paused"
	if err := s.UpdateTarget(ctx, got); err != nil {
		t.Fatal(err)
	}
	active, _ := s.ListTargets(ctx, true)
	if len(active) != 0 {
		t.Fatalf("soft-removed target still active: %+v", active)
	}
	all, _ := s.ListTargets(ctx, false)
	if len(all) != 1 || all[0].Description != "paused" {
		t.Fatalf("update lost: %+v", all)
	}

	if _, err := s.GetTarget(ctx, 999); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSQLite_ProbeFilterAndNulls(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	tg := newTarget(t, s)
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	code := 200
	lat := int64(120)
	msg := "timeout"
	probes := []*domain.ProbeResult{
		{TargetID: tg.ID, Success: true, StatusCode: &code, ResponseTimeMS: &lat, CheckedAt: base},
		{TargetID: tg.ID, Success: false, ErrorMessage: &msg, CheckedAt: base.Add(time.Minute)},
	}
	for _, p := range probes {
		if err := s.AppendProbe(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	last, err := s.LastProbe(ctx, tg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if last.Success || last.StatusCode != nil || last.ResponseTimeMS != nil {
		t.Fatalf("null columns not round-tripped: %+v", last)
	}
	if last.ErrorMessage == nil || *last.ErrorMessage != "timeout" {
		t.Fatalf("error message lost: %+v", last)
	}

	inWindow, err := s.ListProbes(ctx, tg.ID, repo.ProbeFilter{
		Since: base,
		Until: base.Add(time.Minute), // exclusive
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(inWindow) != 1 || !inWindow[0].Success {
		t.Fatalf("half-open filter wrong: %+v", inWindow)
	}

	if none, err := s.LastProbe(ctx, 999); err != nil || none != nil {
		t.Fatalf("want nil, nil, got %v %v", none, err)
	}
}

func TestSQLite_OngoingIncidentUniqueIndex(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	tg := newTarget(t, s)

	first := &domain.Incident{TargetID: tg.ID, StartTime: time.Now().UTC()}
	if err := s.OpenIncident(ctx, first); err != nil {
		t.Fatal(err)
	}

	dup := &domain.Incident{TargetID: tg.ID, StartTime: time.Now().UTC()}
	if err := s.OpenIncident(ctx, dup); !errors.Is(err, repo.ErrConflict) {
		t.Fatalf("partial unique index did not fire: %v", err)
	}

	ongoing, err := s.OngoingIncident(ctx, tg.ID)
	if err != nil || ongoing == nil || ongoing.ID != first.ID {
		t.Fatalf("ongoing lookup: %v %+v", err, ongoing)
	}

	end := time.Now().UTC()
	resolved, err := s.ResolveIncident(ctx, first.ID, end)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Status != domain.IncidentResolved || resolved.EndTime == nil {
		t.Fatalf("resolve incomplete: %+v", resolved)
	}

	// Index only covers ongoing rows, so a fresh incident can open now.
	if err := s.OpenIncident(ctx, &domain.Incident{TargetID: tg.ID, StartTime: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListIncidents(ctx, tg.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("incident count = %d, want 2", len(list))
	}
	if !list[0].StartTime.After(list[1].StartTime) && !list[0].StartTime.Equal(list[1].StartTime) {
		t.Fatal("not newest first")
	}
}

func TestSQLite_BucketUpsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	tg := newTarget(t, s)
	ts := domain.PeriodDaily.BucketStart(time.Now().UTC())

	avg := int64(80)
	b := &domain.UptimeBucket{
		TargetID: tg.ID, Period: domain.PeriodDaily, Timestamp: ts,
		TotalChecks: 4, SuccessfulChecks: 3, UptimePercentage: 75, AvgResponseTimeMS: &avg,
	}
	if err := s.UpsertBucket(ctx, b); err != nil {
		t.Fatal(err)
	}

	b.TotalChecks = 5
	b.SuccessfulChecks = 4
	b.UptimePercentage = 80
	if err := s.UpsertBucket(ctx, b); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetBucket(ctx, tg.ID, domain.PeriodDaily, ts)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalChecks != 5 || got.UptimePercentage != 80 {
		t.Fatalf("upsert did not replace: %+v", got)
	}
	if got.AvgResponseTimeMS == nil || *got.AvgResponseTimeMS != 80 {
		t.Fatalf("avg lost: %+v", got)
	}

	list, err := s.ListBuckets(ctx, tg.ID, domain.PeriodDaily, ts.AddDate(0, 0, -1))
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("duplicate rows after upsert: %d", len(list))
	}
}
