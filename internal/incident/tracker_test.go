package incident

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo/memory"
)

func failProbe(id domain.TargetID, at time.Time) *domain.ProbeResult {
	msg := "connection refused"
	return &domain.ProbeResult{TargetID: id, Success: false, ErrorMessage: &msg, CheckedAt: at}
}

func okProbe(id domain.TargetID, at time.Time) *domain.ProbeResult {
	code := 200
	lat := int64(40)
	return &domain.ProbeResult{TargetID: id, Success: true, StatusCode: &code, ResponseTimeMS: &lat, CheckedAt: at}
}

func countOngoing(t *testing.T, store *memory.Store, id domain.TargetID) int {
	t.Helper()
	ins, err := store.ListIncidents(context.Background(), id, 100)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, in := range ins {
		if in.Ongoing() {
			n++
		}
	}
	return n
}

func TestTracker_FailThenRecover(t *testing.T) {
	store := memory.New()
	tr := NewTracker(store, store, nil)
	ctx := context.Background()
	t0 := time.Now().UTC().Add(-2 * time.Minute)
	t1 := t0.Add(time.Minute)

	opened, err := tr.Record(ctx, failProbe(1, t0))
	if err != nil {
		t.Fatal(err)
	}
	if opened == nil || !opened.Ongoing() {
		t.Fatalf("want ongoing incident, got %+v", opened)
	}
	if !opened.StartTime.Equal(t0) {
		t.Fatalf("start time = %v, want failing probe time %v", opened.StartTime, t0)
	}
	if opened.Reason == nil || *opened.Reason != "connection refused" {
		t.Fatalf("reason = %v", opened.Reason)
	}

	resolved, err := tr.Record(ctx, okProbe(1, t1))
	if err != nil {
		t.Fatal(err)
	}
	if resolved == nil || resolved.Status != domain.IncidentResolved {
		t.Fatalf("want resolved incident, got %+v", resolved)
	}
	if resolved.EndTime == nil || !resolved.EndTime.Equal(t1) {
		t.Fatalf("end time = %v, want succeeding probe time %v", resolved.EndTime, t1)
	}

	// Exactly one incident total, none ongoing.
	ins, _ := store.ListIncidents(ctx, 1, 10)
	if len(ins) != 1 {
		t.Fatalf("want exactly one incident, got %d", len(ins))
	}
	if countOngoing(t, store, 1) != 0 {
		t.Fatal("ongoing incident left behind")
	}
}

func TestTracker_ConsecutiveFailuresOpenOneIncident(t *testing.T) {
	store := memory.New()
	tr := NewTracker(store, store, nil)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		if _, err := tr.Record(ctx, failProbe(1, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	if got := countOngoing(t, store, 1); got != 1 {
		t.Fatalf("ongoing incidents = %d, want 1", got)
	}
	ins, _ := store.ListIncidents(ctx, 1, 10)
	if len(ins) != 1 {
		t.Fatalf("total incidents = %d, want 1", len(ins))
	}
	if !ins[0].StartTime.Equal(base) {
		t.Fatalf("start time moved: %v, want %v", ins[0].StartTime, base)
	}
}

func TestTracker_SuccessWhileHealthyIsNoop(t *testing.T) {
	store := memory.New()
	tr := NewTracker(store, store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		changed, err := tr.Record(ctx, okProbe(1, time.Now().UTC()))
		if err != nil {
			t.Fatal(err)
		}
		if changed != nil {
			t.Fatalf("healthy target produced incident change: %+v", changed)
		}
	}
	ins, _ := store.ListIncidents(ctx, 1, 10)
	if len(ins) != 0 {
		t.Fatalf("want no incidents, got %d", len(ins))
	}
}

func TestTracker_ManualOpenRejectedWhileOngoing(t *testing.T) {
	store := memory.New()
	tr := NewTracker(store, store, nil)
	ctx := context.Background()

	if _, err := tr.Open(ctx, 1, time.Now().UTC(), "maintenance gone wrong"); err != nil {
		t.Fatal(err)
	}
	_, err := tr.Open(ctx, 1, time.Now().UTC(), "second attempt")
	if !errors.Is(err, ErrOngoingExists) {
		t.Fatalf("want ErrOngoingExists, got %v", err)
	}
	// A different target is unaffected.
	if _, err := tr.Open(ctx, 2, time.Now().UTC(), ""); err != nil {
		t.Fatal(err)
	}
}

func TestTracker_ManualResolveClearsSlot(t *testing.T) {
	store := memory.New()
	tr := NewTracker(store, store, nil)
	ctx := context.Background()

	opened, err := tr.Record(ctx, failProbe(1, time.Now().UTC().Add(-time.Minute)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Resolve(ctx, opened.ID); err != nil {
		t.Fatal(err)
	}
	if countOngoing(t, store, 1) != 0 {
		t.Fatal("resolve did not clear the ongoing slot")
	}

	// Next failing probe opens a fresh incident.
	second, err := tr.Record(ctx, failProbe(1, time.Now().UTC()))
	if err != nil {
		t.Fatal(err)
	}
	if second == nil || second.ID == opened.ID {
		t.Fatalf("expected a new incident, got %+v", second)
	}
}

func TestTracker_ResolveUnknownIncident(t *testing.T) {
	store := memory.New()
	tr := NewTracker(store, store, nil)
	if _, err := tr.Resolve(context.Background(), 999); err == nil {
		t.Fatal("expected error for unknown incident id")
	}
}

func TestTracker_ConcurrentFailuresNeverDuplicate(t *testing.T) {
	store := memory.New()
	tr := NewTracker(store, store, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = tr.Record(ctx, failProbe(1, time.Now().UTC().Add(time.Duration(i)*time.Millisecond)))
		}(i)
	}
	wg.Wait()

	if got := countOngoing(t, store, 1); got != 1 {
		t.Fatalf("ongoing incidents after concurrent failures = %d, want 1", got)
	}
}

func TestFailureReason(t *testing.T) {
	msg := "dns lookup failed"
	code := 503
	cases := []struct {
		name  string
		probe domain.ProbeResult
		want  string
	}{
		{"error message wins", domain.ProbeResult{ErrorMessage: &msg, StatusCode: &code}, "dns lookup failed"},
		{"status mismatch", domain.ProbeResult{StatusCode: &code}, "unexpected status 503 Service Unavailable"},
		{"nothing known", domain.ProbeResult{}, "check failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := failureReason(&tc.probe); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
