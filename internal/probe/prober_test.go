package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"statuspulse/internal/domain"
)

func testTarget(url string, expected int) domain.Target {
	t := domain.Target{Name: "t", URL: url, ExpectedStatusCode: expected}
	t.Normalize()
	t.ExpectedStatusCode = expected
	return t
}

func TestHTTPProber_ExpectedStatusMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewHTTPProber()
	out := p.Check(context.Background(), testTarget(srv.URL, http.StatusNoContent))
	if !out.Success {
		t.Fatalf("want success, got %+v", out)
	}
	if out.StatusCode == nil || *out.StatusCode != http.StatusNoContent {
		t.Fatalf("status code = %v", out.StatusCode)
	}
	if out.ResponseTimeMS == nil {
		t.Fatal("latency missing on completed request")
	}
	if out.ErrorMessage != nil {
		t.Fatalf("unexpected error message: %v", *out.ErrorMessage)
	}
}

func TestHTTPProber_StatusMismatchIsFailureWithCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	out := NewHTTPProber().Check(context.Background(), testTarget(srv.URL, http.StatusOK))
	if out.Success {
		t.Fatal("mismatch must not be a success")
	}
	if out.StatusCode == nil || *out.StatusCode != http.StatusBadGateway {
		t.Fatalf("observed code must be recorded, got %v", out.StatusCode)
	}
}

func TestHTTPProber_TransportFailureHasNoCode(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	out := NewHTTPProber().Check(context.Background(), testTarget(url, http.StatusOK))
	if out.Success {
		t.Fatal("transport failure must not be a success")
	}
	if out.StatusCode != nil || out.ResponseTimeMS != nil {
		t.Fatalf("transport failure carries neither code nor latency: %+v", out)
	}
	if out.ErrorMessage == nil {
		t.Fatal("error message missing")
	}
}

func TestHTTPProber_UsesConfiguredMethod(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	defer srv.Close()

	tg := testTarget(srv.URL, http.StatusOK)
	tg.Method = http.MethodHead
	NewHTTPProber().Check(context.Background(), tg)
	if gotMethod != http.MethodHead {
		t.Fatalf("method = %q, want HEAD", gotMethod)
	}
}

type scriptedProber struct {
	calls   int
	results []domain.ProbeResult
}

func (s *scriptedProber) Check(_ context.Context, _ domain.Target) domain.ProbeResult {
	r := s.results[s.calls%len(s.results)]
	s.calls++
	return r
}

func TestRetryProber_StopsOnFirstSuccess(t *testing.T) {
	inner := &scriptedProber{results: []domain.ProbeResult{
		{Success: false},
		{Success: true},
		{Success: false},
	}}
	r := &RetryProber{Inner: inner, Attempts: 3, Backoff: time.Millisecond}
	out := r.Check(context.Background(), domain.Target{})
	if !out.Success {
		t.Fatal("second attempt succeeded, result must be success")
	}
	if inner.calls != 2 {
		t.Fatalf("calls = %d, want 2", inner.calls)
	}
}

func TestRetryProber_ExhaustsAttempts(t *testing.T) {
	inner := &scriptedProber{results: []domain.ProbeResult{{Success: false}}}
	r := &RetryProber{Inner: inner, Attempts: 3, Backoff: time.Millisecond}
	out := r.Check(context.Background(), domain.Target{})
	if out.Success {
		t.Fatal("all attempts failed")
	}
	if inner.calls != 3 {
		t.Fatalf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryProber_ZeroAttemptsStillChecksOnce(t *testing.T) {
	inner := &scriptedProber{results: []domain.ProbeResult{{Success: false}}}
	r := &RetryProber{Inner: inner}
	r.Check(context.Background(), domain.Target{})
	if inner.calls != 1 {
		t.Fatalf("calls = %d, want 1", inner.calls)
	}
}
