// Package probe issues HTTP checks against targets and shapes the outcome
// into probe results for the engine. The engine itself never touches the
// network; everything here sits on the far side of that boundary.
package probe

import (
	"context"
	"net/http"
	"time"

	"statuspulse/internal/domain"
)

// Prober is implemented by anything that can check a target.
type Prober interface {
	Check(ctx context.Context, t domain.Target) domain.ProbeResult
}

type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber() *HTTPProber {
	// Per-target timeouts come from the request context; the client-level
	// timeout is only a backstop.
	return &HTTPProber{Client: &http.Client{Timeout: 60 * time.Second}}
}

// Check performs one request using the target's method and timeout. Success
// means the request completed and the status code equals the target's
// expected code; a mismatch is a failure with the observed code recorded,
// a transport error is a failure with no code at all.
func (p *HTTPProber) Check(ctx context.Context, t domain.Target) domain.ProbeResult {
	cctx, cancel := context.WithTimeout(ctx, t.Timeout())
	defer cancel()

	result := domain.ProbeResult{
		TargetID:  t.ID,
		CheckedAt: time.Now().UTC(),
	}

	req, err := http.NewRequestWithContext(cctx, t.Method, t.URL, nil)
	if err != nil {
		msg := err.Error()
		result.ErrorMessage = &msg
		return result
	}

	start := time.Now()
	resp, err := p.Client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		msg := err.Error()
		result.ErrorMessage = &msg
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = &resp.StatusCode
	result.ResponseTimeMS = &elapsed
	result.Success = resp.StatusCode == t.ExpectedStatusCode
	return result
}
