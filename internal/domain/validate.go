package domain

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrInvalidConfig = errors.New("invalid target config")

var allowedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// Normalize fills defaults for optional fields and upper-cases the method.
func (t *Target) Normalize() {
	if t.Method == "" {
		t.Method = http.MethodGet
	}
	t.Method = strings.ToUpper(t.Method)
	if t.CheckIntervalSecs == 0 {
		t.CheckIntervalSecs = 300
	}
	if t.TimeoutSecs == 0 {
		t.TimeoutSecs = 10
	}
	if t.ExpectedStatusCode == 0 {
		t.ExpectedStatusCode = http.StatusOK
	}
}

// Validate rejects configurations the prober could not act on. All failures
// wrap ErrInvalidConfig so callers can map them to a 400.
func (t *Target) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	u, err := url.ParseRequestURI(t.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: url must be absolute http(s), got %q", ErrInvalidConfig, t.URL)
	}
	if !allowedMethods[t.Method] {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidConfig, t.Method)
	}
	if t.CheckIntervalSecs < 1 {
		return fmt.Errorf("%w: check interval must be >= 1s", ErrInvalidConfig)
	}
	if t.TimeoutSecs < 1 {
		return fmt.Errorf("%w: timeout must be >= 1s", ErrInvalidConfig)
	}
	if t.ExpectedStatusCode < 100 || t.ExpectedStatusCode > 599 {
		return fmt.Errorf("%w: expected status code out of range", ErrInvalidConfig)
	}
	return nil
}
