package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"statuspulse/internal/domain"
)

type probePayload struct {
	StatusCode     *int       `json:"status_code"`
	ResponseTimeMS *int64     `json:"response_time_ms"`
	Success        bool       `json:"success"`
	ErrorMessage   *string    `json:"error_message"`
	CheckedAt      *time.Time `json:"checked_at"`
}

// handleRecordProbe is the external prober's feed: recording the result is
// what triggers the incident transition, exactly like the built-in loop.
func (s *Server) handleRecordProbe(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	var p probePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if _, err := s.Targets.GetTarget(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}

	pr := &domain.ProbeResult{
		TargetID:       id,
		StatusCode:     p.StatusCode,
		ResponseTimeMS: p.ResponseTimeMS,
		Success:        p.Success,
		ErrorMessage:   p.ErrorMessage,
	}
	if p.CheckedAt != nil {
		pr.CheckedAt = p.CheckedAt.UTC()
	}

	changed, err := s.Tracker.Record(r.Context(), pr)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"probe":    pr,
		"incident": changed,
	})
}
