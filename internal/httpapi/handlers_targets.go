package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"statuspulse/internal/domain"
)

type targetPayload struct {
	Name               string `json:"name"`
	URL                string `json:"url"`
	Description        string `json:"description"`
	Method             string `json:"method"`
	CheckInterval      int    `json:"check_interval"`
	Timeout            int    `json:"timeout"`
	ExpectedStatusCode int    `json:"expected_status_code"`
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.Targets.ListTargets(r.Context(), true)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (s *Server) handleGetTarget(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	t, err := s.Targets.GetTarget(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	var p targetPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	t := &domain.Target{
		Name:               p.Name,
		URL:                p.URL,
		Description:        p.Description,
		Method:             p.Method,
		CheckIntervalSecs:  p.CheckInterval,
		TimeoutSecs:        p.Timeout,
		ExpectedStatusCode: p.ExpectedStatusCode,
		Active:             true,
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.Targets.CreateTarget(r.Context(), t); err != nil {
		s.fail(w, err)
		return
	}

	s.Logger.Info("target_created",
		zap.Int64("target_id", int64(t.ID)),
		zap.String("url", t.URL),
	)
	writeJSON(w, http.StatusCreated, t)
}

type targetPatch struct {
	Name               *string `json:"name"`
	URL                *string `json:"url"`
	Description        *string `json:"description"`
	Method             *string `json:"method"`
	CheckInterval      *int    `json:"check_interval"`
	Timeout            *int    `json:"timeout"`
	ExpectedStatusCode *int    `json:"expected_status_code"`
	Active             *bool   `json:"active"`
}

func (s *Server) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	var p targetPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	t, err := s.Targets.GetTarget(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.URL != nil {
		t.URL = *p.URL
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Method != nil {
		t.Method = *p.Method
	}
	if p.CheckInterval != nil {
		t.CheckIntervalSecs = *p.CheckInterval
	}
	if p.Timeout != nil {
		t.TimeoutSecs = *p.Timeout
	}
	if p.ExpectedStatusCode != nil {
		t.ExpectedStatusCode = *p.ExpectedStatusCode
	}
	if p.Active != nil {
		t.Active = *p.Active
	}

	t.Normalize()
	if err := t.Validate(); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.Targets.UpdateTarget(r.Context(), t); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleDeleteTarget soft-removes: the active flag is cleared and the row
// stays, keeping probe and incident history referentially intact.
func (s *Server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	t, err := s.Targets.GetTarget(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	t.Active = false
	if err := s.Targets.UpdateTarget(r.Context(), t); err != nil {
		s.fail(w, err)
		return
	}
	s.Logger.Info("target_deactivated", zap.Int64("target_id", int64(id)))
	w.WriteHeader(http.StatusNoContent)
}
