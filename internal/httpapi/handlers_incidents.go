package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	if _, err := s.Targets.GetTarget(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	incidents, err := s.Facade.Incidents(r.Context(), id, queryInt(r, "limit", 50))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incidents)
}

type openIncidentPayload struct {
	StartTime *time.Time `json:"start_time"`
	Reason    string     `json:"reason"`
}

func (s *Server) handleOpenIncident(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	var p openIncidentPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if _, err := s.Targets.GetTarget(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}

	start := time.Now().UTC()
	if p.StartTime != nil {
		start = *p.StartTime
	}
	in, err := s.Tracker.Open(r.Context(), id, start, p.Reason)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) handleResolveIncident(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad incident id")
		return
	}
	in, err := s.Tracker.Resolve(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}
