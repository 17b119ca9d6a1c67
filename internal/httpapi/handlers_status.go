package httpapi

import "net/http"

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	st, err := s.Facade.Status(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	// st is nil for a never-probed target: serialized as null, not a 404.
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAllStatus(w http.ResponseWriter, r *http.Request) {
	out, err := s.Facade.AllStatus(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUptime(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	stats, err := s.Facade.Uptime(r.Context(), id, queryInt(r, "window_hours", 24))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
