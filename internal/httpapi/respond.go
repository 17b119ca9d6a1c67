package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"statuspulse/internal/domain"
	"statuspulse/internal/incident"
	"statuspulse/internal/repo"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// fail maps engine errors onto status codes: absent rows are 404, rejected
// configs 400, ongoing-incident collisions 409, everything else a 500.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, incident.ErrOngoingExists), errors.Is(err, repo.ErrConflict):
		writeError(w, http.StatusConflict, "target already has an ongoing incident")
	default:
		s.Logger.Error("request_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pathTargetID(r *http.Request) (domain.TargetID, error) {
	id, err := pathID(r)
	return domain.TargetID(id), err
}

// queryInt returns the named query parameter or def when absent/invalid.
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
