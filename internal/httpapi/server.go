package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "statuspulse/internal/httpapi/middleware"
	"statuspulse/internal/incident"
	"statuspulse/internal/query"
	"statuspulse/internal/repo"
)

type Server struct {
	Logger  *zap.Logger
	Targets repo.TargetStore
	History repo.HistoryStore
	Facade  *query.Facade
	Tracker *incident.Tracker
}

func NewServer(l *zap.Logger, targets repo.TargetStore, history repo.HistoryStore, f *query.Facade, tr *incident.Tracker) *Server {
	return &Server{Logger: l, Targets: targets, History: history, Facade: f, Tracker: tr}
}

// Router wires the read surface behind the public keys and every mutation
// behind the admin keys, each with its own rate limit.
func (s *Server) Router(keys apimw.Keys, publicRPM, publicBurst, adminRPM, adminBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// read surface
	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Use(apimw.RequireRead(keys))

		r.Get("/api/targets", s.handleListTargets)
		r.Get("/api/targets/{id}", s.handleGetTarget)
		r.Get("/api/targets/{id}/status", s.handleGetStatus)
		r.Get("/api/targets/{id}/uptime", s.handleGetUptime)
		r.Get("/api/targets/{id}/incidents", s.handleListIncidents)
		r.Get("/api/targets/{id}/history", s.handleGetHistory)
		r.Get("/api/status", s.handleAllStatus)
	})

	// write surface
	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(adminRPM, adminBurst))
		r.Use(apimw.RequireAdmin(keys))

		r.Post("/api/targets", s.handleCreateTarget)
		r.Patch("/api/targets/{id}", s.handleUpdateTarget)
		r.Delete("/api/targets/{id}", s.handleDeleteTarget)
		r.Post("/api/targets/{id}/probes", s.handleRecordProbe)
		r.Post("/api/targets/{id}/incidents", s.handleOpenIncident)
		r.Post("/api/incidents/{id}/resolve", s.handleResolveIncident)
		r.Post("/api/history", s.handleRecordBucket)
	})

	return r
}
