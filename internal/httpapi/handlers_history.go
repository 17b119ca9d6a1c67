package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"statuspulse/internal/domain"
)

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathTargetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad target id")
		return
	}
	if _, err := s.Targets.GetTarget(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	period := domain.PeriodDaily
	if v := r.URL.Query().Get("period"); v != "" {
		period, err = domain.ParsePeriod(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	buckets, err := s.Facade.History(r.Context(), id, period, queryInt(r, "days_back", 30))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

type bucketPayload struct {
	TargetID          domain.TargetID `json:"target_id"`
	Period            string          `json:"period"`
	Timestamp         time.Time       `json:"timestamp"`
	TotalChecks       int             `json:"total_checks"`
	SuccessfulChecks  int             `json:"successful_checks"`
	UptimePercentage  float64         `json:"uptime_percentage"`
	AvgResponseTimeMS *int64          `json:"average_response_time_ms"`
}

// handleRecordBucket lets an external aggregation job push a precomputed
// bucket. Same idempotent upsert the built-in rollup uses.
func (s *Server) handleRecordBucket(w http.ResponseWriter, r *http.Request) {
	var p bucketPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	period, err := domain.ParsePeriod(p.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Timestamp.IsZero() || p.SuccessfulChecks > p.TotalChecks {
		writeError(w, http.StatusBadRequest, "bad bucket")
		return
	}
	if _, err := s.Targets.GetTarget(r.Context(), p.TargetID); err != nil {
		s.fail(w, err)
		return
	}

	b := &domain.UptimeBucket{
		TargetID:          p.TargetID,
		Period:            period,
		Timestamp:         period.BucketStart(p.Timestamp),
		TotalChecks:       p.TotalChecks,
		SuccessfulChecks:  p.SuccessfulChecks,
		UptimePercentage:  p.UptimePercentage,
		AvgResponseTimeMS: p.AvgResponseTimeMS,
	}
	if err := s.History.UpsertBucket(r.Context(), b); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
