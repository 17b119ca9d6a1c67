package domain

import "time"

type TargetID int64

// Target is a monitored endpoint plus its check configuration. The store
// assigns the ID on creation; everything else is operator-supplied.
type Target struct {
	ID                 TargetID  `json:"id"`
	Name               string    `json:"name"`
	URL                string    `json:"url"`
	Description        string    `json:"description,omitempty"`
	Method             string    `json:"method"`
	CheckIntervalSecs  int       `json:"check_interval"`
	TimeoutSecs        int       `json:"timeout"`
	ExpectedStatusCode int       `json:"expected_status_code"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (t *Target) CheckInterval() time.Duration {
	return time.Duration(t.CheckIntervalSecs) * time.Second
}

func (t *Target) Timeout() time.Duration {
	return time.Duration(t.TimeoutSecs) * time.Second
}

// ProbeResult is one recorded check outcome. Append-only; StatusCode and
// ResponseTimeMS are pointers because a network failure produces neither.
type ProbeResult struct {
	ID             int64     `json:"id"`
	TargetID       TargetID  `json:"target_id"`
	StatusCode     *int      `json:"status_code"`
	ResponseTimeMS *int64    `json:"response_time_ms"`
	Success        bool      `json:"success"`
	ErrorMessage   *string   `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at"`
}

type IncidentStatus string

const (
	IncidentOngoing  IncidentStatus = "ongoing"
	IncidentResolved IncidentStatus = "resolved"
)

// Incident is a contiguous downtime interval. EndTime is nil while ongoing.
// At most one ongoing incident may exist per target at any time.
type Incident struct {
	ID        int64          `json:"id"`
	TargetID  TargetID       `json:"target_id"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time"`
	Status    IncidentStatus `json:"status"`
	Reason    *string        `json:"reason"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (i *Incident) Ongoing() bool { return i.Status == IncidentOngoing }

// UptimeBucket is one materialized aggregate row: all probes for a target
// within a single calendar-aligned hour or day. Keyed by
// (target, period, bucket timestamp); recomputing an open bucket replaces it.
type UptimeBucket struct {
	ID                int64     `json:"id"`
	TargetID          TargetID  `json:"target_id"`
	Period            Period    `json:"period"`
	Timestamp         time.Time `json:"timestamp"`
	TotalChecks       int       `json:"total_checks"`
	SuccessfulChecks  int       `json:"successful_checks"`
	UptimePercentage  float64   `json:"uptime_percentage"`
	AvgResponseTimeMS *int64    `json:"average_response_time_ms"`
	CreatedAt         time.Time `json:"created_at"`
}

// TargetStatus is the point-in-time view derived from the most recent probe.
// The deriver returns nil instead of a zero value when no probe exists, so
// "unknown" is never rendered as online or offline.
type TargetStatus struct {
	TargetID       TargetID  `json:"target_id"`
	IsOnline       bool      `json:"is_online"`
	LastCheckTime  time.Time `json:"last_check_time"`
	StatusCode     *int      `json:"status_code"`
	ResponseTimeMS *int64    `json:"response_time_ms"`
	ErrorMessage   *string   `json:"error_message"`
}

// WindowStats summarises probes inside a lookback window. Nil when the
// window holds no probes, which is distinct from 0% uptime.
type WindowStats struct {
	TargetID          TargetID `json:"target_id"`
	TotalChecks       int      `json:"total_checks"`
	SuccessfulChecks  int      `json:"successful_checks"`
	UptimePercentage  float64  `json:"uptime_percentage"`
	AvgResponseTimeMS *int64   `json:"average_response_time_ms"`
}
