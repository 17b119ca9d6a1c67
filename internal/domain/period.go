package domain

import (
	"fmt"
	"time"
)

// Period is the rollup granularity of an UptimeBucket. Bucket boundaries are
// calendar-aligned in UTC so cross-target comparisons line up.
type Period string

const (
	PeriodHourly Period = "hourly"
	PeriodDaily  Period = "daily"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodHourly:
		return PeriodHourly, nil
	case PeriodDaily:
		return PeriodDaily, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// BucketStart returns the start of the bucket containing t.
func (p Period) BucketStart(t time.Time) time.Time {
	u := t.UTC()
	switch p {
	case PeriodDaily:
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return u.Truncate(time.Hour)
	}
}

// Span is the length of one bucket.
func (p Period) Span() time.Duration {
	if p == PeriodDaily {
		return 24 * time.Hour
	}
	return time.Hour
}

// BucketEnd returns the exclusive end of the bucket starting at start.
func (p Period) BucketEnd(start time.Time) time.Time {
	if p == PeriodDaily {
		return start.AddDate(0, 0, 1)
	}
	return start.Add(time.Hour)
}
