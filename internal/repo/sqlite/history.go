package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
)

func (s *Store) UpsertBucket(ctx context.Context, b *domain.UptimeBucket) error {
	b.Timestamp = b.Timestamp.UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO uptime_history
	(target_id, period, bucket_ts, total_checks, successful_checks,
	 uptime_percentage, avg_response_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(target_id, period, bucket_ts) DO UPDATE SET
	total_checks      = excluded.total_checks,
	successful_checks = excluded.successful_checks,
	uptime_percentage = excluded.uptime_percentage,
	avg_response_ms   = excluded.avg_response_ms`,
		int64(b.TargetID), string(b.Period), fmtTime(b.Timestamp),
		b.TotalChecks, b.SuccessfulChecks, b.UptimePercentage,
		b.AvgResponseTimeMS, fmtTime(b.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert bucket: %w", err)
	}
	return nil
}

const bucketCols = `id, target_id, period, bucket_ts, total_checks,
	successful_checks, uptime_percentage, avg_response_ms, created_at`

func scanBucket(row interface{ Scan(...any) error }) (*domain.UptimeBucket, error) {
	var (
		b         domain.UptimeBucket
		ts        string
		avg       sql.NullInt64
		createdAt string
	)
	err := row.Scan(&b.ID, &b.TargetID, &b.Period, &ts, &b.TotalChecks,
		&b.SuccessfulChecks, &b.UptimePercentage, &avg, &createdAt)
	if err != nil {
		return nil, err
	}
	b.Timestamp = parseTime(ts)
	if avg.Valid {
		v := avg.Int64
		b.AvgResponseTimeMS = &v
	}
	b.CreatedAt = parseTime(createdAt)
	return &b, nil
}

func (s *Store) GetBucket(ctx context.Context, id domain.TargetID, p domain.Period, ts time.Time) (*domain.UptimeBucket, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+bucketCols+`
  FROM uptime_history
 WHERE target_id = ? AND period = ? AND bucket_ts = ?`,
		int64(id), string(p), fmtTime(ts))
	b, err := scanBucket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bucket: %w", err)
	}
	return b, nil
}

func (s *Store) ListBuckets(ctx context.Context, id domain.TargetID, p domain.Period, since time.Time) ([]domain.UptimeBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+bucketCols+`
  FROM uptime_history
 WHERE target_id = ? AND period = ? AND bucket_ts >= ?
 ORDER BY bucket_ts DESC`,
		int64(id), string(p), fmtTime(since))
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close()

	var out []domain.UptimeBucket
	for rows.Next() {
		b, err := scanBucket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
