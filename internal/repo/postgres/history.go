package postgres

import (
	"context"
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
	_, err := s.pool.Exec(ctx, `
INSERT INTO uptime_history
	(target_id, period, bucket_ts, total_checks, successful_checks,
	 uptime_percentage, avg_response_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (target_id, period, bucket_ts) DO UPDATE SET
	total_checks      = EXCLUDED.total_checks,
	successful_checks = EXCLUDED.successful_checks,
	uptime_percentage = EXCLUDED.uptime_percentage,
	avg_response_ms   = EXCLUDED.avg_response_ms`,
		int64(b.TargetID), string(b.Period), b.Timestamp,
		b.TotalChecks, b.SuccessfulChecks, b.UptimePercentage,
		b.AvgResponseTimeMS, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert bucket: %w", err)
	}
	return nil
}

const bucketCols = `id, target_id, period, bucket_ts, total_checks,
	successful_checks, uptime_percentage, avg_response_ms, created_at`

func (s *Store) GetBucket(ctx context.Context, id domain.TargetID, p domain.Period, ts time.Time) (*domain.UptimeBucket, error) {
	var b domain.UptimeBucket
	err := s.pool.QueryRow(ctx, `
SELECT `+bucketCols+`
  FROM uptime_history
 WHERE target_id = $1 AND period = $2 AND bucket_ts = $3`,
		int64(id), string(p), ts.UTC(),
	).Scan(&b.ID, &b.TargetID, &b.Period, &b.Timestamp, &b.TotalChecks,
		&b.SuccessfulChecks, &b.UptimePercentage, &b.AvgResponseTimeMS, &b.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get bucket: %w", err)
	}
	return &b, nil
}

func (s *Store) ListBuckets(ctx context.Context, id domain.TargetID, p domain.Period, since time.Time) ([]domain.UptimeBucket, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+bucketCols+`
  FROM uptime_history
 WHERE target_id = $1 AND period = $2 AND bucket_ts >= $3
 ORDER BY bucket_ts DESC`,
		int64(id), string(p), since.UTC())
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close()

	var out []domain.UptimeBucket
	for rows.Next() {
		var b domain.UptimeBucket
		if err := rows.Scan(&b.ID, &b.TargetID, &b.Period, &b.Timestamp, &b.TotalChecks,
			&b.SuccessfulChecks, &b.UptimePercentage, &b.AvgResponseTimeMS, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
