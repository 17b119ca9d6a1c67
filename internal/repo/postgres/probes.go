package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
)

func (s *Store) AppendProbe(ctx context.Context, r *domain.ProbeResult) error {
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, `
INSERT INTO probe_results
	(target_id, status_code, response_time_ms, success, error_message, checked_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		int64(r.TargetID), r.StatusCode, r.ResponseTimeMS,
		r.Success, r.ErrorMessage, r.CheckedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert probe result: %w", err)
	}
	return nil
}

const probeCols = `id, target_id, status_code, response_time_ms, success, error_message, checked_at`

func (s *Store) ListProbes(ctx context.Context, id domain.TargetID, f repo.ProbeFilter) ([]domain.ProbeResult, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + probeCols + ` FROM probe_results WHERE target_id = $1`)
	args = append(args, int64(id))
	if !f.Since.IsZero() {
		args = append(args, f.Since.UTC())
		qb.WriteString(fmt.Sprintf(` AND checked_at >= $%d`, len(args)))
	}
	if !f.Until.IsZero() {
		args = append(args, f.Until.UTC())
		qb.WriteString(fmt.Sprintf(` AND checked_at < $%d`, len(args)))
	}
	qb.WriteString(` ORDER BY checked_at DESC, id DESC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		qb.WriteString(fmt.Sprintf(` LIMIT $%d`, len(args)))
	}

	rows, err := s.pool.Query(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list probes: %w", err)
	}
	defer rows.Close()

	var out []domain.ProbeResult
	for rows.Next() {
		var r domain.ProbeResult
		if err := rows.Scan(&r.ID, &r.TargetID, &r.StatusCode, &r.ResponseTimeMS,
			&r.Success, &r.ErrorMessage, &r.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan probe: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LastProbe(ctx context.Context, id domain.TargetID) (*domain.ProbeResult, error) {
	var r domain.ProbeResult
	err := s.pool.QueryRow(ctx, `
SELECT `+probeCols+`
  FROM probe_results
 WHERE target_id = $1
 ORDER BY checked_at DESC, id DESC
 LIMIT 1`, int64(id),
	).Scan(&r.ID, &r.TargetID, &r.StatusCode, &r.ResponseTimeMS,
		&r.Success, &r.ErrorMessage, &r.CheckedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("last probe: %w", err)
	}
	return &r, nil
}
