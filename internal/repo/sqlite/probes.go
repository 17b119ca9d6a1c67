package sqlite

import (
	"context"
	"database/sql"
	"errors"
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
	res, err := s.db.ExecContext(ctx, `
INSERT INTO probe_results
	(target_id, status_code, response_time_ms, success, error_message, checked_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		int64(r.TargetID), r.StatusCode, r.ResponseTimeMS,
		boolToInt(r.Success), r.ErrorMessage, fmtTime(r.CheckedAt),
	)
	if err != nil {
		return fmt.Errorf("insert probe result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("probe insert id: %w", err)
	}
	r.ID = id
	return nil
}

const probeCols = `id, target_id, status_code, response_time_ms, success, error_message, checked_at`

func scanProbe(row interface{ Scan(...any) error }) (*domain.ProbeResult, error) {
	var (
		r         domain.ProbeResult
		status    sql.NullInt64
		latency   sql.NullInt64
		success   int
		errMsg    sql.NullString
		checkedAt string
	)
	err := row.Scan(&r.ID, &r.TargetID, &status, &latency, &success, &errMsg, &checkedAt)
	if err != nil {
		return nil, err
	}
	if status.Valid {
		v := int(status.Int64)
		r.StatusCode = &v
	}
	if latency.Valid {
		v := latency.Int64
		r.ResponseTimeMS = &v
	}
	if errMsg.Valid {
		v := errMsg.String
		r.ErrorMessage = &v
	}
	r.Success = success != 0
	r.CheckedAt = parseTime(checkedAt)
	return &r, nil
}

func (s *Store) ListProbes(ctx context.Context, id domain.TargetID, f repo.ProbeFilter) ([]domain.ProbeResult, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + probeCols + ` FROM probe_results WHERE target_id = ?`)
	args = append(args, int64(id))
	if !f.Since.IsZero() {
		qb.WriteString(` AND checked_at >= ?`)
		args = append(args, fmtTime(f.Since))
	}
	if !f.Until.IsZero() {
		qb.WriteString(` AND checked_at < ?`)
		args = append(args, fmtTime(f.Until))
	}
	qb.WriteString(` ORDER BY checked_at DESC, id DESC`)
	if f.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list probes: %w", err)
	}
	defer rows.Close()

	var out []domain.ProbeResult
	for rows.Next() {
		r, err := scanProbe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan probe: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) LastProbe(ctx context.Context, id domain.TargetID) (*domain.ProbeResult, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+probeCols+`
  FROM probe_results
 WHERE target_id = ?
 ORDER BY checked_at DESC, id DESC
 LIMIT 1`, int64(id))
	r, err := scanProbe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last probe: %w", err)
	}
	return r, nil
}
