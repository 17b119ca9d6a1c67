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

// OpenIncident relies on the partial unique index over ongoing incidents:
// a second open for the same target fails the insert, which surfaces as
// repo.ErrConflict instead of a duplicate row.
func (s *Store) OpenIncident(ctx context.Context, in *domain.Incident) error {
	now := time.Now().UTC()
	in.Status = domain.IncidentOngoing
	in.CreatedAt = now
	in.UpdatedAt = now
	res, err := s.db.ExecContext(ctx, `
INSERT INTO incidents (target_id, start_time, end_time, status, reason, created_at, updated_at)
VALUES (?, ?, NULL, 'ongoing', ?, ?, ?)`,
		int64(in.TargetID), fmtTime(in.StartTime), in.Reason, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("target %d: %w", in.TargetID, repo.ErrConflict)
		}
		return fmt.Errorf("insert incident: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("incident insert id: %w", err)
	}
	in.ID = id
	return nil
}

const incidentCols = `id, target_id, start_time, end_time, status, reason, created_at, updated_at`

func scanIncident(row interface{ Scan(...any) error }) (*domain.Incident, error) {
	var (
		in                   domain.Incident
		endTime              sql.NullString
		reason               sql.NullString
		start                string
		createdAt, updatedAt string
	)
	err := row.Scan(&in.ID, &in.TargetID, &start, &endTime, &in.Status, &reason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	in.StartTime = parseTime(start)
	if endTime.Valid {
		t := parseTime(endTime.String)
		in.EndTime = &t
	}
	if reason.Valid {
		v := reason.String
		in.Reason = &v
	}
	in.CreatedAt = parseTime(createdAt)
	in.UpdatedAt = parseTime(updatedAt)
	return &in, nil
}

func (s *Store) GetIncident(ctx context.Context, id int64) (*domain.Incident, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+incidentCols+` FROM incidents WHERE id = ?`, id)
	in, err := scanIncident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get incident %d: %w", id, err)
	}
	return in, nil
}

func (s *Store) OngoingIncident(ctx context.Context, id domain.TargetID) (*domain.Incident, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+incidentCols+`
  FROM incidents
 WHERE target_id = ? AND status = 'ongoing'`, int64(id))
	in, err := scanIncident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ongoing incident: %w", err)
	}
	return in, nil
}

func (s *Store) ResolveIncident(ctx context.Context, id int64, endTime time.Time) (*domain.Incident, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
UPDATE incidents
   SET status = 'resolved', end_time = ?, updated_at = ?
 WHERE id = ?`,
		fmtTime(endTime), fmtTime(now), id,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve incident %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, repo.ErrNotFound
	}
	return s.GetIncident(ctx, id)
}

func (s *Store) ListIncidents(ctx context.Context, id domain.TargetID, limit int) ([]domain.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+incidentCols+`
  FROM incidents
 WHERE target_id = ?
 ORDER BY start_time DESC, id DESC
 LIMIT ?`, int64(id), limit)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var out []domain.Incident
	for rows.Next() {
		in, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}
