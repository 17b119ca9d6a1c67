package postgres

import (
	"context"
	"fmt"
	"time"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
)

// OpenIncident depends on the deployment schema's partial unique index
// (target_id WHERE status = 'ongoing'); losing the insert race yields
// repo.ErrConflict, never a second ongoing row.
func (s *Store) OpenIncident(ctx context.Context, in *domain.Incident) error {
	now := time.Now().UTC()
	in.Status = domain.IncidentOngoing
	in.CreatedAt = now
	in.UpdatedAt = now
	err := s.pool.QueryRow(ctx, `
INSERT INTO incidents (target_id, start_time, end_time, status, reason, created_at, updated_at)
VALUES ($1, $2, NULL, 'ongoing', $3, $4, $5)
RETURNING id`,
		int64(in.TargetID), in.StartTime.UTC(), in.Reason, now, now,
	).Scan(&in.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("target %d: %w", in.TargetID, repo.ErrConflict)
		}
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

const incidentCols = `id, target_id, start_time, end_time, status, reason, created_at, updated_at`

func (s *Store) GetIncident(ctx context.Context, id int64) (*domain.Incident, error) {
	var in domain.Incident
	err := s.pool.QueryRow(ctx,
		`SELECT `+incidentCols+` FROM incidents WHERE id = $1`, id,
	).Scan(&in.ID, &in.TargetID, &in.StartTime, &in.EndTime,
		&in.Status, &in.Reason, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get incident %d: %w", id, err)
	}
	return &in, nil
}

func (s *Store) OngoingIncident(ctx context.Context, id domain.TargetID) (*domain.Incident, error) {
	var in domain.Incident
	err := s.pool.QueryRow(ctx, `
SELECT `+incidentCols+`
  FROM incidents
 WHERE target_id = $1 AND status = 'ongoing'`, int64(id),
	).Scan(&in.ID, &in.TargetID, &in.StartTime, &in.EndTime,
		&in.Status, &in.Reason, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ongoing incident: %w", err)
	}
	return &in, nil
}

func (s *Store) ResolveIncident(ctx context.Context, id int64, endTime time.Time) (*domain.Incident, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE incidents
   SET status = 'resolved', end_time = $1, updated_at = $2
 WHERE id = $3`,
		endTime.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve incident %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, repo.ErrNotFound
	}
	return s.GetIncident(ctx, id)
}

func (s *Store) ListIncidents(ctx context.Context, id domain.TargetID, limit int) ([]domain.Incident, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+incidentCols+`
  FROM incidents
 WHERE target_id = $1
 ORDER BY start_time DESC, id DESC
 LIMIT $2`, int64(id), limit)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var out []domain.Incident
	for rows.Next() {
		var in domain.Incident
		if err := rows.Scan(&in.ID, &in.TargetID, &in.StartTime, &in.EndTime,
			&in.Status, &in.Reason, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
