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

func (s *Store) CreateTarget(ctx context.Context, t *domain.Target) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	res, err := s.db.ExecContext(ctx, `
INSERT INTO targets
	(name, url, description, method, check_interval_secs, timeout_secs,
	 expected_status_code, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.URL, t.Description, t.Method, t.CheckIntervalSecs, t.TimeoutSecs,
		t.ExpectedStatusCode, boolToInt(t.Active), fmtTime(t.CreatedAt), fmtTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert target: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("target insert id: %w", err)
	}
	t.ID = domain.TargetID(id)
	return nil
}

const targetCols = `id, name, url, description, method, check_interval_secs,
	timeout_secs, expected_status_code, active, created_at, updated_at`

func scanTarget(row interface{ Scan(...any) error }) (*domain.Target, error) {
	var (
		t                    domain.Target
		active               int
		createdAt, updatedAt string
	)
	err := row.Scan(&t.ID, &t.Name, &t.URL, &t.Description, &t.Method,
		&t.CheckIntervalSecs, &t.TimeoutSecs, &t.ExpectedStatusCode,
		&active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Active = active != 0
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

func (s *Store) GetTarget(ctx context.Context, id domain.TargetID) (*domain.Target, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+targetCols+` FROM targets WHERE id = ?`, int64(id))
	t, err := scanTarget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get target %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) ListTargets(ctx context.Context, activeOnly bool) ([]domain.Target, error) {
	q := `SELECT ` + targetCols + ` FROM targets`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []domain.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTarget(ctx context.Context, t *domain.Target) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
UPDATE targets
   SET name = ?, url = ?, description = ?, method = ?, check_interval_secs = ?,
       timeout_secs = ?, expected_status_code = ?, active = ?, updated_at = ?
 WHERE id = ?`,
		t.Name, t.URL, t.Description, t.Method, t.CheckIntervalSecs,
		t.TimeoutSecs, t.ExpectedStatusCode, boolToInt(t.Active),
		fmtTime(t.UpdatedAt), int64(t.ID),
	)
	if err != nil {
		return fmt.Errorf("update target %d: %w", t.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
