// Package postgres is the production store adapter, kept schema-compatible
// with the sqlite adapter. Migrations live in migrations.sql alongside the
// deployment; this package assumes the four relations exist.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"statuspulse/internal/domain"
	"statuspulse/internal/repo"
)

var _ repo.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// isUniqueViolation matches the 23505 error class so callers see
// repo.ErrConflict instead of a driver error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// ---- TargetStore ----

func (s *Store) CreateTarget(ctx context.Context, t *domain.Target) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	err := s.pool.QueryRow(ctx, `
INSERT INTO targets
	(name, url, description, method, check_interval_secs, timeout_secs,
	 expected_status_code, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`,
		t.Name, t.URL, t.Description, t.Method, t.CheckIntervalSecs, t.TimeoutSecs,
		t.ExpectedStatusCode, t.Active, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert target: %w", err)
	}
	return nil
}

const targetCols = `id, name, url, description, method, check_interval_secs,
	timeout_secs, expected_status_code, active, created_at, updated_at`

func (s *Store) GetTarget(ctx context.Context, id domain.TargetID) (*domain.Target, error) {
	var t domain.Target
	err := s.pool.QueryRow(ctx,
		`SELECT `+targetCols+` FROM targets WHERE id = $1`, int64(id),
	).Scan(&t.ID, &t.Name, &t.URL, &t.Description, &t.Method,
		&t.CheckIntervalSecs, &t.TimeoutSecs, &t.ExpectedStatusCode,
		&t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get target %d: %w", id, err)
	}
	return &t, nil
}

func (s *Store) ListTargets(ctx context.Context, activeOnly bool) ([]domain.Target, error) {
	q := `SELECT ` + targetCols + ` FROM targets`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []domain.Target
	for rows.Next() {
		var t domain.Target
		if err := rows.Scan(&t.ID, &t.Name, &t.URL, &t.Description, &t.Method,
			&t.CheckIntervalSecs, &t.TimeoutSecs, &t.ExpectedStatusCode,
			&t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTarget(ctx context.Context, t *domain.Target) error {
	t.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
UPDATE targets
   SET name = $1, url = $2, description = $3, method = $4,
       check_interval_secs = $5, timeout_secs = $6, expected_status_code = $7,
       active = $8, updated_at = $9
 WHERE id = $10`,
		t.Name, t.URL, t.Description, t.Method, t.CheckIntervalSecs,
		t.TimeoutSecs, t.ExpectedStatusCode, t.Active, t.UpdatedAt, int64(t.ID),
	)
	if err != nil {
		return fmt.Errorf("update target %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
