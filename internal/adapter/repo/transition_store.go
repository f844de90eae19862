package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"designdesk/internal/domain"
)

// TransitionStorePG implements domain.TransitionStore. A transition's status
// update and audit insert are applied in one transaction so a status change
// can never persist without its audit row, or vice versa.
type TransitionStorePG struct {
	pool *pgxpool.Pool
}

// NewTransitionStore creates a new transition store backed by PostgreSQL.
func NewTransitionStore(pool *pgxpool.Pool) *TransitionStorePG {
	return &TransitionStorePG{pool: pool}
}

// GetForTransition loads the request together with its latest audit row;
// the entry is nil when the trail is empty.
func (s *TransitionStorePG) GetForTransition(ctx context.Context, requestID int64) (*domain.Request, *domain.TimeLogEntry, error) {
	req, err := scanRequest(s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1;`, requestID))
	if err != nil {
		return nil, nil, err
	}

	var entry domain.TimeLogEntry
	err = s.pool.QueryRow(ctx, `
SELECT id, request_id, action, ts, accumulated_hours
FROM task_time_logs
WHERE request_id = $1
ORDER BY ts DESC, id DESC
LIMIT 1;
`, requestID).Scan(&entry.ID, &entry.RequestID, &entry.Action, &entry.Timestamp, &entry.AccumulatedHours)
	if errors.Is(err, pgx.ErrNoRows) {
		return req, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return req, &entry, nil
}

// ApplyTransition writes the new status and the audit row atomically.
func (s *TransitionStorePG) ApplyTransition(ctx context.Context, requestID int64, next domain.Status, action domain.AuditAction, accumulated float64, at time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE requests SET status = $2, updated_at = NOW() WHERE id = $1;`,
		requestID, next)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	_, err = tx.Exec(ctx, `
INSERT INTO task_time_logs (request_id, action, ts, accumulated_hours)
VALUES ($1, $2, $3, $4);
`, requestID, action, at, accumulated)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
