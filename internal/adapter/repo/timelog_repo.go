package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"designdesk/internal/domain"
)

// TimeLogRepositoryPG implements domain.TimeLogRepository over the
// append-only task_time_logs table.
type TimeLogRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTimeLogRepository creates a new time-log repository backed by PostgreSQL.
func NewTimeLogRepository(pool *pgxpool.Pool) *TimeLogRepositoryPG {
	return &TimeLogRepositoryPG{pool: pool}
}

// ListByRequest returns a request's full audit trail in insertion order.
func (r *TimeLogRepositoryPG) ListByRequest(ctx context.Context, requestID int64) ([]domain.TimeLogEntry, error) {
	query := `
SELECT id, request_id, action, ts, accumulated_hours
FROM task_time_logs
WHERE request_id = $1
ORDER BY ts ASC, id ASC;
`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TimeLogEntry
	for rows.Next() {
		var entry domain.TimeLogEntry
		if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.Action, &entry.Timestamp, &entry.AccumulatedHours); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Latest returns the most recent audit row, or nil when none exists.
func (r *TimeLogRepositoryPG) Latest(ctx context.Context, requestID int64) (*domain.TimeLogEntry, error) {
	query := `
SELECT id, request_id, action, ts, accumulated_hours
FROM task_time_logs
WHERE request_id = $1
ORDER BY ts DESC, id DESC
LIMIT 1;
`
	var entry domain.TimeLogEntry
	err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&entry.ID, &entry.RequestID, &entry.Action, &entry.Timestamp, &entry.AccumulatedHours,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
