package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"designdesk/internal/domain"
)

const requestColumns = `id, title, category, dimensions, deadline, copy_text, reference_uris, notes,
requester_id, assignee_id, estimated_hours, status, conversation_id, created_at, updated_at`

// updatableFields are the request columns the Manage surface may rewrite.
// Anything else is rejected before touching the database.
var updatableFields = map[string]struct{}{
	"title":      {},
	"dimensions": {},
	"deadline":   {},
	"notes":      {},
}

// RequestRepositoryPG implements domain.RequestRepository.
type RequestRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a new request repository backed by PostgreSQL.
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepositoryPG {
	return &RequestRepositoryPG{pool: pool}
}

// Create inserts a new request in the pending state and returns the stored
// row with its generated id and timestamps.
func (r *RequestRepositoryPG) Create(ctx context.Context, req *domain.Request) (*domain.Request, error) {
	query := `
INSERT INTO requests (title, category, dimensions, deadline, copy_text, reference_uris, notes,
                      requester_id, assignee_id, estimated_hours, status, conversation_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + requestColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		req.Title,
		req.Category,
		req.Dimensions,
		req.Deadline,
		req.CopyText,
		req.ReferenceURIs,
		req.Notes,
		req.RequesterID,
		req.AssigneeID,
		req.EstimatedHours,
		domain.StatusPending,
		req.ConversationID,
	)
	return scanRequest(row)
}

// GetByID fetches a request by its identifier.
func (r *RequestRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1;`, id)
	return scanRequest(row)
}

// ListByRequester returns the requester's most recent requests, optionally
// filtered by status. An empty status means all states.
func (r *RequestRepositoryPG) ListByRequester(ctx context.Context, requesterID int64, status domain.Status, limit int) ([]domain.Request, error) {
	query := `
SELECT ` + requestColumns + `
FROM requests
WHERE requester_id = $1
  AND ($2 = '' OR status = $2)
ORDER BY created_at DESC
LIMIT $3;
`
	rows, err := r.pool.Query(ctx, query, requesterID, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// UpdateField rewrites one whitelisted column and returns the updated row.
func (r *RequestRepositoryPG) UpdateField(ctx context.Context, id int64, field, value string) (*domain.Request, error) {
	if _, ok := updatableFields[field]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFieldNotAllowed, field)
	}
	// field is whitelisted above, never caller-controlled SQL.
	query := fmt.Sprintf(`
UPDATE requests
SET %s = $2, updated_at = NOW()
WHERE id = $1
RETURNING `+requestColumns+`;
`, field)
	return scanRequest(r.pool.QueryRow(ctx, query, id, value))
}

// Cancel forces a request into the terminal completed state and appends the
// reason to its notes. No time-log row is written: cancellation is an
// administrative override, not a billable action. Already-completed requests
// are rejected.
func (r *RequestRepositoryPG) Cancel(ctx context.Context, id int64, reason string) (*domain.Request, error) {
	query := `
UPDATE requests
SET status = $2,
    notes = TRIM(BOTH E'\n' FROM notes || E'\n' || $3),
    updated_at = NOW()
WHERE id = $1 AND status <> $2
RETURNING ` + requestColumns + `;
`
	note := "[已取消] " + reason
	req, err := scanRequest(r.pool.QueryRow(ctx, query, id, domain.StatusCompleted, note))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	// Zero rows: distinguish a missing request from one already completed.
	var exists bool
	if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM requests WHERE id = $1);`, id).Scan(&exists); checkErr != nil {
		return nil, checkErr
	}
	if exists {
		return nil, domain.ErrAlreadyCompleted
	}
	return nil, domain.ErrNotFound
}

func scanRequest(row pgx.Row) (*domain.Request, error) {
	var req domain.Request
	if err := row.Scan(
		&req.ID,
		&req.Title,
		&req.Category,
		&req.Dimensions,
		&req.Deadline,
		&req.CopyText,
		&req.ReferenceURIs,
		&req.Notes,
		&req.RequesterID,
		&req.AssigneeID,
		&req.EstimatedHours,
		&req.Status,
		&req.ConversationID,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}
