package domain

import (
	"context"
	"time"
)

// RequestRepository defines persistence for design request records.
type RequestRepository interface {
	Create(ctx context.Context, req *Request) (*Request, error)
	GetByID(ctx context.Context, id int64) (*Request, error)
	ListByRequester(ctx context.Context, requesterID int64, status Status, limit int) ([]Request, error)
	UpdateField(ctx context.Context, id int64, field, value string) (*Request, error)
	// Cancel forces the request into the terminal completed state and
	// appends a note, refusing requests that are already completed.
	Cancel(ctx context.Context, id int64, reason string) (*Request, error)
}

// TimeLogRepository reads the append-only time-accounting trail.
type TimeLogRepository interface {
	ListByRequest(ctx context.Context, requestID int64) ([]TimeLogEntry, error)
	Latest(ctx context.Context, requestID int64) (*TimeLogEntry, error)
}

// TransitionStore applies one lifecycle transition atomically: the status
// update and the audit row either both persist or neither does.
type TransitionStore interface {
	GetForTransition(ctx context.Context, requestID int64) (*Request, *TimeLogEntry, error)
	ApplyTransition(ctx context.Context, requestID int64, next Status, action AuditAction, accumulated float64, at time.Time) error
}

// GuidanceStore is the specification knowledge base. Search returns at most
// k snippets ordered by relevance; a miss is an empty slice, never an error.
type GuidanceStore interface {
	Search(ctx context.Context, query string, category string, k int) ([]string, error)
}
