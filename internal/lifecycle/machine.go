package lifecycle

import (
	"context"
	"fmt"
	"time"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
)

// Action enumerates the business operations a caller can request. They map
// onto audit actions through the transition table; the naming difference
// between the two is intentional and carries no hidden states.
type Action string

const (
	ActionStart           Action = "start"
	ActionSubmitForReview Action = "submit-for-review"
	ActionRequestRevision Action = "request-revision"
	ActionComplete        Action = "complete"
	ActionCancel          Action = "cancel"
)

type transition struct {
	validFrom []domain.Status
	next      domain.Status
	audit     domain.AuditAction
}

// transitions is the authoritative lifecycle table. Cancel is handled
// separately: it is valid from every non-terminal state and records a note
// instead of an audit row.
var transitions = map[Action]transition{
	ActionStart: {
		validFrom: []domain.Status{domain.StatusPending},
		next:      domain.StatusInProgress,
		audit:     domain.AuditStart,
	},
	ActionSubmitForReview: {
		validFrom: []domain.Status{domain.StatusInProgress, domain.StatusRevising},
		next:      domain.StatusUnderReview,
		audit:     domain.AuditPause,
	},
	ActionRequestRevision: {
		validFrom: []domain.Status{domain.StatusUnderReview},
		next:      domain.StatusRevising,
		audit:     domain.AuditResume,
	},
	ActionComplete: {
		validFrom: []domain.Status{domain.StatusUnderReview},
		next:      domain.StatusCompleted,
		audit:     domain.AuditComplete,
	},
}

// Result reports the outcome of a successful transition.
type Result struct {
	Status           domain.Status
	AccumulatedHours float64
}

// Machine governs the status and time accounting of submitted requests.
// It is stateless; every call reads the current record, validates the
// transition, and applies status plus audit row atomically.
type Machine struct {
	store    domain.TransitionStore
	requests domain.RequestRepository
	logger   *infra.Logger
	now      func() time.Time
}

// NewMachine constructs a lifecycle machine over the given stores.
func NewMachine(store domain.TransitionStore, requests domain.RequestRepository, logger *infra.Logger) *Machine {
	return &Machine{
		store:    store,
		requests: requests,
		logger:   logger,
		now:      time.Now,
	}
}

// Start moves a pending request into production.
func (m *Machine) Start(ctx context.Context, requestID int64) (*Result, error) {
	return m.apply(ctx, requestID, ActionStart)
}

// SubmitForReview pauses the clock and hands the work over for acceptance.
func (m *Machine) SubmitForReview(ctx context.Context, requestID int64) (*Result, error) {
	return m.apply(ctx, requestID, ActionSubmitForReview)
}

// RequestRevision sends reviewed work back for changes; the clock resumes.
func (m *Machine) RequestRevision(ctx context.Context, requestID int64) (*Result, error) {
	return m.apply(ctx, requestID, ActionRequestRevision)
}

// Complete accepts reviewed work and closes the request.
func (m *Machine) Complete(ctx context.Context, requestID int64) (*Result, error) {
	return m.apply(ctx, requestID, ActionComplete)
}

// Cancel forces any non-completed request into the terminal completed state
// with an explanatory note. No audit row is written.
func (m *Machine) Cancel(ctx context.Context, requestID int64, reason string) (*Result, error) {
	req, err := m.requests.Cancel(ctx, requestID, reason)
	if err != nil {
		return nil, err
	}
	m.logger.Info().Int64("request_id", requestID).Str("reason", reason).Msg("lifecycle: request cancelled")
	return &Result{Status: req.Status}, nil
}

func (m *Machine) apply(ctx context.Context, requestID int64, action Action) (*Result, error) {
	rule, ok := transitions[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidTransition, action)
	}
	req, last, err := m.store.GetForTransition(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !statusIn(req.Status, rule.validFrom) {
		return nil, fmt.Errorf("%w: cannot %s from %s", domain.ErrInvalidTransition, action, req.Status)
	}

	now := m.now()
	accumulated := 0.0
	if action != ActionStart {
		accumulated = AccumulatedHours(last, now)
	}
	if err := m.store.ApplyTransition(ctx, requestID, rule.next, rule.audit, accumulated, now); err != nil {
		return nil, err
	}
	m.logger.Info().
		Int64("request_id", requestID).
		Str("action", string(action)).
		Str("status", string(rule.next)).
		Float64("accumulated_hours", accumulated).
		Msg("lifecycle: transition applied")
	return &Result{Status: rule.next, AccumulatedHours: accumulated}, nil
}

// AccumulatedHours computes the cumulative billable hours as of now. If the
// most recent audit row opened an interval (start or resume), the elapsed
// time since that row is billed on top of its stored value; otherwise the
// stored value carries over unchanged. The result never decreases across a
// request's audit trail.
func AccumulatedHours(last *domain.TimeLogEntry, now time.Time) float64 {
	if last == nil {
		return 0
	}
	if last.Action == domain.AuditStart || last.Action == domain.AuditResume {
		elapsed := now.Sub(last.Timestamp).Hours()
		if elapsed < 0 {
			elapsed = 0
		}
		return last.AccumulatedHours + elapsed
	}
	return last.AccumulatedHours
}

func statusIn(status domain.Status, set []domain.Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
