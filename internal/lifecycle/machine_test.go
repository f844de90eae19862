package lifecycle

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
)

type fakeStore struct {
	request *domain.Request
	last    *domain.TimeLogEntry
	getErr  error

	applied      bool
	appliedNext  domain.Status
	appliedAudit domain.AuditAction
	appliedHours float64
	applyErr     error
}

func (f *fakeStore) GetForTransition(_ context.Context, _ int64) (*domain.Request, *domain.TimeLogEntry, error) {
	if f.getErr != nil {
		return nil, nil, f.getErr
	}
	return f.request, f.last, nil
}

func (f *fakeStore) ApplyTransition(_ context.Context, _ int64, next domain.Status, action domain.AuditAction, accumulated float64, _ time.Time) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = true
	f.appliedNext = next
	f.appliedAudit = action
	f.appliedHours = accumulated
	return nil
}

type fakeRequests struct {
	domain.RequestRepository
	cancelled *domain.Request
	cancelErr error
	reason    string
}

func (f *fakeRequests) Cancel(_ context.Context, _ int64, reason string) (*domain.Request, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	f.reason = reason
	return f.cancelled, nil
}

func testMachine(store *fakeStore, requests *fakeRequests) *Machine {
	logger := infra.Logger(zerolog.New(io.Discard))
	m := NewMachine(store, requests, &logger)
	return m
}

func TestStartFromPending(t *testing.T) {
	store := &fakeStore{request: &domain.Request{ID: 1, Status: domain.StatusPending}}
	m := testMachine(store, nil)

	res, err := m.Start(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, res.Status)
	require.Equal(t, domain.AuditStart, store.appliedAudit)
	require.Zero(t, store.appliedHours)
}

func TestSubmitForReviewBillsElapsedSinceStart(t *testing.T) {
	startedAt := time.Now().Add(-90 * time.Minute)
	store := &fakeStore{
		request: &domain.Request{ID: 1, Status: domain.StatusInProgress},
		last:    &domain.TimeLogEntry{Action: domain.AuditStart, Timestamp: startedAt, AccumulatedHours: 0},
	}
	m := testMachine(store, nil)

	res, err := m.SubmitForReview(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusUnderReview, res.Status)
	require.Equal(t, domain.AuditPause, store.appliedAudit)
	// Monotone, bounded by true wall time.
	require.GreaterOrEqual(t, res.AccumulatedHours, 1.5)
	require.LessOrEqual(t, res.AccumulatedHours, time.Since(startedAt).Hours())
}

func TestSubmitForReviewFromRevisingCarriesPriorValue(t *testing.T) {
	resumedAt := time.Now().Add(-30 * time.Minute)
	store := &fakeStore{
		request: &domain.Request{ID: 1, Status: domain.StatusRevising},
		last:    &domain.TimeLogEntry{Action: domain.AuditResume, Timestamp: resumedAt, AccumulatedHours: 2.0},
	}
	m := testMachine(store, nil)

	res, err := m.SubmitForReview(context.Background(), 1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.AccumulatedHours, 2.5)
	require.Less(t, res.AccumulatedHours, 2.6)
}

func TestRequestRevisionLeavesHoursUnchanged(t *testing.T) {
	store := &fakeStore{
		request: &domain.Request{ID: 1, Status: domain.StatusUnderReview},
		last:    &domain.TimeLogEntry{Action: domain.AuditPause, Timestamp: time.Now().Add(-48 * time.Hour), AccumulatedHours: 3.25},
	}
	m := testMachine(store, nil)

	res, err := m.RequestRevision(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRevising, res.Status)
	require.Equal(t, domain.AuditResume, store.appliedAudit)
	require.Equal(t, 3.25, res.AccumulatedHours)
}

func TestCompleteCarriesLastPauseValue(t *testing.T) {
	store := &fakeStore{
		request: &domain.Request{ID: 1, Status: domain.StatusUnderReview},
		last:    &domain.TimeLogEntry{Action: domain.AuditPause, Timestamp: time.Now().Add(-time.Hour), AccumulatedHours: 4.5},
	}
	m := testMachine(store, nil)

	res, err := m.Complete(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, res.Status)
	require.Equal(t, domain.AuditComplete, store.appliedAudit)
	require.Equal(t, 4.5, res.AccumulatedHours)
}

func TestInvalidTransitionsLeaveStateUntouched(t *testing.T) {
	cases := []struct {
		name   string
		status domain.Status
		act    func(m *Machine) error
	}{
		{"complete from pending", domain.StatusPending, func(m *Machine) error {
			_, err := m.Complete(context.Background(), 1)
			return err
		}},
		{"start from in_progress", domain.StatusInProgress, func(m *Machine) error {
			_, err := m.Start(context.Background(), 1)
			return err
		}},
		{"revision from revising", domain.StatusRevising, func(m *Machine) error {
			_, err := m.RequestRevision(context.Background(), 1)
			return err
		}},
		{"submit from completed", domain.StatusCompleted, func(m *Machine) error {
			_, err := m.SubmitForReview(context.Background(), 1)
			return err
		}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{request: &domain.Request{ID: 1, Status: tt.status}}
			err := tt.act(testMachine(store, nil))
			require.ErrorIs(t, err, domain.ErrInvalidTransition)
			require.False(t, store.applied, "no mutation on invalid transition")
		})
	}
}

func TestCancelDelegatesToRepository(t *testing.T) {
	requests := &fakeRequests{cancelled: &domain.Request{ID: 5, Status: domain.StatusCompleted}}
	m := testMachine(&fakeStore{}, requests)

	res, err := m.Cancel(context.Background(), 5, "用户取消")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, res.Status)
	require.Equal(t, "用户取消", requests.reason)
}

func TestCancelCompletedRejected(t *testing.T) {
	requests := &fakeRequests{cancelErr: domain.ErrAlreadyCompleted}
	m := testMachine(&fakeStore{}, requests)

	_, err := m.Cancel(context.Background(), 5, "用户取消")
	require.ErrorIs(t, err, domain.ErrAlreadyCompleted)
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("db down")
	store := &fakeStore{getErr: boom}
	m := testMachine(store, nil)

	_, err := m.Start(context.Background(), 1)
	require.ErrorIs(t, err, boom)
}

func TestAccumulatedHoursRule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.Zero(t, AccumulatedHours(nil, now))

	open := &domain.TimeLogEntry{Action: domain.AuditResume, Timestamp: now.Add(-2 * time.Hour), AccumulatedHours: 1.0}
	require.InDelta(t, 3.0, AccumulatedHours(open, now), 1e-9)

	closed := &domain.TimeLogEntry{Action: domain.AuditPause, Timestamp: now.Add(-10 * time.Hour), AccumulatedHours: 6.5}
	require.Equal(t, 6.5, AccumulatedHours(closed, now))

	// Clock skew never produces a negative addition.
	future := &domain.TimeLogEntry{Action: domain.AuditStart, Timestamp: now.Add(time.Minute), AccumulatedHours: 0.5}
	require.Equal(t, 0.5, AccumulatedHours(future, now))
}
