package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"designdesk/internal/domain"
	"designdesk/internal/lifecycle"
)

type transitionResponse struct {
	RequestID        int64   `json:"request_id"`
	Status           string  `json:"status"`
	AccumulatedHours float64 `json:"accumulated_hours"`
}

// TaskStart moves a pending request into production.
func (a *App) TaskStart(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.Machine.Start)
}

// TaskSubmitReview pauses the clock and submits work for acceptance.
func (a *App) TaskSubmitReview(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.Machine.SubmitForReview)
}

// TaskRequestRevision sends reviewed work back; the clock resumes.
func (a *App) TaskRequestRevision(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.Machine.RequestRevision)
}

// TaskComplete accepts reviewed work and closes the request.
func (a *App) TaskComplete(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.Machine.Complete)
}

type cancelBody struct {
	Reason string `json:"reason,omitempty"`
}

// TaskCancel forces a non-completed request into the terminal state.
func (a *App) TaskCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := a.requestIDParam(w, r)
	if !ok {
		return
	}
	var body cancelBody
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Reason == "" {
		body.Reason = "cancelled via api"
	}

	result, err := a.Machine.Cancel(r.Context(), id, body.Reason)
	if err != nil {
		a.transitionError(w, id, err)
		return
	}
	a.json(w, http.StatusOK, transitionResponse{RequestID: id, Status: string(result.Status)})
}

func (a *App) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (*lifecycle.Result, error)) {
	id, ok := a.requestIDParam(w, r)
	if !ok {
		return
	}
	result, err := op(r.Context(), id)
	if err != nil {
		a.transitionError(w, id, err)
		return
	}
	a.json(w, http.StatusOK, transitionResponse{
		RequestID:        id,
		Status:           string(result.Status),
		AccumulatedHours: result.AccumulatedHours,
	})
}

func (a *App) transitionError(w http.ResponseWriter, id int64, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "request not found")
	case errors.Is(err, domain.ErrAlreadyCompleted):
		a.error(w, http.StatusConflict, "already_completed", "request is already completed")
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		a.Logger.Error().Err(err).Int64("request_id", id).Msg("tasks: transition failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to apply transition")
	}
}
