package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"designdesk/internal/domain"
)

type submitRequestBody struct {
	Draft          domain.RequestDraft `json:"draft"`
	ConversationID string              `json:"conversation_id,omitempty"`
}

type requestResponse struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	Dimensions     string   `json:"dimensions"`
	Deadline       string   `json:"deadline,omitempty"`
	CopyText       string   `json:"copy_text,omitempty"`
	ReferenceURIs  []string `json:"reference_assets,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	RequesterID    int64    `json:"requester_id"`
	AssigneeID     *int64   `json:"assignee_id,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Status         string   `json:"status"`
	ConversationID string   `json:"conversation_id,omitempty"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// SubmitRequest commits a completed draft as a durable pending request.
// Incomplete drafts are rejected with the missing field list.
func (a *App) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if missing := body.Draft.MissingFields(); len(missing) > 0 {
		a.json(w, http.StatusUnprocessableEntity, map[string]any{
			"error":          "draft_incomplete",
			"message":        domain.ErrDraftIncomplete.Error(),
			"missing_fields": missing,
		})
		return
	}
	if !domain.IsValidCategory(strings.ToLower(body.Draft.Category)) {
		a.error(w, http.StatusUnprocessableEntity, "bad_category", "unknown category "+body.Draft.Category)
		return
	}

	req := &domain.Request{
		Title:          body.Draft.Title,
		Category:       domain.Category(strings.ToLower(body.Draft.Category)),
		Dimensions:     body.Draft.Dimensions,
		Deadline:       body.Draft.Deadline,
		CopyText:       body.Draft.CopyText,
		ReferenceURIs:  body.Draft.ReferenceURIs,
		Notes:          body.Draft.Notes,
		RequesterID:    requesterID(r),
		AssigneeID:     body.Draft.AssigneeID,
		EstimatedHours: body.Draft.EstimatedHours,
		ConversationID: body.ConversationID,
	}
	created, err := a.Requests.Create(r.Context(), req)
	if err != nil {
		a.Logger.Error().Err(err).Msg("requests: create failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create request")
		return
	}
	a.json(w, http.StatusCreated, toRequestResponse(created))
}

// ListRequests returns the caller's requests, newest first.
func (a *App) ListRequests(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(r.URL.Query().Get("status"))
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	requester := requesterID(r)
	if v := r.URL.Query().Get("requester_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			requester = id
		}
	}
	requests, err := a.Requests.ListByRequester(r.Context(), requester, status, limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("requests: list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list requests")
		return
	}
	out := make([]requestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toRequestResponse(&requests[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"requests": out})
}

// GetRequest returns one request by id.
func (a *App) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := a.requestIDParam(w, r)
	if !ok {
		return
	}
	req, err := a.Requests.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "request not found")
			return
		}
		a.Logger.Error().Err(err).Int64("request_id", id).Msg("requests: get failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load request")
		return
	}
	a.json(w, http.StatusOK, toRequestResponse(req))
}

type timeLogResponse struct {
	Action           string  `json:"action"`
	Timestamp        string  `json:"timestamp"`
	AccumulatedHours float64 `json:"accumulated_hours"`
}

// RequestTimeLogs returns a request's audit trail in insertion order.
func (a *App) RequestTimeLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := a.requestIDParam(w, r)
	if !ok {
		return
	}
	entries, err := a.TimeLogs.ListByRequest(r.Context(), id)
	if err != nil {
		a.Logger.Error().Err(err).Int64("request_id", id).Msg("requests: time logs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load time logs")
		return
	}
	out := make([]timeLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, timeLogResponse{
			Action:           string(e.Action),
			Timestamp:        e.Timestamp.UTC().Format(time.RFC3339),
			AccumulatedHours: e.AccumulatedHours,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"request_id": id, "time_logs": out})
}

func (a *App) requestIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid request id")
		return 0, false
	}
	return id, true
}

func toRequestResponse(req *domain.Request) requestResponse {
	return requestResponse{
		ID:             req.ID,
		Title:          req.Title,
		Category:       string(req.Category),
		Dimensions:     req.Dimensions,
		Deadline:       req.Deadline,
		CopyText:       req.CopyText,
		ReferenceURIs:  req.ReferenceURIs,
		Notes:          req.Notes,
		RequesterID:    req.RequesterID,
		AssigneeID:     req.AssigneeID,
		EstimatedHours: req.EstimatedHours,
		Status:         string(req.Status),
		ConversationID: req.ConversationID,
		CreatedAt:      req.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      req.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
