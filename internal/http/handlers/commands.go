package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"designdesk/internal/middleware"
)

type commandRequest struct {
	Message string `json:"message"`
}

type commandResponse struct {
	Reply string `json:"reply"`
}

// Command is the plain-text admin surface over the Query and Manage
// handlers, bypassing intent classification. Messages carrying a mutation
// keyword go to Manage; everything else is answered as a query.
func (a *App) Command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "message is required")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())

	var reply string
	if isManageCommand(req.Message) {
		reply = a.Manage.Handle(r.Context(), locale, req.Message)
	} else {
		reply = a.Query.Handle(r.Context(), locale, requesterID(r), req.Message)
	}
	a.json(w, http.StatusOK, commandResponse{Reply: reply})
}

func isManageCommand(message string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range []string{"取消", "改", "更新", "修改", "cancel", "update", "change"} {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
