package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"designdesk/internal/agent"
	"designdesk/internal/domain"
	"designdesk/internal/infra"
	"designdesk/internal/lifecycle"
)

// App is the handler container. All collaborators are injected once at
// startup; handlers hold no per-request state.
type App struct {
	Orchestrator *agent.Orchestrator
	Query        *agent.QueryHandler
	Manage       *agent.ManageHandler
	Machine      *lifecycle.Machine
	Requests     domain.RequestRepository
	TimeLogs     domain.TimeLogRepository
	Guidance     domain.GuidanceStore
	Logger       *infra.Logger
}

// NewApp wires the handler container.
func NewApp(
	orchestrator *agent.Orchestrator,
	query *agent.QueryHandler,
	manage *agent.ManageHandler,
	machine *lifecycle.Machine,
	requests domain.RequestRepository,
	timeLogs domain.TimeLogRepository,
	guidance domain.GuidanceStore,
	logger *infra.Logger,
) *App {
	return &App{
		Orchestrator: orchestrator,
		Query:        query,
		Manage:       manage,
		Machine:      machine,
		Requests:     requests,
		TimeLogs:     timeLogs,
		Guidance:     guidance,
		Logger:       logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// requesterID identifies the caller. Authentication is delegated to the
// gateway in front of this service; it forwards the resolved user in a
// header. Absent header means the shared demo account.
func requesterID(r *http.Request) int64 {
	if v := r.Header.Get("X-User-ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 1
}
