package agent

import (
	"context"
	"fmt"
	"strings"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
)

// recentContextTurns bounds how much history is given to the router.
const recentContextTurns = 5

// Result is the uniform envelope every handler produces for one turn.
type Result struct {
	Reply         string              `json:"reply"`
	Draft         domain.RequestDraft `json:"draft"`
	MissingFields []string            `json:"missing_fields"`
	IsComplete    bool                `json:"is_complete"`
	Guidance      []string            `json:"guidance"`
	RoutedTo      Intent              `json:"routed_to"`
}

// Input is one conversational turn to process.
type Input struct {
	Message     string
	RequesterID int64
	Locale      string
	State       *domain.ConversationState
}

// Orchestrator is the façade each transport calls: it routes the message
// and dispatches to the matching handler. All collaborators are injected;
// the orchestrator holds no cross-call state.
type Orchestrator struct {
	router  *Router
	creator *Creator
	query   *QueryHandler
	manage  *ManageHandler
	logger  *infra.Logger
}

// NewOrchestrator wires the router and handlers together.
func NewOrchestrator(router *Router, creator *Creator, query *QueryHandler, manage *ManageHandler, logger *infra.Logger) *Orchestrator {
	return &Orchestrator{
		router:  router,
		creator: creator,
		query:   query,
		manage:  manage,
		logger:  logger,
	}
}

// Process handles one turn: append the user message, route, dispatch, and
// return the uniform result envelope. Chat intent is absorbed by the
// form-filling engine, which is also the fail-open default route.
func (o *Orchestrator) Process(ctx context.Context, in Input) (*Result, error) {
	if in.State == nil {
		in.State = &domain.ConversationState{}
	}
	recentContext := formatRecentContext(in.State, recentContextTurns)
	in.State.AppendTurn(domain.RoleUser, in.Message)

	intent := o.router.Route(ctx, in.Message, recentContext)

	var result *Result
	switch intent {
	case IntentQuery:
		reply := o.query.Handle(ctx, in.Locale, in.RequesterID, in.Message)
		in.State.AppendTurn(domain.RoleAssistant, reply)
		result = &Result{Reply: reply, MissingFields: []string{}, Guidance: []string{}}
	case IntentManage:
		reply := o.manage.Handle(ctx, in.Locale, in.Message)
		in.State.AppendTurn(domain.RoleAssistant, reply)
		result = &Result{Reply: reply, MissingFields: []string{}, Guidance: []string{}}
	default:
		result = o.creator.Process(ctx, in.Locale, in.State)
	}
	result.RoutedTo = intent
	return result, nil
}

func formatRecentContext(state *domain.ConversationState, limit int) string {
	turns := state.Turns
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	sb := &strings.Builder{}
	for _, turn := range turns {
		role := "User"
		if turn.Role == domain.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(sb, "%s: %s\n", role, turn.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}
