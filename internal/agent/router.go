package agent

import (
	"context"

	"designdesk/internal/infra"
	"designdesk/internal/providers/oracle"
)

// Intent is the router's classification of an inbound message.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentQuery  Intent = "query"
	IntentManage Intent = "manage"
	IntentChat   Intent = "chat"
)

// DefaultRoute is where messages go when classification fails or returns an
// unknown label. Routing to the form-filling engine is intentional degraded
// behavior: it keeps the conversation moving instead of rejecting the turn.
const DefaultRoute = IntentCreate

// Router classifies each inbound message and selects the handler to run.
// It has no side effects beyond the single oracle call.
type Router struct {
	oracle oracle.Completer
	logger *infra.Logger
}

// NewRouter constructs a Router backed by the given completion service.
func NewRouter(completer oracle.Completer, logger *infra.Logger) *Router {
	return &Router{oracle: completer, logger: logger}
}

// Route returns the intent for the message given recent conversation
// context. Chat is absorbed by the form-filling engine downstream; the
// router still reports it for observability.
func (r *Router) Route(ctx context.Context, message, recentContext string) Intent {
	result, err := r.oracle.Classify(ctx, oracle.ClassifyRequest{
		System:  classifySystemPrompt,
		Message: message,
		Context: recentContext,
	})
	if err != nil {
		r.logger.Warn().Err(err).Msg("router: classification failed, using default route")
		return DefaultRoute
	}
	intent := Intent(result.Intent)
	switch intent {
	case IntentCreate, IntentQuery, IntentManage, IntentChat:
	default:
		r.logger.Warn().Str("intent", result.Intent).Msg("router: unknown intent label, using default route")
		return DefaultRoute
	}
	r.logger.Debug().
		Str("intent", string(intent)).
		Float64("confidence", result.Confidence).
		Str("reasoning", result.Rationale).
		Msg("router: message classified")
	return intent
}
