package agent

import (
	"context"
	"strconv"
	"strings"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
	"designdesk/internal/providers/oracle"
)

// cancelKeywords are the negations that abort form filling for the current
// conversation. Matched as substrings of the lowercased user turn.
var cancelKeywords = []string{"取消", "不做了", "算了", "cancel", "never mind", "forget it"}

const defaultMaxGuidance = 3

// Creator is the form-filling engine. It owns no state between calls: the
// caller supplies a ConversationState snapshot and receives it back updated.
// Every stage degrades independently; a turn always produces a reply.
type Creator struct {
	oracle      oracle.Completer
	guidance    domain.GuidanceStore
	logger      *infra.Logger
	maxGuidance int
}

// NewCreator constructs the form-filling engine.
func NewCreator(completer oracle.Completer, guidance domain.GuidanceStore, logger *infra.Logger) *Creator {
	return &Creator{
		oracle:      completer,
		guidance:    guidance,
		logger:      logger,
		maxGuidance: defaultMaxGuidance,
	}
}

// Process runs one conversational turn over the state. The latest user turn
// must already be appended; the composed reply is appended before return.
func (c *Creator) Process(ctx context.Context, locale string, state *domain.ConversationState) *Result {
	userText := state.LastUserText()

	// A cancelled conversation starts fresh on the next non-cancel turn.
	cancelling := isCancelMessage(userText)
	if state.Cancelled && !cancelling {
		state.Cancelled = false
	}

	if cancelling {
		return c.cancel(locale, state)
	}

	c.extractFields(ctx, userText, state)
	c.fetchGuidance(ctx, state)

	state.MissingFields = state.Draft.MissingFields()
	state.Complete = state.Draft.IsComplete()

	reply := c.composeReply(ctx, locale, userText, state)
	state.AppendTurn(domain.RoleAssistant, reply)

	return &Result{
		Reply:         reply,
		Draft:         state.Draft,
		MissingFields: state.MissingFields,
		IsComplete:    state.Complete,
		Guidance:      state.Guidance,
	}
}

func (c *Creator) cancel(locale string, state *domain.ConversationState) *Result {
	state.Cancelled = true
	state.Draft = domain.RequestDraft{}
	state.Guidance = nil
	state.MissingFields = append([]string(nil), domain.RequiredDraftFields...)
	state.Complete = false

	reply := pick(locale, cancelConfirmedZH, cancelConfirmedEN)
	state.AppendTurn(domain.RoleAssistant, reply)
	return &Result{
		Reply:         reply,
		Draft:         state.Draft,
		MissingFields: state.MissingFields,
		IsComplete:    false,
		Guidance:      nil,
	}
}

// extractFields asks the oracle for a flat field map and merges it into the
// draft. Extraction failure is never fatal to the turn; the draft is simply
// left as it was.
func (c *Creator) extractFields(ctx context.Context, userText string, state *domain.ConversationState) {
	if strings.TrimSpace(userText) == "" {
		return
	}
	fields, err := c.oracle.ExtractFields(ctx, oracle.ExtractRequest{
		System:    buildExtractionPrompt(state.Draft),
		UserInput: userText,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("creator: field extraction failed, draft unchanged")
		return
	}
	applyFields(&state.Draft, fields)
}

// applyFields merges extracted values into the draft. Only known field names
// with non-empty values overwrite; absent fields stay untouched, so the
// draft is enriched monotonically and never erased here.
func applyFields(draft *domain.RequestDraft, fields map[string]string) {
	for key, value := range fields {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch key {
		case "title":
			draft.Title = value
		case "category":
			normalized := strings.ToLower(value)
			if domain.IsValidCategory(normalized) {
				draft.Category = normalized
			}
		case "dimensions":
			draft.Dimensions = value
		case "deadline":
			draft.Deadline = value
		case "copy_text":
			draft.CopyText = value
		case "notes":
			draft.Notes = value
		case "reference_assets":
			for _, uri := range strings.Split(value, ",") {
				if uri = strings.TrimSpace(uri); uri != "" {
					draft.ReferenceURIs = append(draft.ReferenceURIs, uri)
				}
			}
		case "assignee_id":
			if id, err := strconv.ParseInt(value, 10, 64); err == nil && id > 0 {
				draft.AssigneeID = &id
			}
		case "estimated_hours":
			if hours, err := strconv.ParseFloat(value, 64); err == nil && hours > 0 {
				draft.EstimatedHours = &hours
			}
		}
	}
}

// fetchGuidance caches category guidance once per conversation. Store
// failures yield an empty list and never propagate.
func (c *Creator) fetchGuidance(ctx context.Context, state *domain.ConversationState) {
	if state.Draft.Category == "" || len(state.Guidance) > 0 {
		return
	}
	snippets, err := c.guidance.Search(ctx, state.Draft.Category, state.Draft.Category, c.maxGuidance)
	if err != nil {
		c.logger.Warn().Err(err).Str("category", state.Draft.Category).Msg("creator: guidance search failed")
		return
	}
	state.Guidance = snippets
}

// composeReply asks the oracle for the next assistant turn. The oracle's
// text is used verbatim; on failure a deterministic reply is synthesized so
// the turn always answers with something.
func (c *Creator) composeReply(ctx context.Context, locale, userText string, state *domain.ConversationState) string {
	lastUser := -1
	for i := len(state.Turns) - 1; i >= 0; i-- {
		if state.Turns[i].Role == domain.RoleUser {
			lastUser = i
			break
		}
	}
	history := make([]oracle.Message, 0, len(state.Turns))
	for i, turn := range state.Turns {
		if i == lastUser {
			continue
		}
		history = append(history, oracle.Message{Role: string(turn.Role), Content: turn.Text})
	}
	reply, err := c.oracle.Complete(ctx, oracle.CompletionRequest{
		System:    buildReplyPrompt(state.Draft, state.Guidance, state.MissingFields),
		History:   history,
		UserInput: userText,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("creator: reply generation failed, synthesizing fallback")
		return fallbackReply(locale, state)
	}
	return reply
}

func fallbackReply(locale string, state *domain.ConversationState) string {
	if state.Complete {
		return pick(locale,
			"需求信息已齐全，可以提交了。",
			"All required details are in place; the request is ready to submit.")
	}
	missing := strings.Join(state.MissingFields, ", ")
	return pick(locale,
		"请补充以下信息："+missing,
		"Could you provide the following details: "+missing)
}

func isCancelMessage(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range cancelKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
