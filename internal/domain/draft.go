package domain

// Required draft fields checked during the completeness stage, in the order
// they are reported back to the caller.
var RequiredDraftFields = []string{"title", "category", "dimensions"}

// RequestDraft is the in-progress request form for one conversation. Every
// field is optional until the completeness check; the draft is enriched
// incrementally across turns and only reset by explicit cancellation.
type RequestDraft struct {
	Title          string   `json:"title,omitempty"`
	Category       string   `json:"category,omitempty"`
	Dimensions     string   `json:"dimensions,omitempty"`
	Deadline       string   `json:"deadline,omitempty"`
	CopyText       string   `json:"copy_text,omitempty"`
	ReferenceURIs  []string `json:"reference_assets,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	AssigneeID     *int64   `json:"assignee_id,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
}

// MissingFields returns the required fields that are still empty, in
// RequiredDraftFields order.
func (d RequestDraft) MissingFields() []string {
	missing := make([]string, 0, len(RequiredDraftFields))
	for _, f := range RequiredDraftFields {
		switch f {
		case "title":
			if d.Title == "" {
				missing = append(missing, f)
			}
		case "category":
			if d.Category == "" {
				missing = append(missing, f)
			}
		case "dimensions":
			if d.Dimensions == "" {
				missing = append(missing, f)
			}
		}
	}
	return missing
}

// IsComplete reports whether all required fields are non-empty. Always
// derived; never stored independently.
func (d RequestDraft) IsComplete() bool {
	return len(d.MissingFields()) == 0
}

// TurnRole identifies the author of a conversation turn.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one exchanged message in a conversation. Turns are append-only
// and kept in conversation order.
type Turn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}

// ConversationState carries everything the form-filling engine needs for a
// single turn. It is owned by exactly one conversation and rehydrated from
// a caller-held snapshot per call; the engine itself keeps no memory.
type ConversationState struct {
	Draft         RequestDraft
	Turns         []Turn
	MissingFields []string
	Complete      bool
	Guidance      []string
	Cancelled     bool
}

// LastUserText returns the text of the most recent user turn, or "".
func (s *ConversationState) LastUserText() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i].Text
		}
	}
	return ""
}

// AppendTurn records a new turn at the end of the conversation.
func (s *ConversationState) AppendTurn(role TurnRole, text string) {
	s.Turns = append(s.Turns, Turn{Role: role, Text: text})
}
