package oracle

import (
	"context"
	"errors"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("oracle: api key is required")

// ErrMalformedResponse indicates the service answered but the payload could
// not be normalized into the expected result type.
var ErrMalformedResponse = errors.New("oracle: malformed response")

// Message is one turn of chat history sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest asks for free text given system instructions, prior
// history and the latest user input.
type CompletionRequest struct {
	System      string
	History     []Message
	UserInput   string
	Temperature float64
}

// ClassifyRequest asks for a typed classification of a message.
type ClassifyRequest struct {
	System  string
	Message string
	Context string
}

// Classification is the normalized typed result of a Classify call.
type Classification struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"reasoning"`
}

// ExtractRequest asks for a flat field map inferred from a user message.
type ExtractRequest struct {
	System    string
	UserInput string
}

// Completer is the contract every caller of the completion service depends
// on. The service is a black box that may time out or return malformed
// output; this adapter boundary is the single place that tolerates its
// response variability, normalizing each call kind into one fixed result
// type. Callers translate failures into their own fallback behavior.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Classify(ctx context.Context, req ClassifyRequest) (*Classification, error)
	ExtractFields(ctx context.Context, req ExtractRequest) (map[string]string, error)
}
