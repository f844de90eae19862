package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"designdesk/internal/infra"
)

// Options configures the DashScope Qwen completion client. The service is
// reached through its OpenAI-compatible chat surface.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	MaxRetries     int
}

// Client performs HTTP calls to the DashScope chat completions API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
	maxRetries int
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []Message     `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	ResponseFormat *formatConfig `json:"response_format,omitempty"`
}

type formatConfig struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "qwen-plus"
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
		maxRetries: maxRetries,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Complete returns free text for the given instructions, history and input.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]Message, 0, len(req.History)+2)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, req.History...)
	if input := strings.TrimSpace(req.UserInput); input != "" {
		messages = append(messages, Message{Role: "user", Content: input})
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	return c.chat(ctx, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
}

// Classify returns a typed intent classification for the message.
func (c *Client) Classify(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	user := fmt.Sprintf("用户消息：%s\n\n最近的对话上下文：\n%s", req.Message, coalesce(req.Context, "（无上下文）"))
	text, err := c.chat(ctx, chatRequest{
		Model:          c.model,
		Temperature:    0.3,
		ResponseFormat: &formatConfig{Type: "json_object"},
		Messages: []Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, err
	}
	var out Classification
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return nil, fmt.Errorf("%w: classify payload: %v", ErrMalformedResponse, err)
	}
	out.Intent = strings.ToLower(strings.TrimSpace(out.Intent))
	if out.Intent == "" {
		return nil, fmt.Errorf("%w: empty intent", ErrMalformedResponse)
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return &out, nil
}

// ExtractFields returns the flat field map the model could confidently infer
// from the user input. Values are normalized to strings; empty and null
// values are dropped.
func (c *Client) ExtractFields(ctx context.Context, req ExtractRequest) (map[string]string, error) {
	text, err := c.chat(ctx, chatRequest{
		Model:          c.model,
		Temperature:    0.2,
		ResponseFormat: &formatConfig{Type: "json_object"},
		Messages: []Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.UserInput},
		},
	})
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: field payload: %v", ErrMalformedResponse, err)
	}
	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		if s := stringifyField(value); s != "" {
			fields[strings.TrimSpace(key)] = s
		}
	}
	return fields, nil
}

// chat performs the HTTP call with a bounded retry budget. Transport errors
// and retryable statuses are retried; context cancellation and client
// errors are not.
func (c *Client) chat(ctx context.Context, payload chatRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("oracle: encode request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug().Int("attempt", attempt).Msg("oracle: retrying chat call")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		text, retryable, err := c.chatOnce(ctx, endpoint, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) chatOnce(ctx context.Context, endpoint string, body []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("oracle: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("oracle: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("oracle: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Message != "" {
			return "", retryable, fmt.Errorf("oracle: %s (%s)", detail.Message, detail.Code)
		}
		return "", retryable, fmt.Errorf("oracle: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if decoded.Code != "" {
		return "", false, fmt.Errorf("oracle: %s (%s)", decoded.Message, decoded.Code)
	}
	if len(decoded.Choices) == 0 {
		return "", false, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", false, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}
	return text, false, nil
}

func stringifyField(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", value), "0"), ".")
	case bool:
		if value {
			return "true"
		}
		return ""
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ Completer = (*Client)(nil)
