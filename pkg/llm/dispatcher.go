// Package llm builds the GEO audit prompt and sends it to an OpenAI-compatible
// chat-completions endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dtnitsch/geo-audit/models"
	openai "github.com/sashabaranov/go-openai"
)

const maxDiagnosticChars = 300

// ErrCredentialMissing is returned when no bearer token was supplied.
var ErrCredentialMissing = errors.New("no API key configured")

// DispatchError is the single failure surfaced for a chat-completion call.
// StatusCode is 0 when no HTTP response was received.
type DispatchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *DispatchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("audit dispatch failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("audit dispatch failed: %s", e.Message)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Options configure a Dispatcher. Zero values fall back to the models defaults.
type Options struct {
	BaseURL   string
	MaxTokens int
	// Temperature nil means models.DefaultTemperature. A pointer to 0 is sent
	// as an explicit zero.
	Temperature     *float32
	IncludeSnippets bool
	HTTPClient      *http.Client
	Logger          *slog.Logger
}

type Dispatcher struct {
	opts   Options
	logger *slog.Logger
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.BaseURL == "" {
		opts.BaseURL = models.DefaultBaseURL(models.ProviderOpenAI)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = models.DefaultMaxTokens
	}
	if opts.Temperature == nil {
		t := float32(models.DefaultTemperature)
		opts.Temperature = &t
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{opts: opts, logger: logger}
}

// statusRecorder remembers the status of the last response so decode
// failures can still report it.
type statusRecorder struct {
	client *http.Client
	status int
}

func (s *statusRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if resp != nil {
		s.status = resp.StatusCode
	}
	return resp, err
}

// Dispatch sends one non-streaming chat completion and returns the first
// choice's content. It never retries.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.AuditRequest) (models.AuditReport, error) {
	if req.Credentials.Empty() {
		return "", ErrCredentialMissing
	}

	recorder := &statusRecorder{client: d.opts.HTTPClient}
	cfg := openai.DefaultConfig(string(req.Credentials))
	cfg.BaseURL = d.opts.BaseURL
	cfg.HTTPClient = recorder
	client := openai.NewClientWithConfig(cfg)

	prompt := BuildPrompt(req, d.opts.IncludeSnippets)
	d.logger.InfoContext(ctx, "Dispatching audit request", "model", req.Model, "pages", len(req.Pages), "prompt_chars", len(prompt))

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   d.opts.MaxTokens,
		Temperature: wireTemperature(*d.opts.Temperature),
		Stream:      false,
	})
	if err != nil {
		derr := toDispatchError(err, recorder.status)
		d.logger.ErrorContext(ctx, "Audit dispatch failed", "status", derr.StatusCode, "error", derr.Message)
		return "", derr
	}

	if len(resp.Choices) == 0 {
		return "", &DispatchError{StatusCode: recorder.status, Message: "response contained no choices"}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &DispatchError{StatusCode: recorder.status, Message: "first choice has empty content"}
	}

	d.logger.InfoContext(ctx, "Audit report received", "status", recorder.status, "report_chars", len(content), "total_tokens", resp.Usage.TotalTokens)
	return models.AuditReport(content), nil
}

// wireTemperature keeps an explicit zero in the request body; go-openai drops
// a literal 0 through omitempty and the provider would apply its own default.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func toDispatchError(err error, lastStatus int) *DispatchError {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError

	derr := &DispatchError{StatusCode: lastStatus, Err: err}
	switch {
	case errors.As(err, &apiErr):
		derr.StatusCode = apiErr.HTTPStatusCode
		derr.Message = apiErr.Message
	case errors.As(err, &reqErr):
		derr.StatusCode = reqErr.HTTPStatusCode
		derr.Message = reqErr.Error()
	default:
		derr.Message = err.Error()
	}
	derr.Message = truncate(derr.Message, maxDiagnosticChars)
	return derr
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
