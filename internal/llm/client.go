package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// defaultCallTimeout bounds a single backend call. There is no retry
// or backoff around grading calls; callers decide what a failure
// means.
const defaultCallTimeout = 2 * time.Minute

// Config selects the backend model explicitly at construction time so
// no process-wide model switch exists.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client wraps the Gemini backend behind the one synchronous
// generate(prompt) -> text call the rest of the system consumes.
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewClient creates a Gemini-backed client from the given config.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key not set")
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	// Low temperature keeps grading output deterministic enough to
	// parse reliably.
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)

	return &Client{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() {
	c.client.Close()
}

// Generate sends one prompt to the backend and returns the combined
// text of the response. It satisfies grading.Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("response contained no text parts")
	}
	return b.String(), nil
}
