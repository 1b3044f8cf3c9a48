package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	genai "google.golang.org/genai"

	"github.com/hession/gsearch/internal/logger"
)

// Request is one grounded generation call
type Request struct {
	Model             string
	Prompt            string
	SystemInstruction string
	Temperature       float32
	GoogleSearch      bool // attach the Google Search grounding tool
}

// WebRef is the web part of a grounding chunk
type WebRef struct {
	Title string
	URI   string
}

// GroundingChunk is one citation entry from the first candidate.
// Web is nil for chunks that do not reference a web page.
type GroundingChunk struct {
	Web *WebRef
}

// Response is the part of a generation response the search consumes
type Response struct {
	Text   string
	Chunks []GroundingChunk
}

// Options configures a Client
type Options struct {
	APIKey     string
	BaseURL    string        // empty uses the SDK default endpoint
	Timeout    time.Duration // per attempt
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	HTTPClient *http.Client
}

// Client calls the Gemini API through the genai SDK with a per-attempt
// timeout and retries on transient failures.
type Client struct {
	client   *genai.Client
	timeout  time.Duration
	executor failsafe.Executor[*genai.GenerateContentResponse]
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.MaxDelay < opts.BaseDelay {
		opts.MaxDelay = 8 * opts.BaseDelay
	}
	return opts
}

// New creates a Gemini client. It does not contact the service.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini client requires an API key")
	}
	opts = normalizeOptions(opts)

	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google GenAI client: %w", err)
	}

	return &Client{
		client:   client,
		timeout:  opts.Timeout,
		executor: failsafe.With(newRetryPolicy(opts)),
	}, nil
}

func newRetryPolicy(opts Options) retrypolicy.RetryPolicy[*genai.GenerateContentResponse] {
	return retrypolicy.NewBuilder[*genai.GenerateContentResponse]().
		HandleIf(isTransient).
		WithBackoff(opts.BaseDelay, opts.MaxDelay).
		WithMaxRetries(opts.MaxRetries).
		WithJitterFactor(0.1).
		OnRetry(func(e failsafe.ExecutionEvent[*genai.GenerateContentResponse]) {
			logger.Warn("Retrying generation request (attempt %d): %v", e.Attempts(), e.LastError())
		}).
		Build()
}

// isTransient reports whether a failed attempt is worth retrying:
// network errors, attempt timeouts, 429 and 5xx responses.
func isTransient(_ *genai.GenerateContentResponse, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return true
}

// Generate issues one generation request, retried per the client policy
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	cfg := buildGenerationConfig(req)
	contents := genai.Text(req.Prompt)

	resp, err := c.executor.WithContext(ctx).Get(func() (*genai.GenerateContentResponse, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.client.Models.GenerateContent(attemptCtx, req.Model, contents, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("google genai completion failed: %w", err)
	}

	return convertResponse(resp), nil
}

func buildGenerationConfig(req Request) *genai.GenerateContentConfig {
	temp := req.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}

	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	if req.GoogleSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	return cfg
}

func convertResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}

	candidate := resp.Candidates[0]
	out.Text = collectText(candidate.Content)

	if candidate.GroundingMetadata == nil {
		return out
	}
	for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
		if chunk == nil {
			continue
		}
		var gc GroundingChunk
		if chunk.Web != nil {
			gc.Web = &WebRef{Title: chunk.Web.Title, URI: chunk.Web.URI}
		}
		out.Chunks = append(out.Chunks, gc)
	}

	return out
}

// collectText joins the text parts of a candidate, skipping model thoughts
func collectText(content *genai.Content) string {
	if content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
