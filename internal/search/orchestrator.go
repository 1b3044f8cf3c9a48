package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hession/gsearch/internal/config"
	"github.com/hession/gsearch/internal/llm"
	"github.com/hession/gsearch/internal/logger"
	"github.com/hession/gsearch/internal/websearch"
)

const (
	// NoResultsAnswer replaces an answer the service returned without text
	NoResultsAnswer = "No results found."

	// DefaultTemperature keeps sampling close to deterministic
	DefaultTemperature = 0.2

	missingKeyMessage = "API Key is not configured."
)

// Generator performs one grounded generation request
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// GeneratorFactory builds a Generator once a credential is known to exist
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

// GeminiFactory returns a factory producing llm clients with opts; the
// API key passed to the factory overrides opts.APIKey.
func GeminiFactory(opts llm.Options) GeneratorFactory {
	return func(ctx context.Context, apiKey string) (Generator, error) {
		opts.APIKey = apiKey
		return llm.New(ctx, opts)
	}
}

// Result is one completed search. It is never modified after creation.
type Result struct {
	ID        string             `json:"id"`
	Answer    string             `json:"answer"`
	Sources   []websearch.Source `json:"sources"`
	Query     string             `json:"query"`
	Focus     Focus              `json:"focus"`
	Timestamp time.Time          `json:"timestamp"`
}

// Orchestrator turns a query and focus mode into a grounded Result
type Orchestrator struct {
	apiKey       string
	temperature  float32
	guidelines   []string
	newGenerator GeneratorFactory
	now          func() time.Time

	mu        sync.Mutex
	generator Generator
}

// Option orchestrator configuration option
type Option func(*Orchestrator)

// WithTemperature overrides DefaultTemperature
func WithTemperature(t float64) Option {
	return func(o *Orchestrator) {
		o.temperature = float32(t)
	}
}

// WithGuidelines replaces the guideline block of the system instruction
func WithGuidelines(guidelines []string) Option {
	return func(o *Orchestrator) {
		if len(guidelines) > 0 {
			o.guidelines = append([]string(nil), guidelines...)
		}
	}
}

// WithGeneratorFactory sets how the generation client is built
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(o *Orchestrator) {
		o.newGenerator = f
	}
}

// WithGenerator uses g directly. The credential check still applies.
func WithGenerator(g Generator) Option {
	return func(o *Orchestrator) {
		o.newGenerator = func(context.Context, string) (Generator, error) {
			return g, nil
		}
	}
}

// WithClock sets the timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator for the given API key. An empty key is
// accepted here and reported by every PerformSearch call.
func New(apiKey string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		apiKey:       strings.TrimSpace(apiKey),
		temperature:  DefaultTemperature,
		guidelines:   append([]string(nil), config.DefaultGuidelines...),
		newGenerator: GeminiFactory(llm.Options{}),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// generatorFor builds the generator on first use
func (o *Orchestrator) generatorFor(ctx context.Context) (Generator, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generator != nil {
		return o.generator, nil
	}
	g, err := o.newGenerator(ctx, o.apiKey)
	if err != nil {
		return nil, err
	}
	o.generator = g
	return g, nil
}

// PerformSearch issues exactly one generation request for query and returns
// the normalized result. It never returns a partial result with an error.
func (o *Orchestrator) PerformSearch(ctx context.Context, query string, focus Focus) (*Result, error) {
	if o.apiKey == "" {
		return nil, &ConfigurationError{Msg: missingKeyMessage}
	}

	gen, err := o.generatorFor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}

	if !focus.Valid() {
		logger.Warn("Unknown focus %q, using %s", focus, FocusGeneral)
		focus = FocusGeneral
	}
	strategy := StrategyFor(focus)

	logger.Info("Search started: focus=%q model=%s", focus, strategy.Model)
	start := o.now()

	resp, err := gen.Generate(ctx, llm.Request{
		Model:             strategy.Model,
		Prompt:            query,
		SystemInstruction: ComposeSystemInstruction(strategy, o.guidelines),
		Temperature:       o.temperature,
		GoogleSearch:      true,
	})
	if err != nil {
		logger.Error("Search failed: focus=%q: %v", focus, err)
		return nil, &TransportError{Err: err}
	}

	result := &Result{
		ID:        uuid.NewString(),
		Answer:    answerText(resp),
		Sources:   extractSources(resp),
		Query:     query,
		Focus:     focus,
		Timestamp: o.now(),
	}

	logger.Info("Search %s completed in %v with %d sources", result.ID, result.Timestamp.Sub(start), len(result.Sources))
	return result, nil
}

func answerText(resp *llm.Response) string {
	if resp == nil || resp.Text == "" {
		return NoResultsAnswer
	}
	return resp.Text
}

// extractSources keeps web chunks only, in order, one per URI
func extractSources(resp *llm.Response) []websearch.Source {
	if resp == nil {
		return []websearch.Source{}
	}

	sources := make([]websearch.Source, 0, len(resp.Chunks))
	for _, chunk := range resp.Chunks {
		if chunk.Web == nil || strings.TrimSpace(chunk.Web.URI) == "" {
			continue
		}
		sources = append(sources, websearch.NewSource(chunk.Web.Title, chunk.Web.URI))
	}
	return websearch.Dedupe(sources)
}
