package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hession/gsearch/internal/llm"
	"github.com/hession/gsearch/internal/websearch"
)

type fakeGenerator struct {
	calls    int
	lastReq  llm.Request
	response *llm.Response
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func web(title, uri string) llm.GroundingChunk {
	return llm.GroundingChunk{Web: &llm.WebRef{Title: title, URI: uri}}
}

func TestPerformSearch_GeneralScenario(t *testing.T) {
	gen := &fakeGenerator{response: &llm.Response{
		Text: "**Paris** is the capital of France.",
		Chunks: []llm.GroundingChunk{
			web("Paris - Wikipedia", "https://en.wikipedia.org/wiki/Paris"),
			web("Paris (duplicate)", "https://en.wikipedia.org/wiki/Paris"),
		},
	}}
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	o := New("test-key", WithGenerator(gen), WithClock(func() time.Time { return fixed }))

	result, err := o.PerformSearch(context.Background(), "capital of France", FocusGeneral)
	if err != nil {
		t.Fatalf("PerformSearch failed: %v", err)
	}

	if gen.calls != 1 {
		t.Errorf("Expected exactly 1 generation call, got %d", gen.calls)
	}
	if gen.lastReq.Model != "gemini-3-flash-preview" {
		t.Errorf("Expected flash model, got %s", gen.lastReq.Model)
	}
	if gen.lastReq.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", gen.lastReq.Temperature)
	}
	if !gen.lastReq.GoogleSearch {
		t.Error("Google Search grounding must be enabled")
	}
	if gen.lastReq.Prompt != "capital of France" {
		t.Errorf("Expected raw query as prompt, got %q", gen.lastReq.Prompt)
	}
	if !strings.Contains(gen.lastReq.SystemInstruction, "Persona: You are a Helpful Generalist.") {
		t.Errorf("System instruction missing persona:\n%s", gen.lastReq.SystemInstruction)
	}

	if len(result.Sources) != 1 {
		t.Fatalf("Expected 1 deduplicated source, got %d: %v", len(result.Sources), result.Sources)
	}
	if result.Sources[0].Title != "Paris - Wikipedia" {
		t.Errorf("First occurrence should win, got %q", result.Sources[0].Title)
	}
	if result.Answer != "**Paris** is the capital of France." {
		t.Errorf("Unexpected answer %q", result.Answer)
	}
	if result.Query != "capital of France" || result.Focus != FocusGeneral {
		t.Errorf("Unexpected query/focus %q/%q", result.Query, result.Focus)
	}
	if !result.Timestamp.Equal(fixed) {
		t.Errorf("Expected timestamp %v, got %v", fixed, result.Timestamp)
	}
	if result.ID == "" {
		t.Error("Result should have an ID")
	}
}

func TestPerformSearch_MissingCredential(t *testing.T) {
	gen := &fakeGenerator{response: &llm.Response{Text: "x"}}
	factoryCalls := 0
	o := New("  ", WithGeneratorFactory(func(context.Context, string) (Generator, error) {
		factoryCalls++
		return gen, nil
	}))

	result, err := o.PerformSearch(context.Background(), "test", FocusGeneral)
	if result != nil {
		t.Error("No result expected on configuration error")
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if cfgErr.Error() != "API Key is not configured." {
		t.Errorf("Unexpected message %q", cfgErr.Error())
	}
	if gen.calls != 0 || factoryCalls != 0 {
		t.Errorf("No client or network activity expected, got factory=%d generate=%d", factoryCalls, gen.calls)
	}
}

func TestPerformSearch_MissingText(t *testing.T) {
	gen := &fakeGenerator{response: &llm.Response{Text: ""}}
	o := New("test-key", WithGenerator(gen))

	result, err := o.PerformSearch(context.Background(), "obscure", FocusNews)
	if err != nil {
		t.Fatalf("Missing text must not be an error: %v", err)
	}
	if result.Answer != NoResultsAnswer {
		t.Errorf("Expected placeholder answer, got %q", result.Answer)
	}
	if result.Sources == nil || len(result.Sources) != 0 {
		t.Errorf("Expected empty, non-nil sources, got %v", result.Sources)
	}
}

func TestPerformSearch_NilResponse(t *testing.T) {
	o := New("test-key", WithGenerator(&fakeGenerator{}))

	result, err := o.PerformSearch(context.Background(), "q", FocusGeneral)
	if err != nil {
		t.Fatalf("PerformSearch failed: %v", err)
	}
	if result.Answer != NoResultsAnswer || len(result.Sources) != 0 {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestPerformSearch_SourceFiltering(t *testing.T) {
	gen := &fakeGenerator{response: &llm.Response{
		Text: "answer",
		Chunks: []llm.GroundingChunk{
			{},
			web("", "https://untitled.example"),
			web("No URI", ""),
			web("B", "https://b.example"),
			web("Untitled again", "https://untitled.example"),
		},
	}}
	o := New("test-key", WithGenerator(gen))

	result, err := o.PerformSearch(context.Background(), "q", FocusGeneral)
	if err != nil {
		t.Fatalf("PerformSearch failed: %v", err)
	}

	want := []websearch.Source{
		{Title: websearch.FallbackTitle, URI: "https://untitled.example"},
		{Title: "B", URI: "https://b.example"},
	}
	if len(result.Sources) != len(want) {
		t.Fatalf("Expected %d sources, got %v", len(want), result.Sources)
	}
	for i := range want {
		if result.Sources[i] != want[i] {
			t.Errorf("Sources[%d] = %v, want %v", i, result.Sources[i], want[i])
		}
	}
}

func TestPerformSearch_TransportError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	gen := &fakeGenerator{err: cause}
	o := New("test-key", WithGenerator(gen))

	result, err := o.PerformSearch(context.Background(), "q", FocusTechnical)
	if result != nil {
		t.Error("No partial result expected on failure")
	}

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("TransportError should unwrap to the cause")
	}
	if UserMessage(err) != GenericFailureMessage {
		t.Errorf("Unexpected user message %q", UserMessage(err))
	}
}

func TestPerformSearch_FactoryError(t *testing.T) {
	o := New("test-key", WithGeneratorFactory(func(context.Context, string) (Generator, error) {
		return nil, errors.New("bad client")
	}))

	if _, err := o.PerformSearch(context.Background(), "q", FocusGeneral); err == nil {
		t.Fatal("Expected factory error to propagate")
	}
}

func TestPerformSearch_GeneratorBuiltOnce(t *testing.T) {
	gen := &fakeGenerator{response: &llm.Response{Text: "a"}}
	factoryCalls := 0
	var gotKey string
	o := New("secret", WithGeneratorFactory(func(_ context.Context, key string) (Generator, error) {
		factoryCalls++
		gotKey = key
		return gen, nil
	}))

	for i := 0; i < 3; i++ {
		if _, err := o.PerformSearch(context.Background(), "q", FocusGeneral); err != nil {
			t.Fatalf("PerformSearch failed: %v", err)
		}
	}
	if factoryCalls != 1 {
		t.Errorf("Expected factory to run once, got %d", factoryCalls)
	}
	if gotKey != "secret" {
		t.Errorf("Factory should receive the API key, got %q", gotKey)
	}
	if gen.calls != 3 {
		t.Errorf("Expected one generation call per search, got %d", gen.calls)
	}
}

func TestPerformSearch_StrategyPerFocus(t *testing.T) {
	tests := []struct {
		focus   Focus
		model   string
		persona string
	}{
		{FocusGeneral, "gemini-3-flash-preview", "Helpful Generalist"},
		{FocusNews, "gemini-3-flash-preview", "Real-time News Anchor"},
		{FocusAcademic, "gemini-3-pro-preview", "Research Scientist"},
		{FocusTechnical, "gemini-3-pro-preview", "Senior Software Architect"},
		{Focus("Astrology"), "gemini-3-flash-preview", "Helpful Generalist"},
	}

	for _, tt := range tests {
		t.Run(string(tt.focus), func(t *testing.T) {
			gen := &fakeGenerator{response: &llm.Response{Text: "a"}}
			o := New("k", WithGenerator(gen))

			result, err := o.PerformSearch(context.Background(), "q", tt.focus)
			if err != nil {
				t.Fatalf("PerformSearch failed: %v", err)
			}
			if gen.lastReq.Model != tt.model {
				t.Errorf("Expected model %s, got %s", tt.model, gen.lastReq.Model)
			}
			if !strings.Contains(gen.lastReq.SystemInstruction, tt.persona) {
				t.Errorf("Expected persona %s in instruction", tt.persona)
			}
			if !result.Focus.Valid() {
				t.Errorf("Result focus should be a valid mode, got %q", result.Focus)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	gen := &fakeGenerator{response: &llm.Response{Text: "a"}}
	o := New("k",
		WithGenerator(gen),
		WithTemperature(0.7),
		WithGuidelines([]string{"Answer in haiku."}),
	)

	if _, err := o.PerformSearch(context.Background(), "q", FocusGeneral); err != nil {
		t.Fatalf("PerformSearch failed: %v", err)
	}
	if gen.lastReq.Temperature != float32(0.7) {
		t.Errorf("Expected temperature 0.7, got %v", gen.lastReq.Temperature)
	}
	if !strings.Contains(gen.lastReq.SystemInstruction, "1. Answer in haiku.") {
		t.Errorf("Custom guideline missing:\n%s", gen.lastReq.SystemInstruction)
	}
	if strings.Contains(gen.lastReq.SystemInstruction, "Google Search tool") {
		t.Error("Default guidelines should be replaced")
	}

	// an empty list keeps the defaults
	o = New("k", WithGenerator(gen), WithGuidelines(nil))
	if _, err := o.PerformSearch(context.Background(), "q", FocusGeneral); err != nil {
		t.Fatalf("PerformSearch failed: %v", err)
	}
	if !strings.Contains(gen.lastReq.SystemInstruction, "1. ALWAYS use the Google Search tool for grounding.") {
		t.Errorf("Default guidelines expected:\n%s", gen.lastReq.SystemInstruction)
	}
}
