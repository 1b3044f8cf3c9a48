package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hession/gsearch/internal/logger"
	"github.com/hession/gsearch/internal/search"
	"github.com/hession/gsearch/internal/websearch"
)

// DefaultWidth word-wrap width for rendered answers
const DefaultWidth = 80

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	uriStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

// TerminalRenderer formats search results for a terminal
type TerminalRenderer struct {
	raw bool
	md  *glamour.TermRenderer
}

// NewTerminalRenderer creates a renderer. With raw set the answer is
// printed as returned, without Markdown styling.
func NewTerminalRenderer(width int, raw bool) (*TerminalRenderer, error) {
	r := &TerminalRenderer{raw: raw}
	if raw {
		return r, nil
	}

	if width <= 0 {
		width = DefaultWidth
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	r.md = md
	return r, nil
}

// Answer renders the answer text
func (r *TerminalRenderer) Answer(answer string) string {
	if r.raw || r.md == nil {
		return answer
	}
	out, err := r.md.Render(answer)
	if err != nil {
		logger.Warn("Markdown rendering failed, printing raw answer: %v", err)
		return answer
	}
	return out
}

// Sources renders the numbered source list; empty when there are none
func (r *TerminalRenderer) Sources(sources []websearch.Source) string {
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Sources"))
	sb.WriteString("\n")
	for i, s := range sources {
		sb.WriteString(fmt.Sprintf("%2d. %s\n", i+1, titleStyle.Render(s.Title)))
		sb.WriteString("    " + uriStyle.Render(s.URI) + "\n")
	}
	return sb.String()
}

// Result renders answer and sources together
func (r *TerminalRenderer) Result(res *search.Result) string {
	if res == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(hintStyle.Render(fmt.Sprintf("[%s] %s", res.Focus, res.Query)))
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimRight(r.Answer(res.Answer), "\n"))
	sb.WriteString("\n")
	if sources := r.Sources(res.Sources); sources != "" {
		sb.WriteString("\n")
		sb.WriteString(sources)
	}
	return sb.String()
}

// Error renders a user-facing error message
func (r *TerminalRenderer) Error(msg string) string {
	return errorStyle.Render("Error: " + msg)
}

// Hint renders secondary text such as status lines
func (r *TerminalRenderer) Hint(msg string) string {
	return hintStyle.Render(msg)
}
