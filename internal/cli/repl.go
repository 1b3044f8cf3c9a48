package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/hession/gsearch/internal/logger"
	"github.com/hession/gsearch/internal/render"
	"github.com/hession/gsearch/internal/search"
	"github.com/hession/gsearch/internal/session"
)

const Version = "0.1.0"

var commandSuggestions = []prompt.Suggest{
	{Text: "/focus", Description: "Show or change the focus mode"},
	{Text: "/history", Description: "List recent searches (/history clear to empty)"},
	{Text: "/replay", Description: "Re-run a recent search by number"},
	{Text: "/copy", Description: "Copy the current answer to the clipboard"},
	{Text: "/help", Description: "Show help"},
	{Text: "/exit", Description: "Exit program"},
}

// Shell is the interactive search prompt
type Shell struct {
	ctx      context.Context
	ctrl     *session.Controller
	renderer *render.TerminalRenderer
	copier   *render.Copier
	out      io.Writer
	quit     bool
}

// NewShell creates a shell writing to out
func NewShell(ctx context.Context, ctrl *session.Controller, renderer *render.TerminalRenderer, copier *render.Copier, out io.Writer) *Shell {
	return &Shell{
		ctx:      ctx,
		ctrl:     ctrl,
		renderer: renderer,
		copier:   copier,
		out:      out,
	}
}

// Run starts the prompt loop; it returns on /exit or Ctrl+D
func (s *Shell) Run() {
	s.printWelcome()

	p := prompt.New(
		func(line string) {
			if !s.Execute(line) {
				s.quit = true
			}
		},
		s.Complete,
		prompt.OptionTitle("gsearch"),
		prompt.OptionLivePrefix(s.livePrefix),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionHistory(reverse(s.ctrl.Recent())),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool {
			return s.quit
		}),
	)
	p.Run()
	fmt.Fprintln(s.out, s.renderer.Hint("Goodbye!"))
}

func (s *Shell) livePrefix() (string, bool) {
	return fmt.Sprintf("[%s] > ", s.ctrl.Focus().Alias()), true
}

func (s *Shell) printWelcome() {
	fmt.Fprintf(s.out, "\ngsearch v%s - grounded answers from the web\n", Version)
	fmt.Fprintln(s.out, s.renderer.Hint("Type a question to search, /help for commands, /exit to quit"))
	fmt.Fprintln(s.out)
}

// Execute handles one input line; it returns false when the shell should exit
func (s *Shell) Execute(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}

	if strings.HasPrefix(strings.TrimSpace(line), "/") {
		return s.handleCommand(strings.TrimSpace(line))
	}

	s.runSearch(func() (*search.Result, error) {
		return s.ctrl.Submit(s.ctx, line)
	})
	return true
}

func (s *Shell) runSearch(do func() (*search.Result, error)) {
	fmt.Fprintln(s.out, s.renderer.Hint("Searching..."))

	result, err := do()
	if err != nil {
		fmt.Fprintln(s.out, s.renderer.Error(errorMessage(err)))
		return
	}
	fmt.Fprintln(s.out, s.renderer.Result(result))
}

// errorMessage returns what the user sees for a failed submit
func errorMessage(err error) string {
	if errors.Is(err, session.ErrEmptyQuery) || errors.Is(err, session.ErrBusy) {
		return err.Error()
	}
	return search.UserMessage(err)
}

// handleCommand handles built-in commands, returns true to continue loop, false to exit
func (s *Shell) handleCommand(cmd string) bool {
	parts := strings.Fields(cmd)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help":
		s.printHelp()

	case "/exit", "/quit", "/q":
		return false

	case "/focus":
		s.handleFocus(args)

	case "/history":
		if len(args) > 0 && args[0] == "clear" {
			if err := s.ctrl.ClearHistory(); err != nil {
				logger.Error("Failed to clear history: %v", err)
				fmt.Fprintln(s.out, s.renderer.Error("failed to clear history"))
			} else {
				fmt.Fprintln(s.out, "History cleared")
			}
			return true
		}
		s.printHistory()

	case "/replay":
		s.handleReplay(args)

	case "/copy":
		s.handleCopy()

	default:
		fmt.Fprintf(s.out, "Unknown command: %s\n", cmd)
		fmt.Fprintln(s.out, "Type /help for available commands")
	}
	return true
}

func (s *Shell) handleFocus(args []string) {
	if len(args) == 0 {
		current := s.ctrl.Focus()
		fmt.Fprintf(s.out, "Current focus: %s\n", current)
		for _, f := range search.Focuses {
			marker := "  "
			if f == current {
				marker = "* "
			}
			fmt.Fprintf(s.out, "%s%-10s %s\n", marker, f.Alias(), f)
		}
		return
	}

	focus, err := search.ParseFocus(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintln(s.out, s.renderer.Error(err.Error()))
		return
	}
	s.ctrl.SelectFocus(focus)
	fmt.Fprintf(s.out, "Focus set to %s\n", focus)
}

func (s *Shell) printHistory() {
	recent := s.ctrl.Recent()
	if len(recent) == 0 {
		fmt.Fprintln(s.out, "No recent searches")
		return
	}
	for i, q := range recent {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, q)
	}
}

func (s *Shell) handleReplay(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: /replay <number>")
		return
	}

	recent := s.ctrl.Recent()
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(recent) {
		fmt.Fprintf(s.out, "No recent search #%s\n", args[0])
		return
	}

	query := recent[n-1]
	s.runSearch(func() (*search.Result, error) {
		return s.ctrl.Replay(s.ctx, query)
	})
}

func (s *Shell) handleCopy() {
	result := s.ctrl.Snapshot().Result
	if result == nil {
		fmt.Fprintln(s.out, "Nothing to copy")
		return
	}

	// failures are only logged
	if s.copier.Copy(result.Answer) {
		fmt.Fprintln(s.out, "Copied")
	}
}

// Complete suggests commands, focus modes, replay numbers and recent queries
func (s *Shell) Complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	word := d.GetWordBeforeCursor()

	switch {
	case strings.HasPrefix(text, "/focus "):
		suggestions := make([]prompt.Suggest, 0, len(search.Focuses))
		for _, f := range search.Focuses {
			suggestions = append(suggestions, prompt.Suggest{Text: f.Alias(), Description: string(f)})
		}
		return prompt.FilterHasPrefix(suggestions, word, true)

	case strings.HasPrefix(text, "/replay "):
		recent := s.ctrl.Recent()
		suggestions := make([]prompt.Suggest, 0, len(recent))
		for i, q := range recent {
			suggestions = append(suggestions, prompt.Suggest{Text: strconv.Itoa(i + 1), Description: q})
		}
		return prompt.FilterHasPrefix(suggestions, word, false)

	case strings.HasPrefix(text, "/history "):
		return prompt.FilterHasPrefix([]prompt.Suggest{{Text: "clear", Description: "Clear recent searches"}}, word, true)

	case strings.HasPrefix(text, "/"):
		if strings.Contains(text, " ") {
			return nil
		}
		return prompt.FilterHasPrefix(commandSuggestions, word, true)

	case text == "" || strings.Contains(text, " "):
		// a suggestion only replaces the word before the cursor
		return nil

	default:
		recent := s.ctrl.Recent()
		suggestions := make([]prompt.Suggest, 0, len(recent))
		for _, q := range recent {
			suggestions = append(suggestions, prompt.Suggest{Text: q, Description: "recent"})
		}
		return prompt.FilterHasPrefix(suggestions, word, true)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintf(s.out, `
gsearch Help

Type any question to search the web with the selected focus.

Built-in Commands:
  /focus [mode]    - Show or change focus (general, news, academic, technical)
  /history         - List recent searches
  /history clear   - Clear recent searches
  /replay <n>      - Re-run recent search n with the General focus
  /copy            - Copy the current answer to the clipboard
  /help            - Show this help message
  /exit            - Exit program

`)
}

// reverse returns items oldest first, the order prompt history expects
func reverse(items []string) []string {
	out := make([]string, len(items))
	for i, q := range items {
		out[len(items)-1-i] = q
	}
	return out
}
