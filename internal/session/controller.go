package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hession/gsearch/internal/history"
	"github.com/hession/gsearch/internal/logger"
	"github.com/hession/gsearch/internal/search"
)

var (
	// ErrEmptyQuery is returned for a blank query; nothing is sent
	ErrEmptyQuery = errors.New("query is empty")

	// ErrBusy is returned while another search is in flight
	ErrBusy = errors.New("a search is already in progress")
)

// State search lifecycle state
type State int

const (
	Idle State = iota
	InFlight
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Searcher runs one search
type Searcher interface {
	PerformSearch(ctx context.Context, query string, focus search.Focus) (*search.Result, error)
}

// Snapshot is a point-in-time copy of the controller state
type Snapshot struct {
	State        State          `json:"state"`
	Focus        search.Focus   `json:"focus"`
	Query        string         `json:"query"`
	Result       *search.Result `json:"result,omitempty"`
	ErrorMessage string         `json:"error,omitempty"`
	Recent       []string       `json:"recent"`
}

// Busy reports whether a search is in flight
func (s Snapshot) Busy() bool {
	return s.State == InFlight
}

// Controller holds the query, focus, current result and recent list. It
// is shared by the web handlers and the interactive prompt.
type Controller struct {
	searcher Searcher

	mu     sync.Mutex
	recent *history.Recent
	state  State
	focus  search.Focus
	query  string
	result *search.Result
	errMsg string
	token  uint64
}

// NewController creates a controller with the General focus selected
func NewController(searcher Searcher, recent *history.Recent) *Controller {
	return &Controller{
		searcher: searcher,
		recent:   recent,
		state:    Idle,
		focus:    search.FocusGeneral,
	}
}

// SelectFocus changes the focus used by later submits
func (c *Controller) SelectFocus(focus search.Focus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = focus
}

// Focus returns the selected focus
func (c *Controller) Focus() search.Focus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// Submit searches for query with the selected focus
func (c *Controller) Submit(ctx context.Context, query string) (*search.Result, error) {
	return c.run(ctx, query, func(selected search.Focus) search.Focus {
		return selected
	})
}

// SubmitWithFocus selects focus and submits in one step, so concurrent
// callers cannot interleave a focus change between the two.
func (c *Controller) SubmitWithFocus(ctx context.Context, query string, focus search.Focus) (*search.Result, error) {
	return c.run(ctx, query, func(search.Focus) search.Focus {
		c.focus = focus
		return focus
	})
}

// Replay re-runs a recent query with the General focus. The selected
// focus is left unchanged.
func (c *Controller) Replay(ctx context.Context, query string) (*search.Result, error) {
	return c.run(ctx, query, func(search.Focus) search.Focus {
		return search.FocusGeneral
	})
}

// run accepts the query, resolves the focus under the lock via pick and
// performs the search outside the lock
func (c *Controller) run(ctx context.Context, query string, pick func(selected search.Focus) search.Focus) (*search.Result, error) {
	token, focus, err := c.begin(query, pick)
	if err != nil {
		return nil, err
	}

	result, err := c.searcher.PerformSearch(ctx, query, focus)

	c.mu.Lock()
	defer c.mu.Unlock()

	// begin rejects overlapping submits, so a newer token only appears if
	// that check is ever relaxed
	if token != c.token {
		logger.Debug("Discarding stale search completion for token %d", token)
		return result, err
	}

	if err != nil {
		c.state = Failed
		c.result = nil
		c.errMsg = search.UserMessage(err)
		return nil, err
	}

	c.state = Succeeded
	c.result = result
	c.errMsg = ""
	if err := c.recent.Add(query); err != nil {
		logger.Warn("Failed to persist search history: %v", err)
	}
	return result, nil
}

// begin performs the empty and busy checks and the InFlight transition
// under one lock
func (c *Controller) begin(query string, pick func(search.Focus) search.Focus) (uint64, search.Focus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return 0, "", ErrEmptyQuery
	}
	if c.state == InFlight {
		return 0, "", ErrBusy
	}

	focus := pick(c.focus)
	c.token++
	c.state = InFlight
	c.query = query
	c.errMsg = ""
	return c.token, focus, nil
}

// ClearHistory empties the recent list
func (c *Controller) ClearHistory() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recent.Clear()
}

// Recent returns the recent queries, most recent first
func (c *Controller) Recent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recent.Items()
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:        c.state,
		Focus:        c.focus,
		Query:        c.query,
		Result:       c.result,
		ErrorMessage: c.errMsg,
		Recent:       c.recent.Items(),
	}
}
