package history

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hession/gsearch/internal/logger"
)

const (
	// StorageKey holds the JSON-encoded recent-query list
	StorageKey = "gemini_search_history"

	// MaxEntries caps the recent-query list
	MaxEntries = 5
)

// Recent is the most-recent-first list of unique past queries, persisted
// in a Storage after every change. Not safe for concurrent use.
type Recent struct {
	store Storage
	items []string
}

// LoadRecent reads the list from store. A missing or unreadable entry
// yields an empty list; the problem is logged, not returned.
func LoadRecent(store Storage) *Recent {
	r := &Recent{store: store, items: []string{}}

	raw, ok, err := store.Get(StorageKey)
	if err != nil {
		logger.Error("Failed to read search history: %v", err)
		return r
	}
	if !ok {
		return r
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Error("Failed to parse history: %v", err)
		return r
	}

	r.items = normalize(items)
	return r
}

// normalize restores the list invariants on data read from storage
func normalize(items []string) []string {
	out := make([]string, 0, MaxEntries)
	seen := make(map[string]bool, len(items))
	for _, q := range items {
		if strings.TrimSpace(q) == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}

// Items returns a copy of the list, most recent first
func (r *Recent) Items() []string {
	out := make([]string, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of stored queries
func (r *Recent) Len() int {
	return len(r.items)
}

// Add moves query to the front, dropping an earlier identical entry and
// anything past MaxEntries, then persists the list.
func (r *Recent) Add(query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	items := make([]string, 0, MaxEntries)
	items = append(items, query)
	for _, q := range r.items {
		if q == query {
			continue
		}
		if len(items) == MaxEntries {
			break
		}
		items = append(items, q)
	}
	r.items = items

	data, err := json.Marshal(r.items)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := r.store.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Clear empties the list and removes the stored entry
func (r *Recent) Clear() error {
	r.items = []string{}
	if err := r.store.Remove(StorageKey); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
