package websearch

import (
	"strings"
)

// FallbackTitle labels a cited page the service returned without a title.
const FallbackTitle = "External Reference"

// Source is a web page cited by a grounded answer.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// NewSource builds a Source, substituting FallbackTitle for a blank title.
func NewSource(title, uri string) Source {
	title = strings.TrimSpace(title)
	if title == "" {
		title = FallbackTitle
	}
	return Source{Title: title, URI: uri}
}

// Dedupe drops every source whose URI was already seen, keeping the first
// occurrence and the original order. The input is not modified.
func Dedupe(sources []Source) []Source {
	results := make([]Source, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		if seen[src.URI] {
			continue
		}
		seen[src.URI] = true
		results = append(results, src)
	}
	return results
}
