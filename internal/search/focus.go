package search

import (
	"fmt"
	"strings"
)

// Focus selects the strategy used for a search
type Focus string

const (
	FocusGeneral   Focus = "General"
	FocusNews      Focus = "Latest News"
	FocusAcademic  Focus = "Academic & Research"
	FocusTechnical Focus = "Technical & Coding"
)

// Focuses lists every focus mode in display order
var Focuses = []Focus{FocusGeneral, FocusNews, FocusAcademic, FocusTechnical}

var focusAliases = map[string]Focus{
	"general":   FocusGeneral,
	"news":      FocusNews,
	"academic":  FocusAcademic,
	"research":  FocusAcademic,
	"technical": FocusTechnical,
	"tech":      FocusTechnical,
	"coding":    FocusTechnical,
}

// Alias returns the short name used on the command line
func (f Focus) Alias() string {
	switch f {
	case FocusNews:
		return "news"
	case FocusAcademic:
		return "academic"
	case FocusTechnical:
		return "technical"
	default:
		return "general"
	}
}

// Valid reports whether f is one of the four focus modes
func (f Focus) Valid() bool {
	_, ok := strategies[f]
	return ok
}

// ParseFocus accepts a display label ("Latest News") or an alias ("news"),
// case-insensitively. An empty string means General.
func ParseFocus(s string) (Focus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FocusGeneral, nil
	}
	for _, f := range Focuses {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	if f, ok := focusAliases[strings.ToLower(s)]; ok {
		return f, nil
	}
	return FocusGeneral, fmt.Errorf("unknown focus mode %q (use general, news, academic or technical)", s)
}
