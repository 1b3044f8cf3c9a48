package search

import (
	"errors"
)

// GenericFailureMessage is shown to users for transport failures
const GenericFailureMessage = "An unexpected error occurred during search."

// ConfigurationError means a search cannot start, e.g. no API key.
// Its message is safe to show verbatim.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// TransportError wraps a failed call to the generation service
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "search request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage maps a search error to the single message shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.Msg
	}
	return GenericFailureMessage
}
