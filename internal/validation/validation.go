// Package validation holds the pure, synchronous checks run on user input
// before anything is sent to the API.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Error describes why an input was rejected.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// MinAPIKeyLength is the shortest key accepted before asking the API.
const MinAPIKeyLength = 10

// APIKey rejects keys that are empty or obviously too short.
func APIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return invalid("apiKey", "API key is required")
	}
	if len(key) < MinAPIKeyLength {
		return invalid("apiKey", "Invalid API key format")
	}
	return nil
}

var environmentNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// EnvironmentName accepts letters, digits, hyphens and underscores only.
func EnvironmentName(name string) error {
	if name == "" {
		return invalid("name", "Environment name is required")
	}
	if !environmentNamePattern.MatchString(name) {
		return invalid("name", "Environment name can only contain letters, numbers, hyphens, and underscores")
	}
	return nil
}

// DataSourceName rejects blank data source names in environment mappings.
func DataSourceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("dataSource", "Data source name is required")
	}
	return nil
}

// Required returns a validation error for field when value is blank.
// Prompts use it as their per-keystroke validator.
func Required(field string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return invalid(field, "%s is required", field)
		}
		return nil
	}
}
