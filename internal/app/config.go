package app

import (
	"embedctl/internal/ui"
)

// Config holds the per-invocation options taken from global flags.
type Config struct {
	// Debug settings
	Debug bool

	// Output format for list commands
	Output ui.Format

	// Version of the running binary
	Version string
}

// NewConfig creates a new application configuration. An unknown output
// format is an error.
func NewConfig(debug bool, output, version string) (*Config, error) {
	format, err := ui.ParseFormat(output)
	if err != nil {
		return nil, err
	}
	return &Config{
		Debug:   debug,
		Output:  format,
		Version: version,
	}, nil
}
