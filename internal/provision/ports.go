package provision

import (
	"context"
	"fmt"
)

// TextPrompt describes a free-text question.
type TextPrompt struct {
	Message     string
	Placeholder string
	// Default is returned when the user submits an empty answer.
	Default string
	// Secret masks the input.
	Secret bool
	// Validate runs on submit; a non-nil error keeps the prompt open.
	Validate func(string) error
}

// Choice is one option of a selection.
type Choice struct {
	Label string
	Value string
	Hint  string
}

// Prompter collects answers at interactive decision points. Every method
// returns ErrCancelled when the user abandons the question.
type Prompter interface {
	Text(ctx context.Context, p TextPrompt) (string, error)
	Select(ctx context.Context, message string, choices []Choice) (string, error)
	Confirm(ctx context.Context, message string, initial bool) (bool, error)
}

// Activity is a long-running step shown to the user, e.g. as a spinner.
type Activity interface {
	Done(message string)
	Fail(message string)
}

// Reporter renders progress and guidance. It never influences control flow.
type Reporter interface {
	Heading(title string)
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Note(title, body string)
	Start(message string) Activity
}

// Discard is a Reporter that renders nothing.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Heading(string)         {}
func (discard) Info(string, ...any)    {}
func (discard) Success(string, ...any) {}
func (discard) Warn(string, ...any)    {}
func (discard) Note(string, string)    {}
func (discard) Start(string) Activity  { return discardActivity{} }

type discardActivity struct{}

func (discardActivity) Done(string) {}
func (discardActivity) Fail(string) {}

// noPrompter answers nothing. It backs orchestrators built for
// non-interactive use, such as the MCP server.
type noPrompter struct{}

func (noPrompter) Text(context.Context, TextPrompt) (string, error) {
	return "", ErrNotInteractive
}

func (noPrompter) Select(_ context.Context, message string, _ []Choice) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrNotInteractive, message)
}

func (noPrompter) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	return false, fmt.Errorf("%w: %s", ErrNotInteractive, message)
}
