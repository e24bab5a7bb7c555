package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"embedctl/internal/provision"
	"embedctl/pkg/logging"
)

// Terminal is a provision.Prompter backed by bubbletea.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

var _ provision.Prompter = (*Terminal)(nil)

// New creates a Terminal reading keys from in and drawing to out.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Stdio prompts on the process's standard streams. Questions are drawn on
// stderr so stdout stays clean for piping.
func Stdio() *Terminal {
	return New(os.Stdin, os.Stderr)
}

// Interactive reports whether stdin and stderr are both terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// outcome is implemented by every question model.
type outcome interface {
	tea.Model
	cancelled() bool
}

func (t *Terminal) run(ctx context.Context, m outcome) (tea.Model, error) {
	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, tea.ErrInterrupted) {
			return nil, provision.ErrCancelled
		}
		logging.Debug("Prompt", "prompt program failed: %v", err)
		return nil, err
	}
	if f, ok := final.(outcome); !ok || f.cancelled() {
		return nil, provision.ErrCancelled
	}
	return final, nil
}

// Text asks a free-text question.
func (t *Terminal) Text(ctx context.Context, p provision.TextPrompt) (string, error) {
	final, err := t.run(ctx, newTextModel(p))
	if err != nil {
		return "", err
	}
	return final.(textModel).value, nil
}

// Select asks the user to pick one of choices and returns its Value.
func (t *Terminal) Select(ctx context.Context, message string, choices []provision.Choice) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("nothing to select")
	}
	final, err := t.run(ctx, newSelectModel(message, choices))
	if err != nil {
		return "", err
	}
	m := final.(selectModel)
	return m.choices[m.cursor].Value, nil
}

// Confirm asks a yes/no question starting from initial.
func (t *Terminal) Confirm(ctx context.Context, message string, initial bool) (bool, error) {
	final, err := t.run(ctx, newConfirmModel(message, initial))
	if err != nil {
		return false, err
	}
	return final.(confirmModel).value, nil
}
