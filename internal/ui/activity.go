package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"embedctl/internal/color"
	"embedctl/internal/provision"
)

type finishMsg struct {
	ok   bool
	text string
}

// spinnerModel shows a spinner next to message until it receives a
// finishMsg, then renders the outcome and quits.
type spinnerModel struct {
	spinner  spinner.Model
	message  string
	finished bool
	outcome  finishMsg
}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = color.AccentStyle
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case finishMsg:
		m.finished = true
		m.outcome = msg
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if !m.finished {
		return m.spinner.View() + " " + m.message
	}
	return outcomeLine(m.outcome) + "\n"
}

func outcomeLine(f finishMsg) string {
	if f.ok {
		return color.SuccessStyle.Render(withIcon(IconSuccess, f.text))
	}
	return color.ErrorStyle.Render(withIcon(IconError, f.text))
}

// Start begins an activity. On a terminal it animates a spinner; elsewhere
// only the outcome line is printed.
func (p *Printer) Start(message string) provision.Activity {
	if !p.animate {
		return &staticActivity{p: p}
	}

	prog := tea.NewProgram(newSpinnerModel(message),
		tea.WithInput(nil),
		tea.WithOutput(p.out),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = prog.Run()
	}()
	return &spinnerActivity{prog: prog, done: done}
}

type spinnerActivity struct {
	prog *tea.Program
	done chan struct{}
}

func (a *spinnerActivity) finish(ok bool, text string) {
	a.prog.Send(finishMsg{ok: ok, text: text})
	<-a.done
}

func (a *spinnerActivity) Done(message string) { a.finish(true, message) }
func (a *spinnerActivity) Fail(message string) { a.finish(false, message) }

type staticActivity struct {
	p *Printer
}

func (a *staticActivity) Done(message string) {
	a.p.line(a.p.out, outcomeLine(finishMsg{ok: true, text: message}))
}

func (a *staticActivity) Fail(message string) {
	a.p.line(a.p.out, outcomeLine(finishMsg{ok: false, text: message}))
}
