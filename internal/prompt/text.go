package prompt

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"embedctl/internal/color"
	"embedctl/internal/provision"
)

type textModel struct {
	prompt provision.TextPrompt
	input  textinput.Model
	err    error
	value  string
	done   bool
	quit   bool
}

func newTextModel(p provision.TextPrompt) textModel {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = p.Placeholder
	if p.Secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	in.Focus()
	return textModel{prompt: p, input: in}
}

func (m textModel) cancelled() bool { return m.quit }

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch {
		case isCancelKey(key.String()):
			m.quit = true
			return m, tea.Quit
		case key.Type == tea.KeyEnter:
			v := m.input.Value()
			if v == "" {
				v = m.prompt.Default
			}
			if m.prompt.Validate != nil {
				if err := m.prompt.Validate(v); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.value = v
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.err = nil
	}
	return m, cmd
}

func (m textModel) View() string {
	if m.done {
		shown := m.value
		if m.prompt.Secret {
			shown = mask(shown)
		}
		return answered(m.prompt.Message, shown)
	}
	if m.quit {
		return ""
	}

	s := question(m.prompt.Message) + " " + m.input.View()
	if m.err != nil {
		s += "\n" + color.ErrorStyle.Render("  "+m.err.Error())
	}
	return s + "\n"
}
