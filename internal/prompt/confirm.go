package prompt

import (
	tea "github.com/charmbracelet/bubbletea"

	"embedctl/internal/color"
)

type confirmModel struct {
	message string
	value   bool
	done    bool
	quit    bool
}

func newConfirmModel(message string, initial bool) confirmModel {
	return confirmModel{message: message, value: initial}
}

func (m confirmModel) cancelled() bool { return m.quit }

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k := key.String(); {
	case isCancelKey(k):
		m.quit = true
		return m, tea.Quit
	case k == "y" || k == "Y":
		m.value, m.done = true, true
		return m, tea.Quit
	case k == "n" || k == "N":
		m.value, m.done = false, true
		return m, tea.Quit
	case k == "left" || k == "right" || k == "h" || k == "l" || k == "tab":
		m.value = !m.value
	case k == "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		if m.value {
			return answered(m.message, "Yes")
		}
		return answered(m.message, "No")
	}
	if m.quit {
		return ""
	}

	yes, no := "Yes", "No"
	if m.value {
		yes = color.AccentStyle.Render("[Yes]")
	} else {
		no = color.AccentStyle.Render("[No]")
	}
	return question(m.message) + " " + yes + " / " + no + "\n"
}
