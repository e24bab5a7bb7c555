package prompt

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"embedctl/internal/color"
	"embedctl/internal/provision"
)

type selectModel struct {
	message string
	choices []provision.Choice
	cursor  int
	done    bool
	quit    bool
}

func newSelectModel(message string, choices []provision.Choice) selectModel {
	return selectModel{message: message, choices: choices}
}

func (m selectModel) cancelled() bool { return m.quit }

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k := key.String(); {
	case isCancelKey(k):
		m.quit = true
		return m, tea.Quit
	case k == "up" || k == "k":
		m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
	case k == "down" || k == "j" || k == "tab":
		m.cursor = (m.cursor + 1) % len(m.choices)
	case k == "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.done {
		return answered(m.message, m.choices[m.cursor].Label)
	}
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(question(m.message) + "\n")
	for i, c := range m.choices {
		line := "  " + c.Label
		if i == m.cursor {
			line = color.AccentStyle.Render(markCursor+" "+c.Label)
		}
		if c.Hint != "" {
			line += " " + color.MutedStyle.Render("("+c.Hint+")")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
