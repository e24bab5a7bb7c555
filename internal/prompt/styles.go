package prompt

import (
	"strings"

	"embedctl/internal/color"
)

const (
	markQuestion = "?"
	markDone     = "✓"
	markCursor   = "❯"
)

func question(message string) string {
	return color.AccentStyle.Render(markQuestion) + " " + message
}

func answered(message, answer string) string {
	return color.SuccessStyle.Render(markDone) + " " + message + " " + color.MutedStyle.Render(answer) + "\n"
}

func mask(s string) string {
	return strings.Repeat("•", len([]rune(s)))
}

func isCancelKey(k string) bool {
	return k == "esc" || k == "ctrl+c"
}
