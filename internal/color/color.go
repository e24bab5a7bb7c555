package color

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette
var (
	Primary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	Success = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}
	Error   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
	Warning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}
	Info    = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#3B82F6"}
	Muted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	Border  = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#404040"}
)

// Styles built on the palette.
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	AccentStyle  = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	HeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginTop(1)
)

// Initialize forces the dark or light variant of the palette.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// Disable strips all color from lipgloss output.
func Disable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// FromEnv applies NO_COLOR and EMBED_THEME.
func FromEnv() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		Disable()
	}
	switch strings.ToLower(os.Getenv("EMBED_THEME")) {
	case "dark":
		Initialize(true)
	case "light":
		Initialize(false)
	}
}
