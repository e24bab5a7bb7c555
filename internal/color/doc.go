// Package color holds the semantic palette shared by the terminal output
// and the interactive prompts of embed.
//
// Colors are lipgloss adaptive colors, so the same palette reads well on
// dark and light terminals. Initialize forces one of the two themes; when
// it is never called lipgloss detects the background on its own.
//
// Respected environment variables:
//   - NO_COLOR: Disable all color output
//   - EMBED_THEME: Force "dark" or "light"
package color
