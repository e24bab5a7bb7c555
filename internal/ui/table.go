package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"embedctl/internal/color"
)

// MaxCellWidth bounds every table cell; longer values are truncated.
const MaxCellWidth = 48

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(color.Primary).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Truncate shortens s to width display cells, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	clipped := make([][]string, len(rows))
	for i, row := range rows {
		clipped[i] = make([]string, len(row))
		for j, cell := range row {
			clipped[i][j] = Truncate(cell, MaxCellWidth)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(color.Border)).
		Headers(headers...).
		Rows(clipped...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}
