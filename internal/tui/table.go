package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used across command output.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Muted renders de-emphasized text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Success renders a positive status.
func Success(s string) string {
	return successStyle.Render(s)
}

// Error renders a failure status.
func Error(s string) string {
	return errorStyle.Render(s)
}

// RenderTable renders rows under a styled header with padded columns.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = pad(h, widths[i])
	}
	b.WriteString(headerStyle.Render(strings.TrimRight(strings.Join(headerCells, "  "), " ")))
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for i, cell := range row {
			if i < len(widths) {
				cells = append(cells, pad(cell, widths[i]))
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteString("\n")
	}

	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
