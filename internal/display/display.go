// Package display renders completion results for the CLI.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matcha-sh/matcha/internal/match"
)

var (
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	dirStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	prefixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)

// Render formats a completion result for a human.
func Render(result match.Result) string {
	var b strings.Builder

	if result.CommonPrefix != "" {
		b.WriteString(prefixStyle.Render(fmt.Sprintf("common prefix: %s", result.CommonPrefix)))
		b.WriteString("\n")
	}

	width := 0
	for _, c := range result.Candidates {
		if len(c.DisplayText()) > width {
			width = len(c.DisplayText())
		}
	}

	for _, c := range result.Candidates {
		text := fmt.Sprintf("%-*s", width, c.DisplayText())
		b.WriteString(styleFor(c.Type).Render(text))
		if c.Description != "" {
			b.WriteString("  ")
			b.WriteString(descStyle.Render(c.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func styleFor(t match.Type) lipgloss.Style {
	switch t {
	case match.Dir:
		return dirStyle
	case match.Flag:
		return flagStyle
	default:
		return valueStyle
	}
}
