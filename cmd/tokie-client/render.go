package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chess10kp/tokie/internal/ipc"
)

var (
	labelStyle   = lipgloss.NewStyle().Bold(true)
	visibleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	hiddenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// renderViews formats "label visible|hidden" lines as an aligned table
func renderViews(lines []string) string {
	width := 0
	for _, line := range lines {
		label, _, _ := strings.Cut(line, " ")
		if len(label) > width {
			width = len(label)
		}
	}

	var b strings.Builder
	for _, line := range lines {
		label, state, _ := strings.Cut(line, " ")
		b.WriteString(labelStyle.Width(width + 2).Render(label))
		if state == "visible" {
			b.WriteString(visibleStyle.Render(state))
		} else {
			b.WriteString(hiddenStyle.Render(state))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderReply(reply ipc.Reply) string {
	var b strings.Builder
	if reply.Label != "" {
		b.WriteString(labelStyle.Render(reply.Label))
		b.WriteString(" ")
	}
	b.WriteString(reply.Message)
	b.WriteString("\n")
	for _, line := range reply.Lines {
		b.WriteString(dimStyle.Render("  " + line))
		b.WriteString("\n")
	}
	return b.String()
}
