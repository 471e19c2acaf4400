package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	accent = lipgloss.Color("#FF4500")

	FooterStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#CCCCCC")).
			Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(accent).
			Bold(true)

	paneLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777"))

	activeLabelStyle = lipgloss.NewStyle().
				Foreground(accent).
				Bold(true)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))
)

// footer renders one line of key help.
func footer(bindings []key.Binding, width int) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, FooterKeyStyle.Render(h.Key)+FooterStyle.UnsetPadding().Render(" "+h.Desc))
	}
	return FooterStyle.Width(max(width, 1)).MaxHeight(1).Render(strings.Join(parts, FooterStyle.UnsetPadding().Render("  ")))
}

// fit pads or clips s to exactly w cells by h lines.
func fit(s string, w, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	for i, l := range lines {
		l = ansi.Truncate(l, w, "")
		if pad := w - ansi.StringWidth(l); pad > 0 {
			l += strings.Repeat(" ", pad)
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}
