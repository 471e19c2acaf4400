package commentview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/livethread/internal/layout"
)

var (
	accent = lipgloss.Color("#FF4500")

	// depthColors cycles through these for reply markers.
	depthColors = []lipgloss.Color{
		"#FF4500", // orange red
		"#00BFFF", // deep sky blue
		"#32CD32", // lime green
		"#FFD700", // gold
		"#FF69B4", // hot pink
		"#9370DB", // medium purple
		"#20B2AA", // light sea green
	}

	authorStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282"))

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282")).
			Italic(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)
)

func styleFor(role layout.Role, depth int) lipgloss.Style {
	switch role {
	case layout.RoleAuthor:
		return authorStyle
	case layout.RoleSeparator:
		return separatorStyle
	case layout.RoleScore:
		return scoreStyle
	case layout.RoleTimestamp:
		return timestampStyle
	case layout.RoleMarker:
		return lipgloss.NewStyle().Foreground(depthColors[depth%len(depthColors)])
	case layout.RoleIndent:
		return lipgloss.NewStyle()
	}
	return bodyStyle
}
