package menu

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	accent = lipgloss.Color("#FF4500")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accent)

	selectedDescStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CCCCCC"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#555555")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00BFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

// entry is what the delegate draws: a menu item or a thread.
type entry interface {
	list.DefaultItem
	Badge() string
}

// Delegate draws two-line entries: a cursor, the title and a badge for
// the subreddit or flair, then the description.
type Delegate struct{}

func (d Delegate) Height() int                             { return 2 }
func (d Delegate) Spacing() int                            { return 1 }
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d Delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(entry)
	if !ok {
		return
	}

	cursor, tStyle, dStyle := "  ", titleStyle, descStyle
	if index == m.Index() {
		cursor, tStyle, dStyle = "> ", selectedTitleStyle, selectedDescStyle
	}

	line := cursorStyle.Render(cursor) + tStyle.Render(item.Title())
	if b := item.Badge(); b != "" {
		line += " " + badgeStyle.Render(b)
	}
	desc := dStyle.Render(item.Description())
	if width := m.Width(); width > 0 {
		line = ansi.Truncate(line, width, "...")
		desc = ansi.Truncate(desc, max(width-2, 1), "...")
	}

	fmt.Fprintf(w, "%s\n  %s", line, desc)
}
