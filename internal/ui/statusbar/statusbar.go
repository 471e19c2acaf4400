package statusbar

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/fragmede/livethread/internal/render"
)

// Height is the rendered height: one line inside a border.
const Height = 3

const ellipsis = "..."

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4500"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00BFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

// flushMsg applies a status message held back by the throttle.
type flushMsg struct{ at time.Time }

type status struct {
	text    string
	isError bool
}

// Model is the bordered status bar above the comment pane.
type Model struct {
	width      int
	title      string
	maxTitle   int
	lastUpdate time.Time
	count      int
	filter     string

	// Status text changes at most once per interval; the latest offer
	// made inside the interval is applied when it elapses.
	interval  time.Duration
	current   status
	changedAt time.Time
	pending   *status
	scheduled bool
}

// New creates a status bar. maxTitle bounds the title in cells.
func New(title string, maxTitle int, interval time.Duration) Model {
	return Model{title: title, maxTitle: maxTitle, interval: interval}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetCount sets the comment count.
func (m *Model) SetCount(n int) {
	m.count = n
}

// SetLastUpdate records the time of the last successful merge.
func (m *Model) SetLastUpdate(t time.Time) {
	m.lastUpdate = t
}

// SetFilter shows the active filter text.
func (m *Model) SetFilter(text string) {
	m.filter = text
}

// Status returns the text currently shown.
func (m Model) Status() (string, bool) {
	return m.current.text, m.current.isError
}

// SetStatus offers a status message. It is shown immediately unless one
// was shown less than an interval ago; then it waits, replacing any
// message already waiting, and the returned command fires when it is due.
func (m *Model) SetStatus(text string, isError bool, now time.Time) tea.Cmd {
	next := status{text: text, isError: isError}
	if next == m.current && m.pending == nil {
		return nil
	}

	elapsed := now.Sub(m.changedAt)
	if m.changedAt.IsZero() || elapsed >= m.interval {
		m.current = next
		m.changedAt = now
		m.pending = nil
		return nil
	}

	m.pending = &next
	if m.scheduled {
		return nil
	}
	m.scheduled = true
	return tea.Tick(m.interval-elapsed, func(t time.Time) tea.Msg {
		return flushMsg{at: t}
	})
}

// Update applies throttled status messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(flushMsg); ok {
		m.scheduled = false
		if m.pending != nil {
			m.current = *m.pending
			m.changedAt = msg.at
			m.pending = nil
		}
	}
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	inner := max(m.width-2, 1)
	sep := sepStyle.Render(" │ ")

	line := titleStyle.Render(TruncateTitle(m.title, m.maxTitle))
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format(render.ClockLayout)
	}
	line += sep + metaStyle.Render("Last update: "+updated)
	line += sep + metaStyle.Render(fmt.Sprintf("Comments: %d", m.count))
	if m.filter != "" {
		line += sep + infoStyle.Render("Filter: "+m.filter)
	}
	if m.current.text != "" {
		style := infoStyle
		if m.current.isError {
			style = errorStyle
		}
		line += sep + style.Render(m.current.text)
	}

	line = ansi.Truncate(line, inner, "")
	return boxStyle.Width(inner).Render(line)
}

// TruncateTitle shortens title to at most maxLen cells, ending in "...".
func TruncateTitle(title string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(title) <= maxLen {
		return title
	}
	return runewidth.Truncate(title, maxLen, ellipsis)
}
