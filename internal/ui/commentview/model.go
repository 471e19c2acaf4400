// Package commentview is the live comment pane: it turns key and resize
// events into view state changes and paints the current layout.
package commentview

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/livethread/internal/config"
	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/layout"
	"github.com/fragmede/livethread/internal/session"
	"github.com/fragmede/livethread/internal/ui/messages"
	"github.com/fragmede/livethread/internal/ui/statusbar"
)

// Model is the comment pane for one session.
type Model struct {
	session *session.Session
	status  statusbar.Model
	filter  textinput.Model
	plan    layout.Plan
	opts    layout.Options
	width   int
	height  int
	log     *slog.Logger
	now     func() time.Time
}

// New creates the pane for s.
func New(s *session.Session, cfg config.Config, log *slog.Logger) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "author or text"
	ti.CharLimit = 100

	if log == nil {
		log = slog.Default()
	}

	m := Model{
		session: s,
		status:  statusbar.New(s.Thread.Title, cfg.TitleMaxLen, cfg.StatusInterval),
		filter:  ti,
		opts:    layout.Options{Placeholder: cfg.Placeholder},
		log:     log.With("session", s.ID),
		now:     time.Now,
	}
	m.status.SetCount(s.Store.Len())
	return m
}

// Init sets the initial status text.
func (m *Model) Init() tea.Cmd {
	return m.status.SetStatus("Loading comments...", false, m.now())
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.status.SetSize(w)
	m.filter.Width = max(w-12, 1)
	m.recompute()
}

// SessionID identifies the session this pane shows.
func (m Model) SessionID() string {
	return m.session.ID
}

// FilterFocused reports whether keys go to the filter box.
func (m Model) FilterFocused() bool {
	return m.filter.Focused()
}

// Plan returns the layout last computed.
func (m Model) Plan() layout.Plan {
	return m.plan
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, tea.ClearScreen

	case messages.CommentsMergedMsg:
		if msg.SessionID != m.session.ID {
			return m, nil
		}
		m.merged(msg)
		cmds = append(cmds, m.status.SetStatus("", false, m.now()))

	case messages.FetchFailedMsg:
		if msg.SessionID != m.session.ID {
			return m, nil
		}
		cmds = append(cmds, m.status.SetStatus("Fetch failed: "+describe(msg.Err), true, m.now()))

	case messages.ParseProblemsMsg:
		if msg.SessionID != m.session.ID {
			return m, nil
		}
		text := fmt.Sprintf("Skipped %d malformed comments", msg.Skipped)
		cmds = append(cmds, m.status.SetStatus(text, false, m.now()))

	case tea.KeyMsg:
		var cmd tea.Cmd
		if m.filter.Focused() {
			cmd = m.filterKey(msg)
		} else {
			cmd = m.key(msg)
		}
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.status, cmd = m.status.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// merged recomputes after new comments land. While the operator is
// scrolled up, the comment at the top of the window stays put.
func (m *Model) merged(msg messages.CommentsMergedMsg) {
	m.status.SetCount(msg.Total)
	m.status.SetLastUpdate(msg.At)

	vs := m.session.View()
	id, delta := m.plan.TopAnchor()
	if vs.UserScrolledUp && msg.Added > 0 && id != "" {
		// Re-anchor before the bottom check; eviction can shrink the
		// document below the old offset.
		plan := layout.Compute(m.session.Store.All(), vs, m.width, m.height, m.opts)
		off, ok := plan.AnchorOffset(id, delta)
		if !ok {
			// The anchor was evicted; the oldest retained line is nearest.
			off = 0
		}
		m.session.UpdateView(func(v *layout.ViewState) { v.ScrollOffset = off })
	}
	m.recompute()
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	page := max(m.plan.ContentHeight-1, 1)

	switch {
	case key.Matches(msg, keys.Up):
		m.scrollBy(-1)
	case key.Matches(msg, keys.Down):
		m.scrollBy(1)
	case key.Matches(msg, keys.PageUp):
		m.scrollBy(-page)
	case key.Matches(msg, keys.PageDown):
		m.scrollBy(page)
	case key.Matches(msg, keys.Home):
		m.session.UpdateView(func(v *layout.ViewState) {
			v.UserScrolledUp = true
			v.ScrollOffset = 0
		})
	case key.Matches(msg, keys.End):
		m.session.UpdateView(func(v *layout.ViewState) {
			v.UserScrolledUp = false
			v.ScrollOffset = 0
		})
	case key.Matches(msg, keys.Refresh):
		m.session.Refresh()
		return m.status.SetStatus("Refreshing...", false, m.now())
	case key.Matches(msg, keys.Filter):
		vs := m.session.UpdateView(func(v *layout.ViewState) { v.FilterActive = true })
		m.filter.SetValue(vs.FilterText)
		m.filter.CursorEnd()
		m.recompute()
		return m.filter.Focus()
	case key.Matches(msg, keys.Back):
		if m.session.View().FilterText != "" {
			m.setFilter("")
			return nil
		}
		return func() tea.Msg { return messages.OpenMenuMsg{} }
	case key.Matches(msg, keys.List):
		return func() tea.Msg { return messages.OpenThreadListMsg{} }
	default:
		return nil
	}
	m.recompute()
	return nil
}

func (m *Model) filterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.filter.Reset()
		m.closeFilter("")
		return nil
	case tea.KeyEnter:
		m.closeFilter(m.filter.Value())
		return nil
	}
	if key.Matches(msg, keys.Filter) {
		m.closeFilter(m.filter.Value())
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.setFilter(m.filter.Value())
	return cmd
}

func (m *Model) closeFilter(text string) {
	m.filter.Blur()
	m.session.UpdateView(func(v *layout.ViewState) { v.FilterActive = false })
	m.setFilter(text)
}

// setFilter applies filter text and returns to following the newest
// matching comment.
func (m *Model) setFilter(text string) {
	m.session.UpdateView(func(v *layout.ViewState) {
		v.FilterText = text
		v.UserScrolledUp = false
		v.ScrollOffset = 0
	})
	m.status.SetFilter(text)
	m.recompute()
}

// scrollBy moves the window n lines; negative is toward older comments.
// Leaving auto-follow starts from the bottom of the document, and
// reaching the bottom resumes it.
func (m *Model) scrollBy(n int) {
	maxOffset := m.plan.MaxOffset
	m.session.UpdateView(func(v *layout.ViewState) {
		if !v.UserScrolledUp {
			if n >= 0 {
				return
			}
			v.UserScrolledUp = true
			v.ScrollOffset = maxOffset
		}
		v.ScrollOffset = max(v.ScrollOffset+n, 0)
		if v.ScrollOffset >= maxOffset {
			v.UserScrolledUp = false
			v.ScrollOffset = 0
		}
	})
}

func (m *Model) recompute() {
	vs := m.session.View()
	m.plan = layout.Compute(m.session.Store.All(), vs, m.width, m.height, m.opts)
	if vs.UserScrolledUp && m.plan.AtBottom {
		m.session.UpdateView(func(v *layout.ViewState) {
			v.UserScrolledUp = false
			v.ScrollOffset = 0
		})
	}
}

// View renders the pane.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var prompt string
	if m.session.View().FilterActive {
		prompt = promptStyle.Render("Filter: ") + m.filter.View()
	}

	out, err := Draw(m.plan, m.status.View(), prompt, m.width, m.height)
	if err != nil {
		m.log.Debug("frame clipped", "error", err)
	}
	return out
}

// describe shortens an error for the status bar.
func describe(err error) string {
	var terr *domain.TransportError
	if errors.As(err, &terr) && terr.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d %s", terr.StatusCode, http.StatusText(terr.StatusCode))
	}
	var perr *domain.ParseError
	if errors.As(err, &perr) {
		return "unreadable listing"
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
