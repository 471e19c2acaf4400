package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/livethread/internal/session"
	"github.com/fragmede/livethread/internal/ui/commentview"
	"github.com/fragmede/livethread/internal/ui/menu"
)

// Split is how the screen is divided between panes.
type Split int

const (
	SplitNone Split = iota
	// SplitHorizontal stacks the panes top and bottom.
	SplitHorizontal
	// SplitVertical puts the panes side by side.
	SplitVertical
)

// pane is one independent selection shell and comment view. Each pane
// that shows comments owns its own session and fetch loop.
type pane struct {
	id       int
	view     ViewType
	menu     menu.Model
	comments commentview.Model
	session  *session.Session
	width    int
	height   int
}

func (p *pane) setSize(w, h int) {
	p.width, p.height = w, h
	p.menu.SetSize(w, max(h-1, 1))
	if p.view == ViewComments {
		p.comments.SetSize(w, h)
	}
}

func (p *pane) typing() bool {
	if p.view == ViewComments {
		return p.comments.FilterFocused()
	}
	return p.menu.Typing()
}

func (p *pane) title() string {
	if p.view == ViewComments && p.session != nil {
		return p.session.Thread.Title
	}
	return "Select thread"
}

// paneMsg carries a message produced by a pane's command back to that
// pane.
type paneMsg struct {
	pane int
	msg  tea.Msg
}

// tag routes whatever cmd produces back to pane id.
func tag(id int, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		return wrap(id, cmd())
	}
}

func wrap(id int, msg tea.Msg) tea.Msg {
	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		out := make(tea.BatchMsg, 0, len(msg))
		for _, c := range msg {
			out = append(out, tag(id, c))
		}
		return out
	case tea.QuitMsg, paneMsg:
		return msg
	}
	// The program acts on these itself.
	if msg == tea.ClearScreen() {
		return msg
	}
	return paneMsg{pane: id, msg: msg}
}
