// Package menu is the thread selection shell: the configured menu, the
// thread list a search produces, recent threads and the URL prompt.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/livethread/internal/cache"
	"github.com/fragmede/livethread/internal/config"
	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/ui/messages"
)

// Finder looks threads up remotely.
type Finder interface {
	FindThreads(ctx context.Context, q domain.ThreadQuery) ([]domain.ThreadRef, error)
	ResolveThreadFromURL(ctx context.Context, raw string) (domain.ThreadRef, error)
}

// Cache holds search results and the recently opened threads.
type Cache interface {
	GetThreadList(ctx context.Context, key string, ttl time.Duration) ([]domain.ThreadRef, bool, error)
	PutThreadList(ctx context.Context, key string, threads []domain.ThreadRef) error
	RecentThreads(ctx context.Context, limit int) ([]domain.ThreadRef, error)
}

// Mode is the screen the shell shows.
type Mode int

const (
	ModeMenu Mode = iota
	ModeThreads
	ModeURL
)

const recentTitle = "Recent threads"

// Model is the selection shell.
type Model struct {
	ctx     context.Context
	finder  Finder
	cache   Cache
	ttl     time.Duration
	log     *slog.Logger
	mode    Mode
	menu    list.Model
	threads list.Model
	url     textinput.Model
	spinner spinner.Model
	loading bool
	status  string
	isError bool
	width   int
	height  int
}

// New creates the shell over the configured menu.
func New(ctx context.Context, m config.Menu, finder Finder, db Cache, cfg config.Config, log *slog.Logger) Model {
	items := make([]list.Item, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, Entry{MenuItem: it})
	}

	ml := list.New(items, Delegate{}, 0, 0)
	ml.Title = "Live Threads"
	ml.SetShowStatusBar(false)
	ml.SetShowHelp(false)
	ml.SetFilteringEnabled(true)

	tl := list.New(nil, Delegate{}, 0, 0)
	tl.SetShowStatusBar(true)
	tl.SetShowHelp(false)
	tl.SetFilteringEnabled(true)

	// Quitting is the app's decision.
	for _, l := range []*list.Model{&ml, &tl} {
		l.KeyMap.Quit.SetEnabled(false)
		l.KeyMap.ForceQuit.SetEnabled(false)
	}

	ti := textinput.New()
	ti.Placeholder = "https://www.reddit.com/r/soccer/comments/abc123/..."
	ti.Prompt = "URL: "
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	if log == nil {
		log = slog.Default()
	}

	return Model{
		ctx:     ctx,
		finder:  finder,
		cache:   db,
		ttl:     cfg.ThreadListTTL,
		log:     log,
		menu:    ml,
		threads: tl,
		url:     ti,
		spinner: sp,
	}
}

// SetSize updates the dimensions. Two rows are kept for the status line.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.menu.SetSize(w, max(h-2, 1))
	m.threads.SetSize(w, max(h-2, 1))
	m.url.Width = max(w-len(m.url.Prompt)-2, 1)
}

// Mode returns the current screen.
func (m Model) Mode() Mode {
	return m.mode
}

// Typing reports whether keys are going to a text box.
func (m Model) Typing() bool {
	return m.mode == ModeURL ||
		m.menu.FilterState() == list.Filtering ||
		m.threads.FilterState() == list.Filtering
}

// AtRoot reports whether the menu is showing unfiltered and idle, where
// a back key has nothing left to undo.
func (m Model) AtRoot() bool {
	return m.mode == ModeMenu && !m.loading && m.menu.FilterState() == list.Unfiltered
}

// Status returns the status line text.
func (m Model) Status() (string, bool) {
	return m.status, m.isError
}

// ShowMenu switches to the menu.
func (m *Model) ShowMenu() {
	m.mode = ModeMenu
	m.url.Blur()
	m.loading = false
}

// ShowThreads switches back to the last thread list, or the menu when
// there is none.
func (m *Model) ShowThreads() {
	if len(m.threads.Items()) == 0 {
		m.ShowMenu()
		return
	}
	m.mode = ModeThreads
}

// SetStatus sets the status line.
func (m *Model) SetStatus(text string, isError bool) {
	m.status = text
	m.isError = isError
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.SelectItemMsg:
		return m, m.selectItem(msg.Item)

	case messages.ResolveURLMsg:
		return m, m.startResolve(msg.URL)

	case messages.ThreadsLoadedMsg:
		if !m.loading {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.SetStatus(fmt.Sprintf("Error loading %s: %v", msg.Item.Title, msg.Err), true)
			m.ShowMenu()
			return m, nil
		}
		if len(msg.Threads) == 0 {
			m.SetStatus("no threads found for "+msg.Item.Title, false)
			m.ShowMenu()
			return m, nil
		}
		title := msg.Item.Title
		if msg.FromCache {
			title += " (cached)"
		}
		m.showThreads(title, msg.Threads)
		return m, nil

	case messages.RecentLoadedMsg:
		if !m.loading {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.SetStatus("Error loading recent threads: "+msg.Err.Error(), true)
			m.ShowMenu()
			return m, nil
		}
		if len(msg.Threads) == 0 {
			m.SetStatus("no recent threads", false)
			m.ShowMenu()
			return m, nil
		}
		m.showThreads(recentTitle, msg.Threads)
		return m, nil

	case messages.ThreadResolvedMsg:
		if !m.loading {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			var nf *domain.NotFoundError
			if errors.As(msg.Err, &nf) {
				m.SetStatus("Thread not found: "+msg.Input, true)
			} else {
				m.SetStatus("Error opening thread: "+msg.Err.Error(), true)
			}
			m.ShowMenu()
			return m, nil
		}
		m.SetStatus("", false)
		thread := msg.Thread
		return m, func() tea.Msg { return messages.OpenThreadMsg{Thread: thread} }

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.loading {
			if msg.String() == "esc" {
				m.ShowMenu()
				m.SetStatus("", false)
			}
			return m, nil
		}
		switch m.mode {
		case ModeURL:
			return m.urlKey(msg)
		case ModeThreads:
			if cmd, ok := m.threadsKey(msg); ok {
				return m, cmd
			}
		default:
			if cmd, ok := m.menuKey(msg); ok {
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeThreads:
		m.threads, cmd = m.threads.Update(msg)
	case ModeURL:
		m.url, cmd = m.url.Update(msg)
	default:
		m.menu, cmd = m.menu.Update(msg)
	}
	return m, cmd
}

func (m *Model) menuKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.menu.FilterState() == list.Filtering {
		return nil, false
	}
	if msg.String() != "enter" {
		return nil, false
	}
	entry, ok := m.menu.SelectedItem().(Entry)
	if !ok {
		return nil, true
	}
	return m.selectItem(entry.MenuItem), true
}

func (m *Model) threadsKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.threads.FilterState() == list.Filtering {
		return nil, false
	}
	switch msg.String() {
	case "enter":
		entry, ok := m.threads.SelectedItem().(ThreadEntry)
		if !ok {
			return nil, true
		}
		thread := entry.ThreadRef
		return func() tea.Msg { return messages.OpenThreadMsg{Thread: thread} }, true
	case "esc", "backspace":
		if m.threads.FilterState() == list.FilterApplied {
			return nil, false
		}
		m.ShowMenu()
		return nil, true
	}
	return nil, false
}

func (m Model) urlKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.url.Reset()
		m.ShowMenu()
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.url.Value())
		if raw == "" {
			return m, nil
		}
		m.url.Reset()
		return m, m.startResolve(raw)
	}

	var cmd tea.Cmd
	m.url, cmd = m.url.Update(msg)
	return m, cmd
}

func (m *Model) selectItem(item config.MenuItem) tea.Cmd {
	switch item.Type {
	case config.TypeURLInput:
		m.mode = ModeURL
		m.SetStatus("", false)
		return m.url.Focus()
	case config.TypeRecent:
		m.startLoading("Loading recent threads...")
		return tea.Batch(m.spinner.Tick, m.loadRecent())
	default:
		m.startLoading("Searching " + item.Title + "...")
		return tea.Batch(m.spinner.Tick, m.loadThreads(item))
	}
}

func (m *Model) startResolve(raw string) tea.Cmd {
	m.url.Blur()
	m.startLoading("Opening " + raw + "...")
	return tea.Batch(m.spinner.Tick, m.resolve(raw))
}

func (m *Model) startLoading(text string) {
	m.loading = true
	m.SetStatus(text, false)
}

func (m *Model) showThreads(title string, threads []domain.ThreadRef) {
	items := make([]list.Item, 0, len(threads))
	for _, t := range threads {
		items = append(items, ThreadEntry{ThreadRef: t})
	}
	m.threads.ResetFilter()
	m.threads.SetItems(items)
	m.threads.Select(0)
	m.threads.Title = title
	m.mode = ModeThreads
	m.SetStatus("", false)
}

// loadThreads serves a search from the cache while it is fresh and
// falls back to a stale list when the search fails.
func (m Model) loadThreads(item config.MenuItem) tea.Cmd {
	ctx, finder, db, ttl, log := m.ctx, m.finder, m.cache, m.ttl, m.log
	q := item.Query()
	return func() tea.Msg {
		key := q.Key()
		cached, fresh, err := db.GetThreadList(ctx, key, ttl)
		if err != nil {
			log.Warn("reading thread cache", "key", key, "error", err)
		}
		if fresh && len(cached) > 0 {
			return messages.ThreadsLoadedMsg{Item: item, Threads: cached, FromCache: true}
		}

		threads, err := finder.FindThreads(ctx, q)
		if err != nil {
			if len(cached) > 0 {
				log.Warn("thread search failed, using stale list", "key", key, "error", err)
				return messages.ThreadsLoadedMsg{Item: item, Threads: cached, FromCache: true}
			}
			return messages.ThreadsLoadedMsg{Item: item, Err: err}
		}
		if len(threads) > 0 {
			if err := db.PutThreadList(ctx, key, threads); err != nil {
				log.Warn("writing thread cache", "key", key, "error", err)
			}
		}
		return messages.ThreadsLoadedMsg{Item: item, Threads: threads}
	}
}

func (m Model) loadRecent() tea.Cmd {
	ctx, db := m.ctx, m.cache
	return func() tea.Msg {
		threads, err := db.RecentThreads(ctx, cache.RecentLimit)
		return messages.RecentLoadedMsg{Threads: threads, Err: err}
	}
}

func (m Model) resolve(raw string) tea.Cmd {
	ctx, finder := m.ctx, m.finder
	return func() tea.Msg {
		thread, err := finder.ResolveThreadFromURL(ctx, raw)
		return messages.ThreadResolvedMsg{Input: raw, Thread: thread, Err: err}
	}
}

// View renders the current screen with the status line below it.
func (m Model) View() string {
	var body string
	switch m.mode {
	case ModeThreads:
		body = m.threads.View()
	case ModeURL:
		body = lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("Open thread by URL"),
			"",
			m.url.View(),
		)
		body = lipgloss.NewStyle().Height(max(m.height-2, 1)).Render(body)
	default:
		body = m.menu.View()
	}

	status := m.status
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	style := infoStyle
	if m.isError {
		style = errorStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", style.Render(status))
}
