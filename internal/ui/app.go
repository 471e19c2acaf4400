package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/time/rate"

	"github.com/fragmede/livethread/internal/config"
	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/monitor"
	"github.com/fragmede/livethread/internal/session"
	"github.com/fragmede/livethread/internal/ui/commentview"
	"github.com/fragmede/livethread/internal/ui/menu"
	"github.com/fragmede/livethread/internal/ui/messages"
)

// ViewType identifies what a pane shows.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewComments
)

// Remote is the network side the app needs.
type Remote interface {
	monitor.Fetcher
	menu.Finder
}

// Cache is the local store the app needs.
type Cache interface {
	menu.Cache
	TouchRecent(ctx context.Context, thread domain.ThreadRef) error
}

// App is the root Bubble Tea model. It holds one pane, or two when the
// screen is split.
type App struct {
	panes  []*pane
	active int
	split  Split
	nextID int

	ctx     context.Context
	cfg     config.Config
	menuCfg config.Menu
	remote  Remote
	cache   Cache
	log     *slog.Logger
	// limiter spaces requests across every pane's fetch loop.
	limiter *rate.Limiter

	// notify hands fetch loop messages to the running program.
	notify     monitor.Notify
	initialURL string

	width  int
	height int
}

// NewApp creates the root application model. Sessions run under ctx.
func NewApp(ctx context.Context, cfg config.Config, remote Remote, db Cache, m config.Menu, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	limit := rate.Inf
	if cfg.MinRequestInterval > 0 {
		limit = rate.Every(cfg.MinRequestInterval)
	}
	a := &App{
		ctx:     ctx,
		cfg:     cfg,
		menuCfg: m,
		remote:  remote,
		cache:   db,
		log:     log,
		limiter: rate.NewLimiter(limit, 1),
	}
	a.panes = []*pane{a.newPane()}
	return a
}

func (a *App) newPane() *pane {
	a.nextID++
	return &pane{
		id:   a.nextID,
		view: ViewMenu,
		menu: menu.New(a.ctx, a.menuCfg, a.remote, a.cache, a.cfg, a.log),
	}
}

// SetProgram routes fetch loop messages into p.
func (a *App) SetProgram(p *tea.Program) {
	a.notify = p.Send
}

// OpenURL makes the app open raw as soon as it starts.
func (a *App) OpenURL(raw string) {
	a.initialURL = raw
}

// ActiveView returns what the active pane shows.
func (a *App) ActiveView() ViewType {
	return a.panes[a.active].view
}

// Session returns the session watched by the active pane, if any.
func (a *App) Session() *session.Session {
	return a.panes[a.active].session
}

// Split returns how the screen is divided.
func (a *App) Split() Split {
	return a.split
}

// ActivePane returns the index of the pane receiving keys.
func (a *App) ActivePane() int {
	return a.active
}

// Panes returns the number of panes on screen.
func (a *App) Panes() int {
	return len(a.panes)
}

// Init starts the application.
func (a *App) Init() tea.Cmd {
	if a.initialURL == "" {
		return nil
	}
	raw := a.initialURL
	return func() tea.Msg { return messages.ResolveURLMsg{URL: raw} }
}

// Shutdown stops every watched session. Call it once the program has
// returned, when sends from the fetch loops can no longer block.
func (a *App) Shutdown() {
	for _, p := range a.panes {
		if p.session == nil {
			continue
		}
		if err := p.session.Close(); err != nil {
			a.log.Warn("closing session", "error", err)
		}
		p.session = nil
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, tea.ClearScreen

	case tea.KeyMsg:
		if key.Matches(msg, Keys.ForceQuit) {
			return a, tea.Quit
		}
		if !a.panes[a.active].typing() {
			if cmd, ok := a.key(msg); ok {
				return a, cmd
			}
		}

	case messages.QuitMsg:
		return a, tea.Quit

	case paneMsg:
		p := a.pane(msg.pane)
		if p == nil {
			return a, nil
		}
		return a, a.updatePane(p, msg.msg)

	case messages.CommentsMergedMsg:
		return a, a.toSession(msg.SessionID, msg)
	case messages.FetchFailedMsg:
		return a, a.toSession(msg.SessionID, msg)
	case messages.ParseProblemsMsg:
		return a, a.toSession(msg.SessionID, msg)
	}

	return a, a.updatePane(a.panes[a.active], msg)
}

// key handles the bindings that belong to the app rather than a pane.
func (a *App) key(msg tea.KeyMsg) (tea.Cmd, bool) {
	p := a.panes[a.active]
	switch {
	case key.Matches(msg, Keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, Keys.SplitH), key.Matches(msg, Keys.SplitV):
		if a.split != SplitNone || p.view != ViewComments {
			return nil, false
		}
		dir := SplitHorizontal
		if key.Matches(msg, Keys.SplitV) {
			dir = SplitVertical
		}
		return a.splitScreen(dir), true
	case key.Matches(msg, Keys.Switch):
		if a.split == SplitNone {
			return nil, false
		}
		a.active = (a.active + 1) % len(a.panes)
		return nil, true
	case key.Matches(msg, Keys.Back):
		if a.split == SplitNone || p.view != ViewMenu || !p.menu.AtRoot() {
			return nil, false
		}
		return a.closePane(a.active), true
	}
	return nil, false
}

func (a *App) pane(id int) *pane {
	for _, p := range a.panes {
		if p.id == id {
			return p
		}
	}
	return nil
}

// toSession delivers a fetch loop message to the pane watching that
// session. Late messages from a closed session are dropped.
func (a *App) toSession(id string, msg tea.Msg) tea.Cmd {
	for _, p := range a.panes {
		if p.session != nil && p.session.ID == id {
			return a.updatePane(p, msg)
		}
	}
	return nil
}

func (a *App) updatePane(p *pane, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case messages.OpenThreadMsg:
		return tag(p.id, a.open(p, msg.Thread))

	case messages.OpenMenuMsg:
		cmd := a.leave(p)
		p.menu.ShowMenu()
		return cmd

	case messages.OpenThreadListMsg:
		cmd := a.leave(p)
		p.menu.ShowThreads()
		return cmd

	case messages.StatusMsg:
		p.menu.SetStatus(msg.Text, msg.IsError)
		return nil

	case messages.CommentsMergedMsg, messages.FetchFailedMsg, messages.ParseProblemsMsg:
		if p.view != ViewComments {
			return nil
		}
	}

	var cmd tea.Cmd
	switch p.view {
	case ViewComments:
		p.comments, cmd = p.comments.Update(msg)
	default:
		p.menu, cmd = p.menu.Update(msg)
	}
	return tag(p.id, cmd)
}

// open starts a session for thread and brings up its comment view in p.
func (a *App) open(p *pane, thread domain.ThreadRef) tea.Cmd {
	stop := a.leave(p)

	s := session.New(thread, a.remote, a.notify, session.Options{
		MaxComments: a.cfg.MaxComments,
		Monitor: monitor.Options{
			FetchInterval: a.cfg.FetchInterval,
			Limiter:       a.limiter,
			Logger:        a.log,
		},
	})
	s.Start(a.ctx)
	p.session = s

	p.comments = commentview.New(s, a.cfg, a.log)
	p.view = ViewComments
	p.setSize(p.width, p.height)

	ctx, db, log := a.ctx, a.cache, a.log
	touch := func() tea.Msg {
		if err := db.TouchRecent(ctx, thread); err != nil {
			log.Warn("recording recent thread", "thread", thread.ID, "error", err)
		}
		return nil
	}
	return tea.Batch(stop, p.comments.Init(), touch, tea.ClearScreen)
}

// leave detaches p's session and returns a command that closes it.
// Close waits on a fetch loop that may be blocked sending to this event
// loop, so it never runs inside Update.
func (a *App) leave(p *pane) tea.Cmd {
	p.view = ViewMenu
	s := p.session
	if s == nil {
		return nil
	}
	p.session = nil
	s.ResetView()

	log := a.log
	return func() tea.Msg {
		if err := s.Close(); err != nil {
			log.Warn("closing session", "error", err)
		}
		return nil
	}
}

// splitScreen adds a second pane showing the menu and makes it active.
func (a *App) splitScreen(dir Split) tea.Cmd {
	a.panes = append(a.panes, a.newPane())
	a.split = dir
	a.active = len(a.panes) - 1
	a.resize()
	return tea.ClearScreen
}

// closePane removes pane i and returns to a single pane.
func (a *App) closePane(i int) tea.Cmd {
	stop := a.leave(a.panes[i])
	a.panes = append(a.panes[:i:i], a.panes[i+1:]...)
	a.split = SplitNone
	a.active = 0
	a.resize()
	return tea.Batch(stop, tea.ClearScreen)
}

// resize hands each pane its share of the screen. In split mode every
// pane loses a row to its label, and side by side panes share a divider.
func (a *App) resize() {
	switch a.split {
	case SplitVertical:
		left := max((a.width-1)/2, 1)
		h := max(a.height-1, 1)
		a.panes[0].setSize(left, h)
		a.panes[1].setSize(max(a.width-1-left, 1), h)
	case SplitHorizontal:
		top := max(a.height/2, 2)
		a.panes[0].setSize(a.width, top-1)
		a.panes[1].setSize(a.width, max(a.height-top-1, 1))
	default:
		a.panes[0].setSize(a.width, a.height)
	}
}

// View renders the application.
func (a *App) View() string {
	if a.split == SplitNone {
		return a.paneView(a.panes[0])
	}

	blocks := make([]string, len(a.panes))
	for i, p := range a.panes {
		blocks[i] = lipgloss.JoinVertical(lipgloss.Left,
			a.label(i, p),
			fit(a.paneView(p), p.width, p.height),
		)
	}
	if a.split == SplitVertical {
		divider := dividerStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", max(a.height, 1)), "\n"))
		return lipgloss.JoinHorizontal(lipgloss.Top, blocks[0], divider, blocks[1])
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (a *App) paneView(p *pane) string {
	if p.view == ViewComments {
		return p.comments.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.menu.View(), footer(menuHelp(a.split != SplitNone), p.width))
}

func (a *App) label(i int, p *pane) string {
	text := ansi.Truncate(fmt.Sprintf("[%d] %s", i+1, p.title()), max(p.width, 1), "...")
	if i == a.active {
		return activeLabelStyle.Render(text)
	}
	return paneLabelStyle.Render(text)
}
