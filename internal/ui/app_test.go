package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/livethread/internal/api"
	"github.com/fragmede/livethread/internal/config"
	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/ui/messages"
)

const emptyThread = `[{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"t1","title":"Live"}}]}},` +
	`{"kind":"Listing","data":{"children":[]}}]`

type fakeRemote struct{}

func (fakeRemote) FetchCommentListing(context.Context, domain.ThreadRef) (api.RawListing, error) {
	return api.RawListing(emptyThread), nil
}

func (fakeRemote) FindThreads(context.Context, domain.ThreadQuery) ([]domain.ThreadRef, error) {
	return nil, nil
}

func (fakeRemote) ResolveThreadFromURL(_ context.Context, raw string) (domain.ThreadRef, error) {
	return domain.ThreadRef{}, &domain.NotFoundError{Input: raw}
}

type fakeCache struct {
	mu      sync.Mutex
	touched []domain.ThreadRef
}

func (c *fakeCache) GetThreadList(context.Context, string, time.Duration) ([]domain.ThreadRef, bool, error) {
	return nil, false, nil
}

func (c *fakeCache) PutThreadList(context.Context, string, []domain.ThreadRef) error { return nil }

func (c *fakeCache) RecentThreads(context.Context, int) ([]domain.ThreadRef, error) { return nil, nil }

func (c *fakeCache) TouchRecent(_ context.Context, thread domain.ThreadRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = append(c.touched, thread)
	return nil
}

var thread = domain.ThreadRef{ID: "t1", Title: "Live", Permalink: "/r/x/comments/t1/live/"}

func newApp(t *testing.T) (*App, *fakeCache) {
	t.Helper()
	db := &fakeCache{}
	a := NewApp(context.Background(), config.Default(), fakeRemote{}, db, config.DefaultMenu(), nil)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	t.Cleanup(a.Shutdown)
	return a, db
}

// deliver runs cmd and feeds what it produces back into a until nothing
// is left.
func deliver(a *App, cmd tea.Cmd) {
	queue := run(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if msg == nil || msg == tea.ClearScreen() {
			continue
		}
		_, next := a.Update(msg)
		queue = append(queue, run(next)...)
	}
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := a.Update(msg)
		deliver(a, cmd)
	}
}

// run executes cmd and the commands batched inside it.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestOpenThreadStartsSession(t *testing.T) {
	a, db := newApp(t)

	_, cmd := a.Update(messages.OpenThreadMsg{Thread: thread})
	assert.Equal(t, ViewComments, a.ActiveView())
	require.NotNil(t, a.Session())
	assert.Equal(t, thread, a.Session().Thread)

	run(cmd)
	assert.Equal(t, []domain.ThreadRef{thread}, db.touched)

	a.Shutdown()
	assert.Nil(t, a.Session())
}

func TestBackToMenuClosesSession(t *testing.T) {
	a, _ := newApp(t)
	a.Update(messages.OpenThreadMsg{Thread: thread})
	s := a.Session()

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	msgs := run(cmd)
	require.Contains(t, msgs, tea.Msg(paneMsg{pane: 1, msg: messages.OpenMenuMsg{}}))

	deliver(a, cmd)
	assert.Equal(t, ViewMenu, a.ActiveView())
	assert.Nil(t, a.Session())
	assert.NoError(t, s.Close())
}

func TestOpenAnotherThreadReplacesSession(t *testing.T) {
	a, _ := newApp(t)
	a.Update(messages.OpenThreadMsg{Thread: thread})
	first := a.Session()

	_, cmd := a.Update(messages.OpenThreadMsg{Thread: domain.ThreadRef{ID: "t2", Title: "Other"}})
	run(cmd)
	require.NotNil(t, a.Session())
	assert.NotEqual(t, first.ID, a.Session().ID)
	assert.Equal(t, "t2", a.Session().Thread.ID)
}

func TestStaleSessionMessagesDropped(t *testing.T) {
	a, _ := newApp(t)
	a.Update(messages.OpenThreadMsg{Thread: thread})
	old := a.Session().ID
	_, cmd := a.Update(messages.OpenThreadListMsg{})
	run(cmd)

	_, cmd = a.Update(messages.CommentsMergedMsg{SessionID: old, Added: 3, Total: 3})
	assert.Nil(t, cmd)
	assert.Equal(t, ViewMenu, a.ActiveView())
}

func TestQuitKeys(t *testing.T) {
	a, _ := newApp(t)

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	a.Update(messages.OpenThreadMsg{Thread: thread})
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Equal(t, ViewComments, a.ActiveView())
	assert.Equal(t, "q", a.Session().View().FilterText)

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestInitOpensInitialURL(t *testing.T) {
	a, _ := newApp(t)
	assert.Nil(t, a.Init())

	a.OpenURL("https://www.reddit.com/r/x/comments/t1/")
	cmd := a.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ResolveURLMsg{URL: "https://www.reddit.com/r/x/comments/t1/"}, cmd())
}

func TestMenuViewHasFooter(t *testing.T) {
	a, _ := newApp(t)
	assert.Contains(t, a.View(), "quit")
}

var other = domain.ThreadRef{ID: "t2", Title: "Other"}

func TestSplitNeedsCommentView(t *testing.T) {
	a, _ := newApp(t)

	press(a, "v", "tab")
	assert.Equal(t, SplitNone, a.Split())
	assert.Equal(t, 1, a.Panes())
}

func TestSplitSideBySide(t *testing.T) {
	a, _ := newApp(t)
	a.Update(messages.OpenThreadMsg{Thread: thread})
	first := a.Session()

	press(a, "v")
	assert.Equal(t, SplitVertical, a.Split())
	require.Equal(t, 2, a.Panes())
	assert.Equal(t, 1, a.ActivePane())
	assert.Equal(t, ViewMenu, a.ActiveView())
	assert.Nil(t, a.Session())

	a.Update(messages.OpenThreadMsg{Thread: other})
	second := a.Session()
	require.NotNil(t, second)
	assert.Equal(t, "t2", second.Thread.ID)
	assert.NotEqual(t, first.ID, second.ID)

	press(a, "tab")
	assert.Equal(t, 0, a.ActivePane())
	assert.Same(t, first, a.Session())

	view := a.View()
	plain := ansi.Strip(view)
	assert.Contains(t, plain, "[1] Live")
	assert.Contains(t, plain, "[2] Other")
	assert.Equal(t, 24, lipgloss.Height(view))
	assert.Equal(t, 80, lipgloss.Width(view))

	// Pressing split again does nothing.
	press(a, "h")
	assert.Equal(t, SplitVertical, a.Split())
}

func TestSplitStacked(t *testing.T) {
	a, _ := newApp(t)
	a.Update(messages.OpenThreadMsg{Thread: thread})
	press(a, "h")
	a.Update(messages.OpenThreadMsg{Thread: other})

	view := a.View()
	assert.Equal(t, SplitHorizontal, a.Split())
	assert.Equal(t, 24, lipgloss.Height(view))
	lines := strings.Split(ansi.Strip(view), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "[1] Live"))
	assert.True(t, strings.HasPrefix(lines[12], "[2] Other"))
}

func TestSplitRoutesSessionMessages(t *testing.T) {
	a, _ := newApp(t)
	a.Update(messages.OpenThreadMsg{Thread: thread})
	first := a.Session()
	press(a, "h")
	a.Update(messages.OpenThreadMsg{Thread: other})

	// The update for the inactive pane lands there and nowhere else.
	a.Update(messages.CommentsMergedMsg{SessionID: first.ID, Added: 0, Total: 7, At: time.Now()})
	lines := strings.Split(ansi.Strip(a.View()), "\n")
	top := strings.Join(lines[:12], "\n")
	bottom := strings.Join(lines[12:], "\n")
	assert.Contains(t, top, "Comments: 7")
	assert.NotContains(t, bottom, "Comments: 7")

	// Pane messages for a pane that is gone are dropped.
	_, cmd := a.Update(paneMsg{pane: 99, msg: messages.OpenMenuMsg{}})
	assert.Nil(t, cmd)
	assert.Equal(t, 2, a.Panes())
}

func TestSplitEscClosesPane(t *testing.T) {
	a, _ := newApp(t)
	a.Update(messages.OpenThreadMsg{Thread: thread})
	first := a.Session()
	press(a, "v")
	a.Update(messages.OpenThreadMsg{Thread: other})
	second := a.Session()

	// Back from comments to the pane's menu, then close the pane.
	press(a, "esc")
	assert.Equal(t, ViewMenu, a.ActiveView())
	assert.Equal(t, 2, a.Panes())
	press(a, "esc")

	assert.Equal(t, SplitNone, a.Split())
	assert.Equal(t, 1, a.Panes())
	assert.Equal(t, ViewComments, a.ActiveView())
	assert.Same(t, first, a.Session())
	assert.NoError(t, second.Close())
	assert.NotContains(t, ansi.Strip(a.View()), "[1]")
}

func TestShutdownClosesEveryPane(t *testing.T) {
	a, _ := newApp(t)
	a.Update(messages.OpenThreadMsg{Thread: thread})
	press(a, "v")
	a.Update(messages.OpenThreadMsg{Thread: other})

	a.Shutdown()
	press(a, "tab")
	assert.Nil(t, a.Session())
	press(a, "tab")
	assert.Nil(t, a.Session())
}

func TestWrapKeepsProgramMessages(t *testing.T) {
	t.Parallel()

	assert.Nil(t, wrap(1, nil))
	assert.Equal(t, tea.ClearScreen(), wrap(1, tea.ClearScreen()))
	assert.Equal(t, tea.QuitMsg{}, wrap(1, tea.QuitMsg{}))
	assert.Equal(t, paneMsg{pane: 1, msg: messages.OpenMenuMsg{}}, wrap(1, messages.OpenMenuMsg{}))

	inner := func() tea.Msg { return messages.OpenThreadListMsg{} }
	batch, ok := wrap(2, tea.BatchMsg{inner, nil}).(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)
	assert.Equal(t, paneMsg{pane: 2, msg: messages.OpenThreadListMsg{}}, batch[0]())
	assert.Nil(t, batch[1])
}
