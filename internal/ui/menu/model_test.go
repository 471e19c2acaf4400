package menu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/livethread/internal/config"
	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/ui/messages"
)

type fakeFinder struct {
	mu       sync.Mutex
	threads  []domain.ThreadRef
	err      error
	resolved domain.ThreadRef
	calls    int
}

func (f *fakeFinder) FindThreads(context.Context, domain.ThreadQuery) ([]domain.ThreadRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.threads, f.err
}

func (f *fakeFinder) ResolveThreadFromURL(_ context.Context, raw string) (domain.ThreadRef, error) {
	if f.resolved.ID == "" {
		return domain.ThreadRef{}, &domain.NotFoundError{Input: raw}
	}
	return f.resolved, nil
}

type fakeCache struct {
	mu     sync.Mutex
	lists  map[string][]domain.ThreadRef
	fresh  bool
	recent []domain.ThreadRef
}

func newFakeCache() *fakeCache {
	return &fakeCache{lists: make(map[string][]domain.ThreadRef)}
}

func (c *fakeCache) GetThreadList(_ context.Context, key string, _ time.Duration) ([]domain.ThreadRef, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lists[key]
	return l, ok && c.fresh, nil
}

func (c *fakeCache) PutThreadList(_ context.Context, key string, threads []domain.ThreadRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[key] = threads
	return nil
}

func (c *fakeCache) RecentThreads(context.Context, int) ([]domain.ThreadRef, error) {
	return c.recent, nil
}

var soccer = config.DefaultMenu().Items[0]

func newMenu(f *fakeFinder, c *fakeCache) Model {
	m := New(context.Background(), config.DefaultMenu(), f, c, config.Default(), nil)
	m.SetSize(80, 30)
	return m
}

// collect runs cmd and every command batched inside it, returning the
// messages that are not spinner frames.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	switch msg.(type) {
	case messages.ThreadsLoadedMsg, messages.RecentLoadedMsg, messages.ThreadResolvedMsg, messages.OpenThreadMsg:
		return []tea.Msg{msg}
	}
	return nil
}

func feed(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		m, _ = m.Update(msg)
	}
	return m
}

func TestSearchPopulatesThreadsAndCache(t *testing.T) {
	f := &fakeFinder{threads: []domain.ThreadRef{{ID: "a1", Title: "Match Thread: A vs B"}}}
	c := newFakeCache()
	m := newMenu(f, c)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	text, _ := m.Status()
	assert.Contains(t, text, "Searching")

	m = feed(t, m, cmd)
	assert.Equal(t, ModeThreads, m.Mode())
	assert.Equal(t, 1, f.calls)
	assert.Len(t, c.lists[soccer.Query().Key()], 1)
	assert.Len(t, m.threads.Items(), 1)
}

func TestSearchServedFromFreshCache(t *testing.T) {
	f := &fakeFinder{}
	c := newFakeCache()
	c.fresh = true
	c.lists[soccer.Query().Key()] = []domain.ThreadRef{{ID: "c1", Title: "Cached"}}
	m := newMenu(f, c)

	cmd := m.selectItem(soccer)
	m = feed(t, m, cmd)
	assert.Equal(t, ModeThreads, m.Mode())
	assert.Equal(t, 0, f.calls)
	assert.Equal(t, soccer.Title+" (cached)", m.threads.Title)
}

func TestSearchFailureFallsBackToStaleList(t *testing.T) {
	f := &fakeFinder{err: errors.New("offline")}
	c := newFakeCache()
	c.lists[soccer.Query().Key()] = []domain.ThreadRef{{ID: "old", Title: "Old"}}
	m := newMenu(f, c)

	cmd := m.selectItem(soccer)
	m = feed(t, m, cmd)
	assert.Equal(t, ModeThreads, m.Mode())
	assert.Equal(t, 1, f.calls)
}

func TestSearchFailureWithoutCache(t *testing.T) {
	f := &fakeFinder{err: errors.New("offline")}
	m := newMenu(f, newFakeCache())

	cmd := m.selectItem(soccer)
	m = feed(t, m, cmd)
	assert.Equal(t, ModeMenu, m.Mode())
	text, isErr := m.Status()
	assert.True(t, isErr)
	assert.Contains(t, text, "offline")
}

func TestNoThreadsStaysOnMenu(t *testing.T) {
	m := newMenu(&fakeFinder{}, newFakeCache())

	cmd := m.selectItem(soccer)
	m = feed(t, m, cmd)
	assert.Equal(t, ModeMenu, m.Mode())
	text, isErr := m.Status()
	assert.False(t, isErr)
	assert.Equal(t, "no threads found for "+soccer.Title, text)
}

func TestOpenThreadFromList(t *testing.T) {
	thread := domain.ThreadRef{ID: "a1", Title: "Match Thread"}
	m := newMenu(&fakeFinder{threads: []domain.ThreadRef{thread}}, newFakeCache())
	cmd := m.selectItem(soccer)
	m = feed(t, m, cmd)
	require.Equal(t, ModeThreads, m.Mode())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.OpenThreadMsg{Thread: thread}, cmd())
}

func TestBackFromThreadList(t *testing.T) {
	m := newMenu(&fakeFinder{threads: []domain.ThreadRef{{ID: "a1"}}}, newFakeCache())
	cmd := m.selectItem(soccer)
	m = feed(t, m, cmd)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeMenu, m.Mode())

	m.ShowThreads()
	assert.Equal(t, ModeThreads, m.Mode())
}

func TestShowThreadsWithoutListShowsMenu(t *testing.T) {
	m := newMenu(&fakeFinder{}, newFakeCache())
	m.ShowThreads()
	assert.Equal(t, ModeMenu, m.Mode())
}

func TestRecentThreads(t *testing.T) {
	c := newFakeCache()
	m := newMenu(&fakeFinder{}, c)
	recent := config.MenuItem{Title: "Recent", Type: config.TypeRecent}

	cmd := m.selectItem(recent)
	m = feed(t, m, cmd)
	assert.Equal(t, ModeMenu, m.Mode())
	text, _ := m.Status()
	assert.Equal(t, "no recent threads", text)

	c.recent = []domain.ThreadRef{{ID: "r1", Title: "Earlier"}, {ID: "r2", Title: "Before"}}
	cmd = m.selectItem(recent)
	m = feed(t, m, cmd)
	assert.Equal(t, ModeThreads, m.Mode())
	assert.Equal(t, recentTitle, m.threads.Title)
	assert.Len(t, m.threads.Items(), 2)
}

func TestURLInput(t *testing.T) {
	m := newMenu(&fakeFinder{}, newFakeCache())

	_ = m.selectItem(config.MenuItem{Title: "Enter URL", Type: config.TypeURLInput})
	assert.Equal(t, ModeURL, m.Mode())
	assert.True(t, m.Typing())

	// Enter on an empty box does nothing.
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, ModeURL, m.Mode())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeMenu, m.Mode())
	assert.False(t, m.Typing())
}

func TestResolveNotFoundReturnsToMenu(t *testing.T) {
	m := newMenu(&fakeFinder{}, newFakeCache())

	m, cmd := m.Update(messages.ResolveURLMsg{URL: "https://example.com/nope"})
	m = feed(t, m, cmd)
	assert.Equal(t, ModeMenu, m.Mode())
	text, isErr := m.Status()
	assert.True(t, isErr)
	assert.Equal(t, "Thread not found: https://example.com/nope", text)
}

func TestResolveOpensThread(t *testing.T) {
	thread := domain.ThreadRef{ID: "abc", Title: "Live"}
	m := newMenu(&fakeFinder{resolved: thread}, newFakeCache())

	m, cmd := m.Update(messages.ResolveURLMsg{URL: "/r/x/comments/abc"})
	msgs := collect(cmd)
	require.Len(t, msgs, 1)

	_, cmd = m.Update(msgs[0])
	require.NotNil(t, cmd)
	assert.Equal(t, messages.OpenThreadMsg{Thread: thread}, cmd())
}

func TestLateResultAfterCancelIgnored(t *testing.T) {
	m := newMenu(&fakeFinder{threads: []domain.ThreadRef{{ID: "a1"}}}, newFakeCache())

	cmd := m.selectItem(soccer)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = feed(t, m, cmd)
	assert.Equal(t, ModeMenu, m.Mode())
}

func TestEntries(t *testing.T) {
	t.Parallel()

	e := Entry{MenuItem: config.MenuItem{Title: "NBA", Subreddit: "nba"}}
	assert.Equal(t, "NBA", e.Title())
	assert.Equal(t, "r/nba", e.Description())
	assert.Equal(t, "r/nba", e.Badge())

	e = Entry{MenuItem: config.MenuItem{Title: "F1", Subreddit: "formula1", Flair: config.StringOrSlice{"Race", "Live Thread"}}}
	assert.Equal(t, "Race, Live Thread", e.Description())

	e = Entry{MenuItem: config.MenuItem{Title: "Enter URL", Type: config.TypeURLInput}}
	assert.Equal(t, "url", e.Badge())

	th := ThreadEntry{ThreadRef: domain.ThreadRef{ID: "x1", Category: "NBA"}}
	assert.Equal(t, "[x1]", th.Title())
	assert.Equal(t, "NBA", th.Badge())
	assert.Equal(t, "/comments/x1", th.Description())
}
