// Package session ties one watched thread to its comment store, view
// state and fetch loop.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/layout"
	"github.com/fragmede/livethread/internal/monitor"
	"github.com/fragmede/livethread/internal/store"
)

// Options configure a session.
type Options struct {
	MaxComments int
	Monitor     monitor.Options
}

// Session is created when a thread is opened and closed when the operator
// leaves it. The thread never changes for the life of a session.
type Session struct {
	ID     string
	Thread domain.ThreadRef
	Store  *store.Store

	mu   sync.Mutex
	view layout.ViewState

	monitor *monitor.Monitor
	log     *slog.Logger

	cancel context.CancelFunc
	group  *errgroup.Group
	once   sync.Once
}

// New creates a session with a fresh store. It does not start fetching.
func New(thread domain.ThreadRef, f monitor.Fetcher, notify monitor.Notify, opts Options) *Session {
	id := uuid.NewString()
	st := store.New(opts.MaxComments)

	log := opts.Monitor.Logger
	if log == nil {
		log = slog.Default()
	}
	mopts := opts.Monitor
	mopts.Logger = log

	return &Session{
		ID:      id,
		Thread:  thread,
		Store:   st,
		monitor: monitor.New(id, thread, f, st, notify, mopts),
		log:     log.With("session", id, "thread", thread.ID),
	}
}

// Start launches the fetch loop under ctx.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)
	s.group.Go(func() error {
		return s.monitor.Run(ctx)
	})
	s.log.Info("session started", "title", s.Thread.Title)
}

// Close stops the fetch loop and waits for it to exit. It is safe to call
// more than once, and on a session that was never started.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		err = s.group.Wait()
		s.log.Info("session closed", "total", s.Store.Len())
	})
	return err
}

// Refresh asks the fetch loop to poll now.
func (s *Session) Refresh() {
	s.monitor.RefreshNow()
}

// FetchState reports the fetch loop's phase.
func (s *Session) FetchState() monitor.State {
	return s.monitor.State()
}

// View returns a copy of the view state.
func (s *Session) View() layout.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// UpdateView applies fn to the view state atomically and returns the
// result.
func (s *Session) UpdateView(fn func(*layout.ViewState)) layout.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.view)
	return s.view
}

// ResetView restores the initial, auto-following view.
func (s *Session) ResetView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = layout.ViewState{}
}
