// Package monitor runs the fetch loop for one watched thread.
package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/fragmede/livethread/internal/api"
	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/listing"
	"github.com/fragmede/livethread/internal/store"
	"github.com/fragmede/livethread/internal/ui/messages"
)

// Fetcher downloads the raw comment listing of a thread.
type Fetcher interface {
	FetchCommentListing(ctx context.Context, thread domain.ThreadRef) (api.RawListing, error)
}

// Notify delivers a message to the UI. tea.Program.Send satisfies it.
type Notify func(tea.Msg)

// State is the loop's current phase.
type State int32

const (
	StateIdle State = iota
	StateWaiting
	StateFetching
	StateMerging
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Options tune the loop's timing.
type Options struct {
	// FetchInterval is the pause after each cycle.
	FetchInterval time.Duration
	// MinRequestInterval spaces out requests; zero disables limiting.
	MinRequestInterval time.Duration
	// Limiter, when set, is used instead of one built from
	// MinRequestInterval so several monitors can share a budget.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Monitor polls one thread and merges what it finds into a store.
type Monitor struct {
	sessionID string
	thread    domain.ThreadRef
	fetcher   Fetcher
	store     *store.Store
	notify    Notify
	limiter   *rate.Limiter
	interval  time.Duration
	log       *slog.Logger
	refresh   chan struct{}
	asked     atomic.Bool
	state     atomic.Int32
	failing   atomic.Bool
	now       func() time.Time
}

// New creates a monitor. notify may be nil.
func New(sessionID string, thread domain.ThreadRef, f Fetcher, s *store.Store, notify Notify, opts Options) *Monitor {
	limiter := opts.Limiter
	if limiter == nil {
		limit := rate.Inf
		if opts.MinRequestInterval > 0 {
			limit = rate.Every(opts.MinRequestInterval)
		}
		limiter = rate.NewLimiter(limit, 1)
	}
	if notify == nil {
		notify = func(tea.Msg) {}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		sessionID: sessionID,
		thread:    thread,
		fetcher:   f,
		store:     s,
		notify:    notify,
		limiter:   limiter,
		interval:  opts.FetchInterval,
		log:       log.With("session", sessionID, "thread", thread.ID),
		refresh:   make(chan struct{}, 1),
		now:       time.Now,
	}
}

// State reports the loop's current phase.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

func (m *Monitor) setState(s State) {
	m.state.Store(int32(s))
}

// RefreshNow cuts the current pause short. It never blocks. The next
// successful cycle always reports back, even when nothing was new.
func (m *Monitor) RefreshNow() {
	m.asked.Store(true)
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. Fetch and parse failures are reported
// to the UI and the loop carries on.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.setState(StateStopped)
	m.log.Debug("fetch loop started", "interval", m.interval)

	for {
		if _, err := m.Poll(ctx); err != nil && ctx.Err() == nil {
			m.log.Debug("fetch cycle failed", "error", err)
		}
		if ctx.Err() != nil {
			m.log.Debug("fetch loop stopped")
			return nil
		}

		m.setState(StateSleeping)
		timer := time.NewTimer(m.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.log.Debug("fetch loop stopped")
			return nil
		case <-m.refresh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Poll runs one cycle: wait for the rate limiter, fetch, parse and merge.
// It returns how many comments were new.
func (m *Monitor) Poll(ctx context.Context) (int, error) {
	m.setState(StateWaiting)
	if err := m.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	asked := m.asked.Swap(false)

	m.setState(StateFetching)
	raw, err := m.fetcher.FetchCommentListing(ctx, m.thread)
	if err != nil {
		m.fail(ctx, err)
		return 0, err
	}

	m.setState(StateMerging)
	res, err := listing.Parse(raw)
	if err != nil {
		m.fail(ctx, err)
		return 0, err
	}
	if n := len(res.Errors); n > 0 {
		for _, perr := range res.Errors {
			m.log.Debug("skipped comment record", "error", perr)
		}
		m.notify(messages.ParseProblemsMsg{SessionID: m.sessionID, Skipped: n})
	}

	added := m.store.Merge(res.Comments)
	total := m.store.Len()
	recovered := m.failing.Swap(false)
	if added > 0 || recovered || asked {
		m.log.Debug("merged comments", "added", added, "total", total)
		m.notify(messages.CommentsMergedMsg{
			SessionID: m.sessionID,
			Added:     added,
			Total:     total,
			At:        m.now(),
		})
	}
	return added, nil
}

func (m *Monitor) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	m.failing.Store(true)
	m.log.Warn("fetch failed", "error", err)
	m.notify(messages.FetchFailedMsg{SessionID: m.sessionID, Err: err})
}
