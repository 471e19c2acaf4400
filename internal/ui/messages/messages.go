package messages

import (
	"time"

	"github.com/fragmede/livethread/internal/config"
	"github.com/fragmede/livethread/internal/domain"
)

// View transition messages.
type (
	OpenMenuMsg       struct{}
	OpenThreadListMsg struct{}
	OpenURLInputMsg   struct{}
	OpenRecentMsg     struct{}
	OpenThreadMsg     struct{ Thread domain.ThreadRef }
	SelectItemMsg     struct{ Item config.MenuItem }
	ResolveURLMsg     struct{ URL string }
	QuitMsg           struct{}
)

// Data messages.
type (
	ThreadsLoadedMsg struct {
		Item      config.MenuItem
		Threads   []domain.ThreadRef
		FromCache bool
		Err       error
	}

	RecentLoadedMsg struct {
		Threads []domain.ThreadRef
		Err     error
	}

	ThreadResolvedMsg struct {
		Input  string
		Thread domain.ThreadRef
		Err    error
	}

	// CommentsMergedMsg follows a successful fetch cycle. Added is zero
	// only when the cycle recovered from a previous failure or answered
	// a manual refresh.
	CommentsMergedMsg struct {
		SessionID string
		Added     int
		Total     int
		At        time.Time
	}

	FetchFailedMsg struct {
		SessionID string
		Err       error
	}

	// ParseProblemsMsg reports records skipped in one fetch cycle.
	ParseProblemsMsg struct {
		SessionID string
		Skipped   int
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
