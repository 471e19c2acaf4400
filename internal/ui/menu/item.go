package menu

import (
	"strings"
	"time"

	"github.com/fragmede/livethread/internal/config"
	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/render"
)

// Entry wraps a configured menu item for the list.
type Entry struct {
	config.MenuItem
}

func (e Entry) Title() string { return e.MenuItem.Title }

func (e Entry) Description() string {
	if e.MenuItem.Description != "" {
		return e.MenuItem.Description
	}
	if e.IsSearch() && len(e.Flair) > 0 {
		return strings.Join(e.Flair, ", ")
	}
	if e.IsSearch() {
		return "r/" + e.Subreddit
	}
	return ""
}

// Badge names where the item leads: a subreddit, recent threads or the
// URL prompt.
func (e Entry) Badge() string {
	switch e.Type {
	case config.TypeRecent:
		return "recent"
	case config.TypeURLInput:
		return "url"
	}
	return "r/" + e.Subreddit
}

func (e Entry) FilterValue() string { return e.MenuItem.Title }

// ThreadEntry wraps a thread for the list.
type ThreadEntry struct {
	domain.ThreadRef
}

func (e ThreadEntry) Title() string {
	if e.ThreadRef.Title != "" {
		return e.ThreadRef.Title
	}
	return "[" + e.ID + "]"
}

// Badge is the flair or menu category the thread was found under.
func (e ThreadEntry) Badge() string { return e.Category }

func (e ThreadEntry) Description() string {
	parts := make([]string, 0, 2)
	if !e.Created.IsZero() {
		parts = append(parts, render.TimeAgo(e.Created, time.Now()))
	}
	if e.Permalink != "" {
		parts = append(parts, e.Permalink)
	} else {
		parts = append(parts, "/comments/"+e.ID)
	}
	return strings.Join(parts, " | ")
}

func (e ThreadEntry) FilterValue() string { return e.ThreadRef.Title }
