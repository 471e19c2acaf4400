package domain

import "time"

// DeletedAuthor is shown when a comment has no author.
const DeletedAuthor = "[deleted]"

// Comment is a single observed reply in a thread. Values are never mutated
// after the listing parser creates them.
type Comment struct {
	ID        string
	Author    string
	Body      string
	CreatedAt time.Time // UTC, seconds resolution
	Score     int
	Depth     int    // 0 = direct reply to the thread root
	ParentID  string // empty for top-level comments
}

// ThreadRef identifies the discussion being watched.
type ThreadRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
	Category  string `json:"category"`
	// Created is when the thread was posted, if known.
	Created time.Time `json:"created"`
}

// ThreadQuery describes a thread search against one subreddit.
type ThreadQuery struct {
	Category            string
	Subreddit           string
	Flairs              []string
	MaxAgeHours         int
	Limit               int
	TitleMustContain    []string
	TitleMustNotContain []string
}
