package domain

import (
	"strings"
	"time"
)

// WithinAge reports whether a post created at createdAt is young enough.
// A zero MaxAgeHours accepts everything.
func (q ThreadQuery) WithinAge(createdAt, now time.Time) bool {
	if q.MaxAgeHours <= 0 {
		return true
	}
	return !createdAt.Before(now.Add(-time.Duration(q.MaxAgeHours) * time.Hour))
}

// TitleMatches applies the must/must-not phrase lists, case-insensitively.
func (q ThreadQuery) TitleMatches(title string) bool {
	lower := strings.ToLower(title)
	for _, phrase := range q.TitleMustContain {
		if !strings.Contains(lower, strings.ToLower(phrase)) {
			return false
		}
	}
	for _, phrase := range q.TitleMustNotContain {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return false
		}
	}
	return true
}

// Key returns a stable identifier for caching search results.
func (q ThreadQuery) Key() string {
	return strings.ToLower(q.Subreddit) + "|" + strings.ToLower(strings.Join(q.Flairs, ",")) + "|" + q.Category
}
