package cache

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/fragmede/livethread/internal/domain"
)

const (
	tableRecent = "recent_threads"

	recentFieldID        = "id"
	recentFieldTitle     = "title"
	recentFieldPermalink = "permalink"
	recentFieldCategory  = "category"
	recentFieldOpenedAt  = "opened_at"

	// RecentLimit is how many recent threads the menu shows.
	RecentLimit = 20
)

// TouchRecent records that a thread was opened now.
func (d *DB) TouchRecent(ctx context.Context, thread domain.ThreadRef) error {
	if thread.ID == "" {
		return fmt.Errorf("recording recent thread: empty id")
	}

	q := sq.Insert(tableRecent).
		Options("OR REPLACE").
		Columns(recentFieldID, recentFieldTitle, recentFieldPermalink, recentFieldCategory, recentFieldOpenedAt).
		Values(thread.ID, thread.Title, thread.Permalink, thread.Category, d.now().UnixNano()).
		RunWith(d.db)

	if _, err := q.ExecContext(ctx); err != nil {
		return fmt.Errorf("recording recent thread: %w", err)
	}
	return nil
}

// RecentThreads returns up to limit threads, most recently opened first.
func (d *DB) RecentThreads(ctx context.Context, limit int) ([]domain.ThreadRef, error) {
	if limit <= 0 {
		limit = RecentLimit
	}

	q := sq.Select(recentFieldID, recentFieldTitle, recentFieldPermalink, recentFieldCategory).
		From(tableRecent).
		OrderBy(recentFieldOpenedAt + " DESC").
		Limit(uint64(limit)).
		RunWith(d.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recent threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.ThreadRef
	for rows.Next() {
		var t domain.ThreadRef
		if err := rows.Scan(&t.ID, &t.Title, &t.Permalink, &t.Category); err != nil {
			return nil, fmt.Errorf("scanning recent thread: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}
