package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/fragmede/livethread/internal/domain"
)

const (
	tableThreadLists = "thread_lists"

	threadListFieldKey       = "query_key"
	threadListFieldThreads   = "threads"
	threadListFieldFetchedAt = "fetched_at"
)

// GetThreadList retrieves cached search results for a query key.
// Returns (threads, isFresh, error). threads is nil on cache miss.
func (d *DB) GetThreadList(ctx context.Context, key string, ttl time.Duration) ([]domain.ThreadRef, bool, error) {
	q := sq.Select(threadListFieldThreads, threadListFieldFetchedAt).
		From(tableThreadLists).
		Where(sq.Eq{threadListFieldKey: key}).
		RunWith(d.db)

	var threadsJSON string
	var fetchedAt int64
	err := q.QueryRowContext(ctx).Scan(&threadsJSON, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading thread list: %w", err)
	}

	var threads []domain.ThreadRef
	if err := json.Unmarshal([]byte(threadsJSON), &threads); err != nil {
		return nil, false, fmt.Errorf("decoding thread list: %w", err)
	}

	isFresh := d.now().Sub(time.Unix(fetchedAt, 0)) < ttl
	return threads, isFresh, nil
}

// PutThreadList stores search results for a query key.
func (d *DB) PutThreadList(ctx context.Context, key string, threads []domain.ThreadRef) error {
	threadsJSON, err := json.Marshal(threads)
	if err != nil {
		return err
	}

	q := sq.Insert(tableThreadLists).
		Options("OR REPLACE").
		Columns(threadListFieldKey, threadListFieldThreads, threadListFieldFetchedAt).
		Values(key, string(threadsJSON), d.now().Unix()).
		RunWith(d.db)

	if _, err := q.ExecContext(ctx); err != nil {
		return fmt.Errorf("storing thread list: %w", err)
	}
	return nil
}
