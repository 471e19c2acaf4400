package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fragmede/livethread/internal/domain"
)

const (
	// DefaultMaxAgeHours applies when a query leaves the age unset.
	DefaultMaxAgeHours = 24
	defaultSearchLimit = 10
	maxConcurrent      = 4
)

type postListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data post   `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
	Flair      string  `json:"link_flair_text"`
}

// FindThreads searches a subreddit for recent threads matching q. Flairs
// are searched concurrently; the first flair in configured order that
// yields threads wins. A query without flairs lists the newest posts.
func (c *Client) FindThreads(ctx context.Context, q domain.ThreadQuery) ([]domain.ThreadRef, error) {
	if q.Subreddit == "" {
		return nil, fmt.Errorf("find threads: no subreddit in query %q", q.Category)
	}
	if q.MaxAgeHours == 0 {
		q.MaxAgeHours = DefaultMaxAgeHours
	}
	if q.Limit <= 0 {
		q.Limit = defaultSearchLimit
	}

	flairs := q.Flairs
	if len(flairs) == 0 {
		flairs = []string{""}
	}

	results := make([][]domain.ThreadRef, len(flairs))
	errs := make([]error, len(flairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, flair := range flairs {
		g.Go(func() error {
			refs, err := c.searchFlair(ctx, q, flair)
			if err != nil {
				// Non-fatal: another flair may still match.
				errs[i] = err
				return nil
			}
			results[i] = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, refs := range results {
		if len(refs) > 0 {
			return refs, nil
		}
	}
	return nil, errors.Join(errs...)
}

func (c *Client) searchFlair(ctx context.Context, q domain.ThreadQuery, flair string) ([]domain.ThreadRef, error) {
	var u string
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("raw_json", "1")
	if flair != "" {
		params.Set("q", fmt.Sprintf("flair:%q", flair))
		params.Set("sort", "new")
		params.Set("t", "week")
		params.Set("restrict_sr", "1")
		u = fmt.Sprintf("%s/r/%s/search.json?%s", c.baseURL, url.PathEscape(q.Subreddit), params.Encode())
	} else {
		u = fmt.Sprintf("%s/r/%s/new.json?%s", c.baseURL, url.PathEscape(q.Subreddit), params.Encode())
	}

	var l postListing
	if err := c.get(ctx, "find threads", u, &l); err != nil {
		return nil, err
	}

	now := c.now()
	var refs []domain.ThreadRef
	for _, ch := range l.Data.Children {
		if ch.Kind != "t3" || ch.Data.ID == "" {
			continue
		}
		created := time.Unix(int64(ch.Data.CreatedUTC), 0)
		if !q.WithinAge(created, now) || !q.TitleMatches(ch.Data.Title) {
			continue
		}
		refs = append(refs, domain.ThreadRef{
			ID:        ch.Data.ID,
			Title:     ch.Data.Title,
			Permalink: ch.Data.Permalink,
			Category:  q.Category,
			Created:   created.UTC(),
		})
		if len(refs) >= q.Limit {
			break
		}
	}
	return refs, nil
}
