package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fragmede/livethread/internal/domain"
)

// FetchCommentListing downloads the newest comments of a thread. Parsing
// is left to the listing package.
func (c *Client) FetchCommentListing(ctx context.Context, thread domain.ThreadRef) (RawListing, error) {
	u, err := c.commentsURL(thread)
	if err != nil {
		return nil, err
	}
	body, err := c.getRaw(ctx, "fetch comments", u)
	if err != nil {
		return nil, err
	}
	return RawListing(body), nil
}

// commentsURL prefers the thread id; the permalink is used when only it
// is known.
func (c *Client) commentsURL(thread domain.ThreadRef) (string, error) {
	q := url.Values{}
	q.Set("sort", "new")
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("raw_json", "1")

	if thread.ID != "" {
		return fmt.Sprintf("%s/comments/%s.json?%s", c.baseURL, url.PathEscape(thread.ID), q.Encode()), nil
	}
	if thread.Permalink != "" {
		return fmt.Sprintf("%s%s.json?%s", c.baseURL, NormalizePath(thread.Permalink), q.Encode()), nil
	}
	return "", &domain.NotFoundError{Input: thread.Title}
}
