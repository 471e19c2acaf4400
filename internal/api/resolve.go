package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/listing"
)

// NormalizePath reduces a thread URL or path to "/r/<sub>/comments/<id>/..."
// without host, query, ".json" suffix or trailing slash.
func NormalizePath(raw string) string {
	s := strings.TrimSpace(raw)
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		s = u.Path
	} else if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	s = strings.TrimSuffix(s, ".json")
	s = strings.TrimRight(s, "/")
	if s != "" && !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return s
}

// ExtractThreadID returns the thread id from a URL or path, accepting both
// "/r/<sub>/comments/<id>" and "/comments/<id>".
func ExtractThreadID(raw string) (string, bool) {
	parts := strings.Split(strings.Trim(NormalizePath(raw), "/"), "/")
	for i, p := range parts {
		if p != "comments" || i+1 >= len(parts) {
			continue
		}
		if i != 0 && (i != 2 || parts[0] != "r") {
			continue
		}
		if id := parts[i+1]; id != "" {
			return id, true
		}
	}
	return "", false
}

// ResolveThreadFromURL turns a pasted URL into a ThreadRef, fetching the
// thread once for its title. Unknown or malformed input yields a
// *domain.NotFoundError.
func (c *Client) ResolveThreadFromURL(ctx context.Context, raw string) (domain.ThreadRef, error) {
	id, ok := ExtractThreadID(raw)
	if !ok {
		return domain.ThreadRef{}, &domain.NotFoundError{Input: raw}
	}

	ref := domain.ThreadRef{ID: id, Permalink: NormalizePath(raw), Category: "url"}
	body, err := c.FetchCommentListing(ctx, ref)
	if err != nil {
		var terr *domain.TransportError
		if errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound {
			return domain.ThreadRef{}, &domain.NotFoundError{Input: raw}
		}
		return domain.ThreadRef{}, err
	}

	res, err := listing.Parse(body)
	if err != nil || res.PostID == "" {
		return domain.ThreadRef{}, &domain.NotFoundError{Input: raw}
	}
	ref.ID = res.PostID
	ref.Title = res.Title
	return ref, nil
}
