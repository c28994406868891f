package reddit

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	perr "subshift/internal/platform/errors"
)

// Page is one listing page plus the cursor for the next one ("" when done)
type Page[T any] struct {
	Items []T
	After string
}

// NewLinks fetches one page of /r/{community}/new
func (c *Client) NewLinks(ctx context.Context, community, after string, limit int) (Page[Link], error) {
	return fetchPage[Link](ctx, c, "/r/"+url.PathEscape(community)+"/new", after, limit, "t3")
}

// UserComments fetches one page of a user's comment history, newest first
func (c *Client) UserComments(ctx context.Context, user, after string, limit int) (Page[Comment], error) {
	return fetchPage[Comment](ctx, c, "/user/"+url.PathEscape(user)+"/comments", after, limit, "t1")
}

// UserSubmitted fetches one page of a user's submissions, newest first
func (c *Client) UserSubmitted(ctx context.Context, user, after string, limit int) (Page[Link], error) {
	return fetchPage[Link](ctx, c, "/user/"+url.PathEscape(user)+"/submitted", after, limit, "t3")
}

// About fetches a user's public profile
func (c *Client) About(ctx context.Context, user string) (Account, error) {
	var env struct {
		Kind string  `json:"kind"`
		Data Account `json:"data"`
	}
	if err := c.getJSON(ctx, "/user/"+url.PathEscape(user)+"/about", nil, &env); err != nil {
		return Account{}, err
	}
	return env.Data, nil
}

// Comments fetches a submission's comment tree flattened in depth-first order.
// "more" stubs are skipped rather than expanded.
func (c *Client) Comments(ctx context.Context, submissionID string) ([]Comment, error) {
	q := url.Values{"limit": {"500"}, "sort": {"new"}}
	var pair []listing
	if err := c.getJSON(ctx, "/comments/"+url.PathEscape(submissionID), q, &pair); err != nil {
		return nil, err
	}
	if len(pair) < 2 {
		return nil, perr.JSONErrf("reddit comments %s: expected link and comment listings, got %d", submissionID, len(pair))
	}
	var out []Comment
	if err := flatten(pair[1], &out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "reddit comments %s", submissionID)
	}
	return out, nil
}

func flatten(l listing, out *[]Comment) error {
	for _, ch := range l.Data.Children {
		if ch.Kind != "t1" {
			continue
		}
		var cm Comment
		if err := json.Unmarshal(ch.Data, &cm); err != nil {
			return err
		}
		*out = append(*out, cm)
		// replies is the empty string on leaves
		if len(cm.Replies) == 0 || cm.Replies[0] != '{' {
			continue
		}
		var sub listing
		if err := json.Unmarshal(cm.Replies, &sub); err != nil {
			return err
		}
		if err := flatten(sub, out); err != nil {
			return err
		}
	}
	return nil
}

func fetchPage[T any](ctx context.Context, c *Client, path, after string, limit int, kind string) (Page[T], error) {
	if limit <= 0 || limit > c.opts.PageSize {
		limit = c.opts.PageSize
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if after != "" {
		q.Set("after", after)
	}
	var l listing
	if err := c.getJSON(ctx, path, q, &l); err != nil {
		return Page[T]{}, err
	}
	out := Page[T]{After: l.Data.After, Items: make([]T, 0, len(l.Data.Children))}
	for _, ch := range l.Data.Children {
		if ch.Kind != kind {
			continue
		}
		var v T
		if err := json.Unmarshal(ch.Data, &v); err != nil {
			return Page[T]{}, perr.Wrapf(err, perr.ErrorCodeJSON, "reddit decode %s child", path)
		}
		out.Items = append(out.Items, v)
	}
	return out, nil
}
