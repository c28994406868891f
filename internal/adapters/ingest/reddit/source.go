package reddit

import (
	"context"
	"iter"
	"time"

	"subshift/internal/core/activity"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/retry"
)

// Recent yields the newest submissions of community and, after each one, its
// loaded comment tree. limit caps submissions (0 means one page).
//
// A failed comment fetch is yielded as an error and the walk moves on to the
// next submission; a failed listing page is yielded and ends the walk.
func (c *Client) Recent(ctx context.Context, community string, limit int) iter.Seq2[activity.Item, error] {
	return func(yield func(activity.Item, error) bool) {
		if limit <= 0 {
			limit = c.opts.PageSize
		}
		seen := 0
		after := ""
		for seen < limit {
			page, err := retry.Do(ctx, c.opts.Retry, "reddit.new", func(ctx context.Context) (Page[Link], error) {
				return c.NewLinks(ctx, community, after, limit-seen)
			})
			if err != nil {
				yield(activity.Item{}, err)
				return
			}
			for _, l := range page.Items {
				if seen >= limit {
					return
				}
				seen++
				if it := l.Item(); !it.Deleted() {
					if !yield(it, nil) {
						return
					}
				}
				comments, err := retry.Do(ctx, c.opts.Retry, "reddit.comments", func(ctx context.Context) ([]Comment, error) {
					return c.Comments(ctx, l.ID)
				})
				if err != nil {
					if !yield(activity.Item{}, perr.WithField(err, l.ID)) {
						return
					}
					continue
				}
				for _, cm := range comments {
					it := cm.Item()
					if it.Deleted() {
						continue
					}
					if !yield(it, nil) {
						return
					}
				}
			}
			if page.After == "" || len(page.Items) == 0 {
				return
			}
			after = page.After
		}
	}
}

// UserHistory yields user's comments and then submissions, newest first.
// community filters case-insensitively when non-empty. limit caps how many
// items are scanned across both listings combined, 0 is unbounded. Private,
// suspended or missing accounts end the walk with a NotFound error.
func (c *Client) UserHistory(ctx context.Context, user, community string, limit int) iter.Seq2[activity.Item, error] {
	return func(yield func(activity.Item, error) bool) {
		scanned := 0
		comments := walk(ctx, c, "reddit.user_comments", limit, func(ctx context.Context, after string, n int) (Page[Comment], error) {
			return c.UserComments(ctx, user, after, n)
		})
		for cm, err := range comments {
			if err != nil {
				yield(activity.Item{}, unavailable(err, user))
				return
			}
			scanned++
			if it := cm.Item(); keep(it, community) && !yield(it, nil) {
				return
			}
		}
		rest := 0
		if limit > 0 {
			if rest = limit - scanned; rest <= 0 {
				return
			}
		}
		links := walk(ctx, c, "reddit.user_submitted", rest, func(ctx context.Context, after string, n int) (Page[Link], error) {
			return c.UserSubmitted(ctx, user, after, n)
		})
		for l, err := range links {
			if err != nil {
				yield(activity.Item{}, unavailable(err, user))
				return
			}
			if it := l.Item(); keep(it, community) && !yield(it, nil) {
				return
			}
		}
	}
}

// ProfileCreatedAt returns the account creation time; nil when the account
// is gone or hides it
func (c *Client) ProfileCreatedAt(ctx context.Context, user string) (*time.Time, error) {
	acct, err := retry.Do(ctx, c.opts.Retry, "reddit.about", func(ctx context.Context) (Account, error) {
		return c.About(ctx, user)
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) || perr.IsCode(err, perr.ErrorCodeForbidden) {
			logger.C(ctx).Debug().Str("user", user).Msg("profile unavailable")
			return nil, nil
		}
		return nil, err
	}
	return acct.CreatedAt(), nil
}

func keep(it activity.Item, community string) bool {
	if it.Deleted() {
		return false
	}
	return community == "" || it.InCommunity(community)
}

func unavailable(err error, user string) error {
	if perr.IsCode(err, perr.ErrorCodeForbidden) {
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeNotFound, "reddit user unavailable"), user)
	}
	return perr.WithField(err, user)
}

// walk pages a listing through the retry loop until the cursor runs out or
// limit items were seen
func walk[T any](ctx context.Context, c *Client, op string, limit int,
	fetch func(ctx context.Context, after string, n int) (Page[T], error),
) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		seen := 0
		after := ""
		for limit <= 0 || seen < limit {
			n := c.opts.PageSize
			if limit > 0 {
				n = min(n, limit-seen)
			}
			page, err := retry.Do(ctx, c.opts.Retry, op, func(ctx context.Context) (Page[T], error) {
				return fetch(ctx, after, n)
			})
			if err != nil {
				yield(zero, err)
				return
			}
			for _, v := range page.Items {
				if limit > 0 && seen >= limit {
					return
				}
				seen++
				if !yield(v, nil) {
					return
				}
			}
			if page.After == "" || len(page.Items) == 0 {
				return
			}
			after = page.After
		}
	}
}
