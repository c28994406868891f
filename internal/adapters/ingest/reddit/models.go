package reddit

import (
	"encoding/json"
	"strings"
	"time"

	"subshift/internal/core/activity"
	ptime "subshift/internal/platform/time"
)

// listing is the generic paged envelope Reddit wraps every collection in
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// thing is one child of a listing; Kind is t1 for comments, t3 for links
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Link is a partial submission document
type Link struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Author     string  `json:"author"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	URL        string  `json:"url"`
	CreatedUTC float64 `json:"created_utc"`
	NumComment int     `json:"num_comments"`
}

// Comment is a partial comment document. Replies is "" or a nested listing
type Comment struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Author     string          `json:"author"`
	Body       string          `json:"body"`
	Subreddit  string          `json:"subreddit"`
	Permalink  string          `json:"permalink"`
	LinkID     string          `json:"link_id"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

// Account is the subset of /user/{name}/about we read
type Account struct {
	Name        string   `json:"name"`
	CreatedUTC  *float64 `json:"created_utc"`
	IsSuspended bool     `json:"is_suspended"`
}

// Item converts a submission into an activity item; text is title then selftext
func (l Link) Item() activity.Item {
	text := l.Title
	if body := strings.TrimSpace(l.Selftext); body != "" {
		text += "\n\n" + body
	}
	return activity.Item{
		ID:        l.ID,
		Author:    l.Author,
		Text:      text,
		CreatedAt: ptime.FromUnix(l.CreatedUTC),
		Community: l.Subreddit,
		Kind:      activity.KindPost,
		Link:      l.URL,
	}
}

// Item converts a comment into an activity item
func (c Comment) Item() activity.Item {
	link := ""
	if c.Permalink != "" {
		link = webURL + c.Permalink
	}
	return activity.Item{
		ID:        c.ID,
		Author:    c.Author,
		Text:      c.Body,
		CreatedAt: ptime.FromUnix(c.CreatedUTC),
		Community: c.Subreddit,
		Kind:      activity.KindComment,
		Link:      link,
	}
}

// CreatedAt returns the profile creation instant, nil when the profile hides it
func (a Account) CreatedAt() *time.Time {
	if a.CreatedUTC == nil || a.IsSuspended {
		return nil
	}
	return ptime.Ptr(ptime.FromUnix(*a.CreatedUTC))
}
