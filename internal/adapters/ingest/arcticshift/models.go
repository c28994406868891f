package arcticshift

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"subshift/internal/core/activity"
	ptime "subshift/internal/platform/time"
)

// Kind is the dump flavor; Arctic Shift ships posts and comments separately
type Kind string

const (
	// Posts are submission dumps (r_<sub>_posts.jsonl)
	Posts Kind = "posts"
	// Comments are comment dumps (r_<sub>_comments.jsonl)
	Comments Kind = "comments"
)

// Record is one cleaned dump line. Posts carry title and selftext as Body,
// comments have an empty Title
type Record struct {
	ID        string
	Author    string
	Title     string
	Body      string
	CreatedAt time.Time
	IsPost    bool
	Community string
}

// raw is the subset of dump fields we read
type raw struct {
	ID         string   `json:"id"`
	Author     string   `json:"author"`
	Title      string   `json:"title"`
	Selftext   string   `json:"selftext"`
	Body       string   `json:"body"`
	Subreddit  string   `json:"subreddit"`
	CreatedUTC unixFlex `json:"created_utc"`
}

// unixFlex accepts created_utc as a number or a quoted number; older dumps use both
type unixFlex float64

func (u *unixFlex) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*u = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*u = unixFlex(f)
	return nil
}

func (u unixFlex) time() time.Time { return ptime.FromUnix(float64(u)) }

// clean converts a raw line; ok is false for deleted authors or lines without an id
func clean(r raw, kind Kind, community string) (Record, bool) {
	author := strings.TrimSpace(r.Author)
	if author == "" || author == activity.DeletedAuthor || r.ID == "" {
		return Record{}, false
	}
	if community == "" {
		community = r.Subreddit
	}
	rec := Record{
		ID:        r.ID,
		Author:    author,
		CreatedAt: r.CreatedUTC.time(),
		Community: community,
	}
	if kind == Posts {
		rec.Title = r.Title
		rec.Body = r.Selftext
		rec.IsPost = true
	} else {
		rec.Body = r.Body
	}
	return rec, true
}

// Item converts the record for the correlator; post text is title then body
func (r Record) Item() activity.Item {
	kind := activity.KindComment
	text := r.Body
	if r.IsPost {
		kind = activity.KindPost
		text = strings.TrimSpace(r.Title + "\n\n" + r.Body)
	}
	return activity.Item{
		ID:        r.ID,
		Author:    r.Author,
		Text:      text,
		CreatedAt: r.CreatedAt,
		Community: r.Community,
		Kind:      kind,
	}
}

func decode(line []byte) (raw, error) {
	var r raw
	err := json.Unmarshal(line, &r)
	return r, err
}
