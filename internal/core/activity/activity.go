// Package activity models per-user community activity and the cross-community
// transition that partitions it into before and after buckets
package activity

import (
	"iter"
	"slices"
	"strings"
	"time"
)

// Kind distinguishes submissions from comments
type Kind string

const (
	// KindPost is a top-level submission
	KindPost Kind = "post"
	// KindComment is a reply inside a submission's comment tree
	KindComment Kind = "comment"
)

// DeletedAuthor is the sentinel the platform returns for removed accounts
const DeletedAuthor = "[deleted]"

// Item is one post or comment; immutable once fetched
type Item struct {
	ID        string
	Author    string
	Text      string
	CreatedAt time.Time
	Community string
	Kind      Kind
	Link      string
}

// Deleted reports whether the author is missing or the deleted sentinel
func (it Item) Deleted() bool {
	a := strings.TrimSpace(it.Author)
	return a == "" || a == DeletedAuthor
}

// InCommunity matches the community name case-insensitively
func (it Item) InCommunity(name string) bool { return strings.EqualFold(it.Community, name) }

// SortItems orders items by CreatedAt, keeping the fetch order for equal instants
func SortItems(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int { return a.CreatedAt.Compare(b.CreatedAt) })
}

// Texts returns the text of each item in order
func Texts(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

// Span returns the earliest and latest CreatedAt; ok is false for no items
func Span(items []Item) (first, last time.Time, ok bool) {
	for i, it := range items {
		if i == 0 || it.CreatedAt.Before(first) {
			first = it.CreatedAt
		}
		if i == 0 || it.CreatedAt.After(last) {
			last = it.CreatedAt
		}
	}
	return first, last, len(items) > 0
}

// Record is one user's activity in the source community
type Record struct {
	UserID   string
	JoinTime *time.Time
	Items    []Item
}

// Sort orders the record's items chronologically
func (r *Record) Sort() { SortItems(r.Items) }

// Index maps users to records and remembers first-seen order
type Index struct {
	order  []string
	byUser map[string]*Record
}

// NewIndex returns an empty Index
func NewIndex() *Index { return &Index{byUser: map[string]*Record{}} }

// Add appends it to its author's record. Deleted authors are ignored.
// created reports whether this is the first item seen for the author.
func (x *Index) Add(it Item) (rec *Record, created bool) {
	if it.Deleted() {
		return nil, false
	}
	rec, ok := x.byUser[it.Author]
	if !ok {
		rec = &Record{UserID: it.Author}
		x.byUser[it.Author] = rec
		x.order = append(x.order, it.Author)
	}
	rec.Items = append(rec.Items, it)
	return rec, !ok
}

// Ensure returns the record for user, creating an empty one if needed
func (x *Index) Ensure(user string) *Record {
	if rec, ok := x.byUser[user]; ok {
		return rec
	}
	rec := &Record{UserID: user}
	x.byUser[user] = rec
	x.order = append(x.order, user)
	return rec
}

// Get returns the record for user
func (x *Index) Get(user string) (*Record, bool) {
	rec, ok := x.byUser[user]
	return rec, ok
}

// Len is the number of distinct users
func (x *Index) Len() int { return len(x.order) }

// Users returns user ids in first-seen order
func (x *Index) Users() []string { return slices.Clone(x.order) }

// Records yields records in first-seen order
func (x *Index) Records() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, u := range x.order {
			if !yield(x.byUser[u]) {
				return
			}
		}
	}
}
