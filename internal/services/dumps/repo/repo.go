// Package repo provides the Postgres storage for ingested dump items
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"subshift/internal/core/activity"
	"subshift/internal/core/normalize"
	"subshift/internal/modkit/repokit"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/store"
)

// insertCols is the per-row parameter count of InsertItems
const insertCols = 6

// MaxBatch keeps one insert under the Postgres bind parameter limit
const MaxBatch = 65535 / insertCols

var schemaSQL = []string{`
	CREATE TABLE IF NOT EXISTS dump_items (
		community  text        NOT NULL,
		id         text        NOT NULL,
		author     text        NOT NULL,
		kind       text        NOT NULL,
		created_at timestamptz NOT NULL,
		body       text        NOT NULL DEFAULT '',
		PRIMARY KEY (community, id)
	)`,
	`CREATE INDEX IF NOT EXISTS dump_items_author_idx ON dump_items (author, created_at)`,
}

type binder struct{}

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the dump repository
type Storage interface {
	EnsureSchema(ctx context.Context) error
	// InsertItems writes items, skipping (community, id) pairs already stored
	InsertItems(ctx context.Context, items []activity.Item) (inserted int, err error)
	// Stream yields stored items of the given communities ordered by author then time
	Stream(ctx context.Context, communities []string, fn func(activity.Item) error) error
	// Tally counts stored items, in total and per community
	Tally(ctx context.Context) (Tally, error)
}

// Tally is the stored row count of dump_items
type Tally struct {
	Total       int64
	ByCommunity map[string]int64
}

type pg struct{ q repokit.Queryer }

// EnsureSchema implements Storage
func (s *pg) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return perr.FromPostgres(err, "dumps: ensure schema")
		}
	}
	return nil
}

// InsertItems implements Storage
func (s *pg) InsertItems(ctx context.Context, items []activity.Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if len(items) > MaxBatch {
		return 0, perr.InvalidArgf("dumps: batch of %d exceeds %d rows", len(items), MaxBatch)
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO dump_items (community, id, author, kind, created_at, body) VALUES `)
	args := make([]any, 0, len(items)*insertCols)
	for i, it := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*insertCols + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d)", base, base+1, base+2, base+3, base+4, base+5)
		args = append(args,
			strings.ToLower(it.Community), it.ID, it.Author, string(it.Kind),
			it.CreatedAt.UTC(), normalize.Sanitize(it.Text))
	}
	sb.WriteString(` ON CONFLICT (community, id) DO NOTHING`)
	tag, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, perr.FromPostgres(err, "dumps: insert items")
	}
	return int(tag.RowsAffected()), nil
}

// Stream implements Storage
func (s *pg) Stream(ctx context.Context, communities []string, fn func(activity.Item) error) error {
	lower := make([]string, len(communities))
	for i, c := range communities {
		lower[i] = strings.ToLower(c)
	}
	var cbErr error
	err := store.Each(ctx, s.q, func(r store.Row) error {
		var (
			it   activity.Item
			kind string
			at   time.Time
		)
		if err := r.Scan(&it.Community, &it.ID, &it.Author, &kind, &at, &it.Text); err != nil {
			return err
		}
		it.Kind, it.CreatedAt = activity.Kind(kind), at.UTC()
		cbErr = fn(it)
		return cbErr
	}, `
		SELECT community, id, author, kind, created_at, body
		FROM dump_items
		WHERE community = ANY($1)
		ORDER BY author, created_at, id
	`, lower)
	if cbErr != nil {
		return cbErr
	}
	return perr.FromPostgres(err, "dumps: stream items")
}

// Tally implements Storage
func (s *pg) Tally(ctx context.Context) (Tally, error) {
	total, err := store.Scalar[int64](ctx, s.q, `SELECT count(*) FROM dump_items`)
	if err != nil {
		return Tally{}, perr.FromPostgres(err, "dumps: count items")
	}
	type count struct {
		community string
		n         int64
	}
	counts, err := store.Many(ctx, s.q, func(r store.Row) (count, error) {
		var c count
		err := r.Scan(&c.community, &c.n)
		return c, err
	}, `SELECT community, count(*) FROM dump_items GROUP BY community ORDER BY community`)
	if err != nil {
		return Tally{}, perr.FromPostgres(err, "dumps: count items by community")
	}
	t := Tally{Total: total, ByCommunity: make(map[string]int64, len(counts))}
	for _, c := range counts {
		t.ByCommunity[c.community] = c.n
	}
	return t, nil
}
