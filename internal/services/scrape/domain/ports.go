// Package domain declares the ports of the scrape service
package domain

import (
	"context"
	"iter"
	"time"

	"subshift/internal/core/activity"
)

// Source is the upstream listing surface the index is built from
type Source interface {
	Recent(ctx context.Context, community string, limit int) iter.Seq2[activity.Item, error]
	ProfileCreatedAt(ctx context.Context, user string) (*time.Time, error)
}

// History walks one user's own comments and submissions
type History interface {
	UserHistory(ctx context.Context, user, community string, limit int) iter.Seq2[activity.Item, error]
}

// IndexerPort builds a per-user activity index from a community's newest items
type IndexerPort interface {
	BuildIndex(ctx context.Context, community string, limit int) (*activity.Index, error)
}
