// Package modkit provides module wiring and core deps
package modkit

import (
	"context"
	"time"

	"subshift/internal/modkit/repokit"
	"subshift/internal/platform/config"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/retry"
	"subshift/internal/platform/tabular"
)

// TableSink persists a table and reports the path actually written
type TableSink interface {
	Write(ctx context.Context, t *tabular.Table, path string) (string, error)
}

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log  logger.Logger
	Cfg  config.Conf
	PG   repokit.TxRunner
	Sink TableSink

	// Sleep paces upstream calls; nil means retry.SleepCtx
	Sleep func(ctx context.Context, d time.Duration) error
}

// WithDefaults fills the sink and sleep seams when a caller left them empty
func (d Deps) WithDefaults() Deps {
	if d.Sink == nil {
		d.Sink = tabular.NewSink()
	}
	if d.Sleep == nil {
		d.Sleep = retry.SleepCtx
	}
	return d
}

// RetryPolicy reads the shared backoff policy and binds it to the deps sleep seam
func (d Deps) RetryPolicy() retry.Policy {
	p := retry.FromConfig(d.Cfg)
	if d.Sleep != nil {
		p.Sleep = d.Sleep
	}
	return p
}
