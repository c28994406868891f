// Package module implements the scrape module
package module

import (
	"subshift/internal/adapters/ingest/reddit"
	"subshift/internal/modkit"
	"subshift/internal/platform/validate"
	"subshift/internal/services/scrape/domain"
	"subshift/internal/services/scrape/service"
)

// Ports exposed by the scrape module
type Ports struct {
	Indexer domain.IndexerPort
	Source  domain.Source
	History domain.History
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New constructs the scrape module. The Reddit client is built from REDDIT_*
// unless a domain.Source override is supplied; History falls back to the
// Source when it can walk user history too.
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	deps = deps.WithDefaults()
	b := modkit.Build(opts...)

	cfg := FromConfig(deps.Cfg)
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	src := modkit.Resolve[domain.Source](b, nil)
	if src == nil {
		ro := reddit.FromConfig(deps.Cfg)
		ro.Retry = deps.RetryPolicy()
		src = reddit.NewClient(ro)
	}

	// one client handle serves both listing and user history calls
	hist := modkit.Resolve[domain.History](b, nil)
	if hist == nil {
		hist, _ = src.(domain.History)
	}

	svc := service.New(src, service.Config{
		SubmissionDelay: cfg.SubmissionDelay,
		CommentDelay:    cfg.CommentDelay,
	}, deps.Sleep)

	return &Module{
		name:  b.NameOr("scrape"),
		ports: Ports{Indexer: svc, Source: src, History: hist},
	}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
