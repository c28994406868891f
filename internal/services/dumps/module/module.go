// Package module implements the dumps module
package module

import (
	"subshift/internal/modkit"
	"subshift/internal/modkit/repokit"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/validate"
	"subshift/internal/services/dumps/domain"
	"subshift/internal/services/dumps/repo"
	"subshift/internal/services/dumps/service"
)

// Ports exposed by the dumps module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New constructs the dumps module over deps.PG. A repokit.Binder[repo.Storage]
// override replaces the Postgres repo.
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	deps = deps.WithDefaults()
	b := modkit.Build(opts...)

	if deps.PG == nil {
		return nil, perr.New(perr.ErrorCodeUnavailable, "dumps: postgres is not configured (SERVICE_PGSQL_DBURL)")
	}
	cfg := FromConfig(deps.Cfg)
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	binder := modkit.Resolve[repokit.Binder[repo.Storage]](b, repo.NewPG())
	svc := service.New(deps.PG, binder, deps.Sink, deps.RetryPolicy(), service.Config{
		Dir:          cfg.Dir,
		Source:       cfg.Source,
		Target:       cfg.Target,
		Out:          cfg.Out,
		Batch:        cfg.Batch,
		IncludeRates: cfg.IncludeRates,
		MaxAttempts:  cfg.MaxAttempts,
	})
	return &Module{name: b.NameOr("dumps"), ports: Ports{Runner: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
