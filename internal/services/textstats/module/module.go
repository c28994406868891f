// Package module implements the textstats module
package module

import (
	"subshift/internal/core/lexicon"
	"subshift/internal/core/sentiment"
	"subshift/internal/modkit"
	"subshift/internal/platform/validate"
	"subshift/internal/services/textstats/domain"
	"subshift/internal/services/textstats/service"
)

// Ports exposed by the textstats module
type Ports struct {
	Stats domain.StatsPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New constructs the textstats module over the embedded lexicons
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	deps = deps.WithDefaults()
	b := modkit.Build(opts...)

	cfg := FromConfig(deps.Cfg)
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}
	lx, err := lexicon.Default()
	if err != nil {
		return nil, err
	}
	an, err := sentiment.Default()
	if err != nil {
		return nil, err
	}
	svc := service.New(lx, an, deps.Sink, service.Config{
		In: cfg.In, Out: cfg.Out, Column: cfg.Column, Keywords: cfg.Keywords,
		Bins: cfg.Bins, RaterA: cfg.RaterA, RaterB: cfg.RaterB,
	})
	return &Module{name: b.NameOr("textstats"), ports: Ports{Stats: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
