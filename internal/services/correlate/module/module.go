// Package module implements the correlate module
package module

import (
	"subshift/internal/modkit"
	"subshift/internal/platform/validate"
	"subshift/internal/services/correlate/domain"
	"subshift/internal/services/correlate/service"
)

// Ports exposed by the correlate module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New constructs the correlate module
// wiring requires modkit.WithPorts(correlate/domain.Ports), usually from the scrape module
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	deps = deps.WithDefaults()
	b := modkit.Build(opts...)

	// Basic guardrails against incorrect wiring
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("correlate module: expected WithPorts(correlate/domain.Ports)")
	}
	if ports.Indexer == nil || ports.History == nil {
		panic("correlate module: Ports missing Indexer or History")
	}

	cfg := FromConfig(deps.Cfg)
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	svc := service.New(ports, deps.Sink, deps.Sleep, service.Config{
		Source:           cfg.Source,
		Target:           cfg.Target,
		Limit:            cfg.Limit,
		TargetCap:        cfg.TargetCap,
		UserDelay:        cfg.UserDelay,
		Out:              cfg.Out,
		SourceHistory:    cfg.SourceHistory,
		IncludeRates:     cfg.IncludeRates,
		SourceThenTarget: cfg.SourceThenTarget,
		Targets:          cfg.Targets,
		MembershipCap:    cfg.MembershipCap,
		MembershipOut:    cfg.MembershipOut,
		MembershipWait:   cfg.MembershipWait,
	})
	return &Module{name: b.NameOr("correlate"), ports: Ports{Runner: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
