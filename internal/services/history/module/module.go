// Package module implements the history export module
package module

import (
	"subshift/internal/modkit"
	"subshift/internal/platform/validate"
	"subshift/internal/services/history/domain"
	"subshift/internal/services/history/service"
)

// Ports exposed by the history module
type Ports struct {
	Exporter domain.ExporterPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New constructs the history module
// wiring requires modkit.WithPorts(history/domain.Ports)
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	deps = deps.WithDefaults()
	b := modkit.Build(opts...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok || ports.History == nil {
		panic("history module: expected WithPorts(history/domain.Ports) with History")
	}

	cfg := FromConfig(deps.Cfg)
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	svc := service.New(ports.History, deps.Sink, deps.Sleep, service.Config{
		In: cfg.In, Out: cfg.Out, UserDelay: cfg.UserDelay,
	})
	return &Module{name: b.NameOr("history"), ports: Ports{Exporter: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
