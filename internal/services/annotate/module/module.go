// Package module implements the annotate module
package module

import (
	"subshift/internal/adapters/llm"
	"subshift/internal/core/rubric"
	"subshift/internal/modkit"
	"subshift/internal/platform/validate"
	"subshift/internal/services/annotate/domain"
	"subshift/internal/services/annotate/service"
)

// Ports exposed by the annotate module
type Ports struct {
	Annotator domain.AnnotatorPort
}

// Module implements modkit.Module
type Module struct {
	name  string
	ports Ports
}

// New constructs the annotate module. The chat client is built from OPENAI_*
// unless a domain.Completer override is supplied.
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	deps = deps.WithDefaults()
	b := modkit.Build(opts...)

	cfg := FromConfig(deps.Cfg)
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}
	rb, err := rubric.Resolve(cfg.Rubric, cfg.RubricFile)
	if err != nil {
		return nil, err
	}

	completer := modkit.Resolve[domain.Completer](b, nil)
	if completer == nil {
		c, err := llm.New(llm.FromConfig(deps.Cfg))
		if err != nil {
			return nil, err
		}
		completer = c
	}

	svc := service.New(completer, rb, deps.RetryPolicy(), deps.Sink, service.Config{
		In: cfg.In, Out: cfg.Out, Column: cfg.Column, Head: cfg.Head,
	})
	return &Module{name: b.NameOr("annotate"), ports: Ports{Annotator: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
