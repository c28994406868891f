package modkit

// Option mutates build configuration for a module
type Option func(*buildCfg)

// buildCfg is internal wiring state for options
type buildCfg struct {
	name     string
	ports    any
	overrides []any
}

// WithName sets a module name used in logs and registry
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPorts injects cross module ports declared by another module
// the concrete type is owned by the importing module
func WithPorts[T any](p T) Option {
	return func(c *buildCfg) { c.ports = p }
}

// WithOverride swaps a module collaborator, mostly for tests (a fake upstream
// source or a canned LLM). Resolve picks it for every port type it implements.
func WithOverride(v any) Option {
	return func(c *buildCfg) { c.overrides = append(c.overrides, v) }
}
