package modkit

// Built is a plain struct with the fields modules care about
type Built struct {
	Name  string
	Ports any

	overrides []any
}

// Build applies Option funcs to an internal buildCfg and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:      c.name,
		Ports:     c.ports,
		overrides: append([]any(nil), c.overrides...),
	}
}

// NameOr returns the configured name or def
func (b Built) NameOr(def string) string {
	if b.Name != "" {
		return b.Name
	}
	return def
}

// Resolve returns the latest override implementing T, or def when there is none
func Resolve[T any](b Built, def T) T {
	for i := len(b.overrides) - 1; i >= 0; i-- {
		if v, ok := b.overrides[i].(T); ok {
			return v
		}
	}
	return def
}
