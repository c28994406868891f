package repokit

import "reflect"

// Binder turns a Queryer (pool or open tx) into a repo of type T
// services keep the binder and bind per call so one repo works in and out of transactions
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind implements Binder
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds q, panicking on a nil binder or Queryer since both are wiring bugs
func MustBind[T any](b Binder[T], q Queryer) T {
	if b == nil {
		panic("repokit: nil Binder[" + reflect.TypeFor[T]().String() + "]")
	}
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}
