package module

import (
	"slices"
	"sync"
)

// process-wide registry of built modules; main fills it during bootstrap
var (
	mu  sync.RWMutex
	reg = map[string]Module{}
)

// Register stores m under its name, replacing an earlier module of the same name
func Register(ms ...Module) {
	mu.Lock()
	defer mu.Unlock()
	for _, m := range ms {
		reg[m.Name()] = m
	}
}

// PortsAs returns the port set registered under name asserted to T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	m, ok := reg[name]
	mu.RUnlock()
	var zero T
	if !ok {
		return zero, false
	}
	out, ok := m.Ports().(T)
	if !ok {
		return zero, false
	}
	return out, true
}

// Names lists registered module names sorted
func Names() []string {
	mu.RLock()
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	mu.RUnlock()
	slices.Sort(out)
	return out
}

// Reset clears the registry for tests
func Reset() {
	mu.Lock()
	reg = map[string]Module{}
	mu.Unlock()
}
