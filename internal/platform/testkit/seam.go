package testkit

import (
	"context"
	"sync"
	"testing"
	"time"
)

var seamMu sync.Mutex

// Swap replaces a package-level variable for the duration of the test
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial runs the test under a global lock so seam swaps do not interleave
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(func() { seamMu.Unlock() })
}

// Sleeps records requested pauses instead of sleeping
type Sleeps struct {
	mu  sync.Mutex
	got []time.Duration
}

// Sleep matches the func(ctx, d) error seam used by services and retry
func (s *Sleeps) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.got = append(s.got, d)
	s.mu.Unlock()
	return ctx.Err()
}

// All returns a copy of the recorded pauses
func (s *Sleeps) All() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.got...)
}

// Total sums the recorded pauses
func (s *Sleeps) Total() time.Duration {
	var sum time.Duration
	for _, d := range s.All() {
		sum += d
	}
	return sum
}
