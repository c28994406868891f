package testkit

import (
	"context"
	"os"
	"testing"
	"time"
)

var swapTarget = 10

func TestMustPanic(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	MustContain(t, "run_id=abc level=info", "run_id=abc")
}

func TestWriteFile(t *testing.T) {
	p := WriteFile(t, "users.csv", "name\nalice\n")
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "name\nalice\n" {
		t.Fatalf("WriteFile roundtrip failed: %q %v", b, err)
	}
}

func TestSwapRestores(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		Swap(t, &swapTarget, 42)
		if swapTarget != 42 {
			t.Fatalf("swap not applied")
		}
	})
	if swapTarget != 10 {
		t.Fatalf("swap not restored, got %d", swapTarget)
	}
}

func TestSleeps(t *testing.T) {
	var s Sleeps
	_ = s.Sleep(context.Background(), time.Second)
	_ = s.Sleep(context.Background(), 2*time.Second)
	if len(s.All()) != 2 || s.Total() != 3*time.Second {
		t.Fatalf("Sleeps = %v", s.All())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Sleep(ctx, time.Second); err == nil {
		t.Fatalf("cancelled ctx should surface")
	}
}
