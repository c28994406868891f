package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"subshift/internal/platform/config"
	perr "subshift/internal/platform/errors"
	kit "subshift/internal/platform/testkit"
)

func throttledThen(k int, calls *int) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		*calls++
		if *calls <= k {
			return "", perr.TooManyRequestsf("429 received")
		}
		return "ok", nil
	}
}

func TestBackoff(t *testing.T) {
	p := Default()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 30 * time.Second, 30 * time.Second}
	for i, w := range want {
		if got := p.Backoff(i); got != w {
			t.Fatalf("Backoff(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestDo_ThrottledKTimes(t *testing.T) {
	for k := 0; k <= 4; k++ {
		var sl kit.Sleeps
		p := Policy{MaxAttempts: 3, Base: time.Second, Cap: 30 * time.Second, Sleep: sl.Sleep}
		calls := 0
		v, err := Do(context.Background(), p, "profile", throttledThen(k, &calls))

		if k < p.MaxAttempts {
			if err != nil || v != "ok" {
				t.Fatalf("k=%d: want success, got %q %v", k, v, err)
			}
			var want time.Duration
			for i := range k {
				want += p.Backoff(i)
			}
			if sl.Total() != want {
				t.Fatalf("k=%d: slept %v, want %v", k, sl.Total(), want)
			}
			continue
		}
		if !perr.IsThrottled(err) {
			t.Fatalf("k=%d: want throttled failure, got %v", k, err)
		}
		if perr.OpOf(err) != "profile" {
			t.Fatalf("k=%d: op lost: %v", k, err)
		}
		if calls != p.MaxAttempts {
			t.Fatalf("k=%d: calls = %d", k, calls)
		}
		// no pause after the final attempt
		if got := len(sl.All()); got != p.MaxAttempts-1 {
			t.Fatalf("k=%d: sleeps = %d", k, got)
		}
	}
}

func TestDo_NonThrottleAbortsImmediately(t *testing.T) {
	var sl kit.Sleeps
	calls := 0
	boom := perr.NotFoundf("user suspended")
	_, err := Do(context.Background(), Policy{Sleep: sl.Sleep}, "history", func(context.Context) (int, error) {
		calls++
		return 0, boom
	})
	if calls != 1 || len(sl.All()) != 0 {
		t.Fatalf("calls=%d sleeps=%v", calls, sl.All())
	}
	if !perr.IsCode(err, perr.ErrorCodeNotFound) || perr.OpOf(err) != "history" {
		t.Fatalf("err = %v", err)
	}
}

func TestDo_ForeignErrorKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Run(context.Background(), Policy{}, "listing", func(context.Context) error { return cause })
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Sleep: func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}}
	calls := 0
	_, err := Do(ctx, p, "listing", throttledThen(10, &calls))
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("CORE_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("CORE_RETRY_BASE", "250ms")
	t.Setenv("CORE_RETRY_CAP", "4s")
	p := FromConfig(config.New())
	if p.MaxAttempts != 5 || p.Base != 250*time.Millisecond || p.Cap != 4*time.Second {
		t.Fatalf("FromConfig = %+v", p)
	}
}

func TestSleepCtx(t *testing.T) {
	if err := SleepCtx(context.Background(), 0); err != nil {
		t.Fatalf("zero sleep: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled, got %v", err)
	}
}
