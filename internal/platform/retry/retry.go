// Package retry runs upstream calls under a throttling-aware backoff loop.
//
// Only throttling (perr.ErrorCodeTooManyRequests) is retried. Every other
// failure aborts at once so the caller can log it and move on with whatever
// partial data it already holds.
package retry

import (
	"context"
	"time"

	"subshift/internal/platform/config"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
)

const (
	defaultAttempts = 3
	defaultBase     = time.Second
	defaultCap      = 30 * time.Second
)

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy bounds the loop. Zero values take the defaults
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration

	// Sleep is the suspension seam; nil means SleepCtx
	Sleep SleepFunc
}

// Default returns the stock policy: 3 attempts, 1s base, 30s cap
func Default() Policy {
	return Policy{MaxAttempts: defaultAttempts, Base: defaultBase, Cap: defaultCap}
}

// FromConfig reads CORE_RETRY_* overrides
func FromConfig(cfg config.Conf) Policy {
	rc := cfg.Prefix("CORE_RETRY_")
	return Policy{
		MaxAttempts: rc.MayInt("MAX_ATTEMPTS", defaultAttempts),
		Base:        rc.MayDuration("BASE", defaultBase),
		Cap:         rc.MayDuration("CAP", defaultCap),
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultAttempts
	}
	if p.Base <= 0 {
		p.Base = defaultBase
	}
	if p.Cap <= 0 {
		p.Cap = defaultCap
	}
	if p.Sleep == nil {
		p.Sleep = SleepCtx
	}
	return p
}

// Backoff is min(Cap, Base * 2^attempt) for a zero-based attempt index
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.normalized()
	d := p.Base
	for range attempt {
		d *= 2
		if d >= p.Cap {
			return p.Cap
		}
	}
	return min(d, p.Cap)
}

// Do calls fn until it succeeds, fails with something other than throttling,
// or the attempts run out. No pause follows the final attempt.
func Do[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	p = p.normalized()
	log := logger.C(ctx)
	var zero T
	var last error
	for attempt := range p.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !perr.IsThrottled(err) {
			log.Warn().Err(err).Str("op", op).Str("code", perr.CodeOf(err).String()).Msg("upstream call failed")
			return zero, perr.WithOp(err, op)
		}
		last = err
		if attempt == p.MaxAttempts-1 {
			break
		}
		wait := p.Backoff(attempt)
		log.Warn().Str("op", op).Int("attempt", attempt+1).Int("max_attempts", p.MaxAttempts).
			Dur("sleep", wait).Msg("rate limited, backing off")
		if err := p.Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
	log.Error().Err(last).Str("op", op).Int("attempts", p.MaxAttempts).Msg("rate limit retries exhausted")
	return zero, perr.WithOp(perr.Wrapf(last, perr.ErrorCodeTooManyRequests, "%s: retries exhausted", op), op)
}

// Run is Do for calls without a result value
func Run(ctx context.Context, p Policy, op string, fn func(context.Context) error) error {
	_, err := Do(ctx, p, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// SleepCtx sleeps for d unless ctx finishes first
func SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
