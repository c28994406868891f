package store

import (
	"context"
	"fmt"
	"time"

	"subshift/internal/platform/retry"
	"subshift/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 6
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffCeiling        = 2 * time.Second
)

// pingSleep is swapped in tests
var pingSleep = retry.SleepCtx

// openPG opens pg and wraps it with our sql adapter once the pool answers
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}
	if err := pingPool(ctx, cfg.PG, p.Pool.Ping); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// pingPool retries ping with a doubling backoff; the pool is pinged directly so no trace line is emitted
func pingPool(ctx context.Context, cfg PGConfig, ping func(context.Context) error) error {
	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	policy := retry.Policy{Base: backoffStart, Cap: backoffCeiling}

	var lastErr error
	for i := range attempts {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = ping(toCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i == attempts-1 {
			break
		}
		if err := pingSleep(ctx, policy.Backoff(i)); err != nil {
			return err
		}
	}
	return fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}
