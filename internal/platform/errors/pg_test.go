package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code string) *pgconn.PgError { return &pgconn.PgError{Code: code} }

func TestDBErrorCode(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"22001", ErrorCodeInvalidArgument},
		{"22P02", ErrorCodeInvalidArgument},
		{"22P05", ErrorCodeInvalidArgument},
		{"57P03", ErrorCodeUnavailable},
		{"40001", ErrorCodeDB},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(fmt.Errorf("wrapped: %w", pgErr(c.code)))
		if !ok || got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v,%v want %v", c.code, got, ok, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("plain")); ok {
		t.Fatalf("plain error should not map")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("nil should pass through")
	}
	err := FromPostgres(pgErr("23505"), "insert dump item")
	if !IsCode(err, ErrorCodeDuplicateKey) || !IsDuplicateKey(err) {
		t.Fatalf("want duplicate key, got %v", err)
	}
	if !IsCode(FromPostgres(stderrs.New("conn reset"), "x"), ErrorCodeDB) {
		t.Fatalf("foreign errors should map to DB")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Fatalf("nil is not retryable")
	}
	if !IsRetryable(pgErr("40001")) || !IsRetryable(pgErr("40P01")) {
		t.Fatalf("contention codes should be retryable")
	}
	if IsRetryable(pgErr("23505")) {
		t.Fatalf("unique violation is not retryable")
	}
	if IsRetryable(context.Canceled) {
		t.Fatalf("cancellation is not retryable")
	}
	if !IsRetryable(stderrs.New("ERROR: commit unexpectedly resulted in rollback")) {
		t.Fatalf("commit rollback text should be retryable")
	}
}
