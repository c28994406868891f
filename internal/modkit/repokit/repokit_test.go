package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"subshift/internal/platform/store"
)

type fakeTag struct{}

func (fakeTag) String() string      { return "SET" }
func (fakeTag) RowsAffected() int64 { return 0 }

// fakeTx records every Exec, inside or outside a transaction
type fakeTx struct {
	execs []string
	txs   int
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return fakeTag{}, nil
}

func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row         { return nil }

func (f *fakeTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	f.txs++
	return fn(f)
}

func TestBindFuncAndMustBind(t *testing.T) {
	b := BindFunc[string](func(q Queryer) string {
		if q == nil {
			return "nil"
		}
		return "bound"
	})
	if got := MustBind[string](b, &fakeTx{}); got != "bound" {
		t.Fatalf("MustBind = %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("MustBind(nil) should panic")
		}
	}()
	_ = MustBind[string](b, nil)
}

func TestWithBeginHooks_RunsSetLocalFirst(t *testing.T) {
	inner := &fakeTx{}
	tx := WithBeginHooks(inner, SetLocal("synchronous_commit", "off"))

	err := WithTx(context.Background(), tx, func(q Queryer) error {
		_, err := q.Exec(context.Background(), "INSERT INTO dump_items DEFAULT VALUES")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if inner.txs != 1 || len(inner.execs) != 2 {
		t.Fatalf("txs=%d execs=%v", inner.txs, inner.execs)
	}
	if inner.execs[0] != "SET LOCAL synchronous_commit = off" || !strings.HasPrefix(inner.execs[1], "INSERT") {
		t.Fatalf("hook order wrong: %v", inner.execs)
	}
}

func TestWithBeginHooks_HookErrorAborts(t *testing.T) {
	inner := &fakeTx{}
	boom := errors.New("boom")
	tx := WithBeginHooks(inner, func(context.Context, Queryer) error { return boom })
	called := false
	err := tx.Tx(context.Background(), func(Queryer) error { called = true; return nil })
	if !errors.Is(err, boom) || called {
		t.Fatalf("err=%v called=%v", err, called)
	}
}
