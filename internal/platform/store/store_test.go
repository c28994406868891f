package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"subshift/internal/platform/config"
	kit "subshift/internal/platform/testkit"

	"github.com/rs/zerolog"
)

// fakeRows iterates a fixed grid of values
type fakeRows struct {
	data    [][]any
	i       int
	err     error
	closed  bool
	scanErr error
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dst ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.i-1]
	for i, d := range dst {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		}
	}
	return nil
}

func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            { r.closed = true }
func (r *fakeRows) Columns() []string { return []string{"author", "n"} }

type fakeRow struct{ v int }

func (r fakeRow) Scan(dst ...any) error { *(dst[0].(*int)) = r.v; return nil }

type fakeQ struct {
	rows    *fakeRows
	qErr    error
	lastSQL string
}

func (f *fakeQ) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }
func (f *fakeQ) Query(_ context.Context, sql string, _ ...any) (Rows, error) {
	f.lastSQL = sql
	if f.qErr != nil {
		return nil, f.qErr
	}
	return f.rows, nil
}
func (f *fakeQ) QueryRow(context.Context, string, ...any) Row { return fakeRow{v: 42} }

func TestScalar(t *testing.T) {
	n, err := Scalar[int](context.Background(), &fakeQ{}, "SELECT count(*) FROM dump_items")
	if err != nil || n != 42 {
		t.Fatalf("Scalar = %d, %v", n, err)
	}
}

func TestMany_ScansAllAndCloses(t *testing.T) {
	rs := &fakeRows{data: [][]any{{"alice", 2}, {"bob", 5}}}
	type pair struct {
		Author string
		N      int
	}
	got, err := Many(context.Background(), &fakeQ{rows: rs}, func(r Row) (pair, error) {
		var p pair
		return p, r.Scan(&p.Author, &p.N)
	}, "SELECT author, n FROM x")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != (pair{"bob", 5}) || !rs.closed {
		t.Fatalf("got=%v closed=%v", got, rs.closed)
	}
}

func TestEach_StopsOnCallbackErrorAndSurfacesErrs(t *testing.T) {
	stop := errors.New("stop")
	rs := &fakeRows{data: [][]any{{"a", 1}, {"b", 2}, {"c", 3}}}
	seen := 0
	err := Each(context.Background(), &fakeQ{rows: rs}, func(Row) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	}, "SELECT")
	if !errors.Is(err, stop) || seen != 2 || !rs.closed {
		t.Fatalf("err=%v seen=%d closed=%v", err, seen, rs.closed)
	}

	iterErr := errors.New("conn reset")
	err = Each(context.Background(), &fakeQ{rows: &fakeRows{err: iterErr}}, func(Row) error { return nil }, "SELECT")
	if !errors.Is(err, iterErr) {
		t.Fatalf("rows.Err should surface, got %v", err)
	}

	qErr := errors.New("syntax")
	if err := Each(context.Background(), &fakeQ{qErr: qErr}, func(Row) error { return nil }, "SELEC"); !errors.Is(err, qErr) {
		t.Fatalf("query error should surface, got %v", err)
	}
}

type pingTx struct {
	fakeQ
	err    error
	closed bool
}

func (p *pingTx) Tx(ctx context.Context, fn func(RowQuerier) error) error { return fn(p) }
func (p *pingTx) Ping(context.Context) error                             { return p.err }
func (p *pingTx) Close() error                                           { p.closed = true; return nil }

func TestGuardAndClose(t *testing.T) {
	var nilStore *Store
	if nilStore.Guard(context.Background()) == nil {
		t.Fatal("nil store should fail guard")
	}
	if err := (&Store{}).Guard(context.Background()); err != nil {
		t.Fatalf("no seams should pass, got %v", err)
	}
	down := &pingTx{err: errors.New("refused")}
	s := &Store{PG: down}
	err := s.Guard(context.Background())
	if err == nil {
		t.Fatal("expected ping error")
	}
	kit.MustContain(t, err.Error(), "pg: refused")
	if err := s.Close(); err != nil || !down.closed {
		t.Fatalf("close err=%v closed=%v", err, down.closed)
	}
}

func TestOpen_DisabledBackends(t *testing.T) {
	s, err := Open(context.Background(), Config{AppName: "subshift"}, WithLogger(zerolog.Nop()))
	if err != nil || s.PG != nil {
		t.Fatalf("Open disabled = %v, %v", s, err)
	}
	if _, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "::bad::"}}); err == nil {
		t.Fatal("bad url should bubble up")
	}
}

func TestPingPool_BacksOffThenGivesUp(t *testing.T) {
	kit.Serial(t)
	var sl kit.Sleeps
	kit.Swap(t, &pingSleep, sl.Sleep)

	calls := 0
	err := pingPool(context.Background(), PGConfig{ConnectRetries: 4, PingTimeout: time.Second}, func(context.Context) error {
		calls++
		return errors.New("starting up")
	})
	if err == nil || calls != 4 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
	want := []time.Duration{150 * time.Millisecond, 300 * time.Millisecond, 600 * time.Millisecond}
	got := sl.All()
	if len(got) != len(want) {
		t.Fatalf("sleeps = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sleep[%d] = %v want %v", i, got[i], want[i])
		}
	}

	calls = 0
	err = pingPool(context.Background(), PGConfig{}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("recovering ping: err=%v calls=%d", err, calls)
	}
}

func TestPGFromConfig(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://u:p@db:5432/subshift")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "9")
	c := PGFromConfig(config.New())
	if !c.Enabled || c.MaxConns != 9 || c.SlowQueryMs != 500 || c.LogSQL {
		t.Fatalf("PGFromConfig = %+v", c)
	}
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	if PGFromConfig(config.New()).Enabled {
		t.Fatal("empty DBURL should disable pg")
	}
}
