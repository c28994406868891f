package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	kit "subshift/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func TestOpen_ParseError(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "::not a url::"}, nil, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOpen_PoolSeam(t *testing.T) {
	kit.Serial(t)
	boom := errors.New("pool down")
	var (
		gotMax int32
		gotApp string
	)
	kit.Swap(t, &newPool, func(_ context.Context, c *pgxpool.Config) (*pgxpool.Pool, error) {
		gotMax = c.MaxConns
		gotApp = c.ConnConfig.RuntimeParams["application_name"]
		return nil, boom
	})
	mutated := false
	_, err := Open(context.Background(), Config{URL: "postgres://u:p@localhost:5432/db", MaxConns: 3, AppName: "subshift"}, nil,
		func(*pgxpool.Config) { mutated = true })
	if !errors.Is(err, boom) || gotMax != 3 || !mutated || gotApp != "subshift" {
		t.Fatalf("err=%v max=%d mutated=%v app=%q", err, gotMax, mutated, gotApp)
	}
}

func TestClose_NilSafe(t *testing.T) {
	var p *PG
	p.Close()
	(&PG{}).Close()
}

func TestCompact(t *testing.T) {
	in := "INSERT INTO dump_items\n\t(community, id)\r\n  VALUES ($1, $2)"
	if got := compact(in); got != "INSERT INTO dump_items (community, id) VALUES ($1, $2)" {
		t.Fatalf("compact = %q", got)
	}
}

func TestTracer_LevelsAndArgCap(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	args := make([]any, 20)
	for i := range args {
		args[i] = i
	}
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 1", Args: args, ElapsedUS: 1500})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 2", ElapsedUS: 900000, Slow: true})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 3", Err: errors.New("syntax")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines despite root level, got %d: %s", len(lines), buf.String())
	}
	kit.MustContain(t, lines[0], `"level":"info"`)
	kit.MustContain(t, lines[0], `"args_total":20`)
	kit.MustContain(t, lines[0], `"elapsed_ms":1.5`)
	kit.MustContain(t, lines[1], `"level":"warn"`)
	kit.MustContain(t, lines[2], `"level":"error"`)
	kit.MustContain(t, lines[2], `"error":"syntax"`)
}
