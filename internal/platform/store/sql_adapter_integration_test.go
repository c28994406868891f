//go:build integration_pg

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres boots a throwaway postgres:16-alpine and returns its DSN
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, port.Port())
}

func TestSQLAdapter_Integration_TxCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{AppName: "subshift-test", PG: PGConfig{Enabled: true, URL: startPostgres(t), LogSQL: true}})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Guard(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := s.PG.Exec(ctx, `CREATE TABLE t (id int PRIMARY KEY, body text)`); err != nil {
		t.Fatal(err)
	}
	if err := s.PG.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO t VALUES (1, 'kept')`)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("rollback please")
	err = s.PG.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO t VALUES (2, 'dropped')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Tx err = %v", err)
	}

	n, err := Scalar[int64](ctx, s.PG, `SELECT count(*) FROM t`)
	if err != nil || n != 1 {
		t.Fatalf("count = %d, %v", n, err)
	}
	bodies, err := Many(ctx, s.PG, func(r Row) (string, error) {
		var b string
		return b, r.Scan(&b)
	}, `SELECT body FROM t ORDER BY id`)
	if err != nil || len(bodies) != 1 || bodies[0] != "kept" {
		t.Fatalf("bodies = %v, %v", bodies, err)
	}
}
