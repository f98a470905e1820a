package pgdelta

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(ctx context.Context, t *testing.T, database string) (string, *sql.DB) {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:17",
		postgres.WithDatabase(database),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return dsn, conn
}

func TestScriptRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	mainDSN, _ := startPostgres(ctx, t, "main")
	branchDSN, branchConn := startPostgres(ctx, t, "branch")

	branchSchema := `
		CREATE SCHEMA app;

		CREATE TYPE app.order_status AS ENUM ('pending', 'paid', 'shipped');

		CREATE TABLE app.customers (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE app.orders (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES app.customers (id) ON DELETE CASCADE,
			status app.order_status NOT NULL DEFAULT 'pending',
			total NUMERIC(12, 2) NOT NULL CHECK (total >= 0)
		);

		CREATE INDEX orders_customer_id_idx ON app.orders (customer_id);
		CREATE INDEX orders_status_idx ON app.orders (status) WHERE status <> 'shipped';

		CREATE VIEW app.open_orders AS
			SELECT id, customer_id, total FROM app.orders WHERE status <> 'shipped';

		CREATE FUNCTION app.order_count(cid BIGINT) RETURNS BIGINT
			LANGUAGE sql STABLE
			AS $$ SELECT count(*) FROM app.orders WHERE customer_id = cid $$;

		COMMENT ON TABLE app.customers IS 'registered customers';
		COMMENT ON COLUMN app.orders.total IS 'gross total in account currency';
	`
	if _, err := branchConn.ExecContext(ctx, branchSchema); err != nil {
		t.Fatalf("Failed to set up branch schema: %v", err)
	}

	script, err := Script(ctx, mainDSN, branchDSN)
	if err != nil {
		t.Fatalf("Failed to compute script: %v", err)
	}
	if script == "" {
		t.Fatal("expected a non-empty migration script")
	}

	mainConn, err := sql.Open("pgx", mainDSN)
	if err != nil {
		t.Fatalf("Failed to connect to main: %v", err)
	}
	defer mainConn.Close()
	if _, err := mainConn.ExecContext(ctx, script); err != nil {
		t.Fatalf("Failed to apply script to main:\n%s\nerror: %v", script, err)
	}

	// Applying the script must leave nothing left to migrate.
	rest, err := Script(ctx, mainDSN, branchDSN)
	if err != nil {
		t.Fatalf("Failed to recompute script: %v", err)
	}
	if rest != "" {
		t.Errorf("script did not converge, residual changes:\n%s", rest)
	}
}

func TestScriptIdenticalDatabases(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	dsn, conn := startPostgres(ctx, t, "main")
	if _, err := conn.ExecContext(ctx, "CREATE TABLE t (id BIGINT PRIMARY KEY)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	script, err := Script(ctx, dsn, dsn)
	if err != nil {
		t.Fatalf("Failed to compute script: %v", err)
	}
	if script != "" {
		t.Errorf("identical databases produced a script:\n%s", script)
	}
}

func TestSnapshotReadsServerVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	dsn, _ := startPostgres(ctx, t, "main")

	cat, err := Snapshot(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to snapshot: %v", err)
	}
	if cat.ServerVersion < 14 {
		t.Errorf("implausible server version %d", cat.ServerVersion)
	}
	if _, ok := cat.Schemas["schema:public"]; !ok {
		t.Errorf("public schema missing from snapshot: %v", cat.Schemas)
	}
}
