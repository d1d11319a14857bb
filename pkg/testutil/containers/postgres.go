//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// assignmentsSchema is the schema the assignment store expects. Kept here so
// integration tests run against the same shape migrations produce.
const assignmentsSchema = `
CREATE TABLE IF NOT EXISTS assignments (
	id               UUID PRIMARY KEY,
	policy_id        UUID NOT NULL,
	user_id          UUID NOT NULL,
	user_email       TEXT NOT NULL,
	user_name        TEXT NOT NULL,
	status           TEXT NOT NULL,
	reminder_count   INT NOT NULL DEFAULT 0,
	magic_link_token TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	due_at           TIMESTAMPTZ,
	viewed_at        TIMESTAMPTZ,
	acknowledged_at  TIMESTAMPTZ,
	declined_at      TIMESTAMPTZ,
	has_receipt      BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (policy_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_assignments_policy_status ON assignments (policy_id, status);
`

// PostgresContainer wraps a testcontainers Postgres instance with the
// assignments schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("attest"),
		tcpostgres.WithUsername("attest"),
		tcpostgres.WithPassword("attest"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, assignmentsSchema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{Container: container, DSN: dsn, DB: db}
	t.Cleanup(func() {
		_ = pc.DB.Close()
		_ = pc.Container.Terminate(context.Background())
	})
	return pc
}

// TruncateTables clears the named tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx,
		fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	return err
}
