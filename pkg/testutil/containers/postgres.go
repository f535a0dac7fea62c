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

// PostgresContainer wraps a testcontainers Postgres instance with the
// application schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// schema mirrors the table layouts documented on each store's Postgres type.
const schema = `
CREATE TABLE IF NOT EXISTS clients (
    id             UUID PRIMARY KEY,
    name           TEXT NOT NULL,
    birth_date     TIMESTAMPTZ NOT NULL,
    tax_id         TEXT NOT NULL UNIQUE,
    monthly_income DOUBLE PRECISION NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS funds (
    id                 UUID PRIMARY KEY,
    name               TEXT NOT NULL,
    base_interest_rate DOUBLE PRECISION NOT NULL,
    active             BOOLEAN NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS fund_criteria (
    id                UUID PRIMARY KEY,
    fund_id           UUID NOT NULL REFERENCES funds(id),
    kind              TEXT NOT NULL,
    active            BOOLEAN NOT NULL,
    min_age           INTEGER NOT NULL DEFAULT 0,
    max_commitment    DOUBLE PRECISION NOT NULL DEFAULT 0,
    min_loan_amount   DOUBLE PRECISION NOT NULL DEFAULT 0,
    excluded_purposes TEXT[] NOT NULL DEFAULT '{}',
    created_at        TIMESTAMPTZ NOT NULL,
    updated_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS simulations (
    id                 UUID PRIMARY KEY,
    client_id          UUID NOT NULL,
    requested_amount   DOUBLE PRECISION NOT NULL,
    purpose            TEXT NOT NULL,
    first_payment_date TIMESTAMPTZ NOT NULL,
    installments       INTEGER NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS offers (
    id              UUID PRIMARY KEY,
    simulation_id   UUID NOT NULL REFERENCES simulations(id),
    fund_id         UUID NOT NULL,
    loan_amount     DOUBLE PRECISION NOT NULL,
    monthly_payment DOUBLE PRECISION NOT NULL,
    installments    INTEGER NOT NULL,
    total_amount    DOUBLE PRECISION NOT NULL,
    interest_rate   DOUBLE PRECISION NOT NULL,
    accepted        BOOLEAN NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS contracts (
    id                 UUID PRIMARY KEY,
    client_id          UUID NOT NULL,
    fund_id            UUID NOT NULL,
    offer_id           UUID NOT NULL,
    contract_number    TEXT NOT NULL UNIQUE,
    loan_amount        DOUBLE PRECISION NOT NULL,
    monthly_payment    DOUBLE PRECISION NOT NULL,
    installments       INTEGER NOT NULL,
    total_amount       DOUBLE PRECISION NOT NULL,
    interest_rate      DOUBLE PRECISION NOT NULL,
    purpose            TEXT NOT NULL,
    first_payment_date TIMESTAMPTZ NOT NULL,
    status             TEXT NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);
`

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fidlink_test"),
		tcpostgres.WithUsername("fidlink"),
		tcpostgres.WithPassword("fidlink"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
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
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	// Cleanup is handled by the singleton Manager and Ryuk, not t.Cleanup,
	// because the container is shared across test suites.

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
