package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pejotadev/fidlink/internal/client/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/money"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
	"github.com/pejotadev/fidlink/pkg/taxid"
)

// Postgres persists clients.
//
// Schema:
//
//	CREATE TABLE clients (
//	    id             UUID PRIMARY KEY,
//	    name           TEXT NOT NULL,
//	    birth_date     TIMESTAMPTZ NOT NULL,
//	    tax_id         TEXT NOT NULL UNIQUE,
//	    monthly_income DOUBLE PRECISION NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// CreateIfTaxIDAvailable relies on the tax_id unique index to reject
// duplicate registrations.
func (s *Postgres) CreateIfTaxIDAvailable(ctx context.Context, c models.Client) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, birth_date, tax_id, monthly_income, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(c.ID), c.Name, c.BirthDate, c.TaxID.Digits(),
		c.MonthlyIncome.Amount(), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ClientID) (models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, birth_date, tax_id, monthly_income, created_at, updated_at
		FROM clients WHERE id = $1
	`, uuid.UUID(id))
	return scanClient(row)
}

func (s *Postgres) FindByTaxID(ctx context.Context, tid taxid.TaxID) (models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, birth_date, tax_id, monthly_income, created_at, updated_at
		FROM clients WHERE tax_id = $1
	`, tid.Digits())
	return scanClient(row)
}

func (s *Postgres) Update(ctx context.Context, c models.Client) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients SET monthly_income = $2, updated_at = $3 WHERE id = $1
	`, uuid.UUID(c.ID), c.MonthlyIncome.Amount(), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (models.Client, error) {
	var (
		id       uuid.UUID
		name     string
		rawTaxID string
		income   float64
		c        models.Client
	)
	err := row.Scan(&id, &name, &c.BirthDate, &rawTaxID, &income, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Client{}, sentinel.ErrNotFound
		}
		return models.Client{}, fmt.Errorf("scan client: %w", err)
	}
	tid, err := taxid.Parse(rawTaxID)
	if err != nil {
		return models.Client{}, fmt.Errorf("scan client tax id: %w", err)
	}
	m, err := money.New(income)
	if err != nil {
		return models.Client{}, fmt.Errorf("scan client income: %w", err)
	}
	c.ID = domain.ClientID(id)
	c.Name = name
	c.TaxID = tid
	c.MonthlyIncome = m
	return c, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
