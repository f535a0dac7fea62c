package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pejotadev/fidlink/internal/fund/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
)

// Postgres persists the fund catalog.
//
// Schema:
//
//	CREATE TABLE funds (
//	    id                 UUID PRIMARY KEY,
//	    name               TEXT NOT NULL,
//	    base_interest_rate DOUBLE PRECISION NOT NULL,
//	    active             BOOLEAN NOT NULL,
//	    created_at         TIMESTAMPTZ NOT NULL,
//	    updated_at         TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE fund_criteria (
//	    id                UUID PRIMARY KEY,
//	    fund_id           UUID NOT NULL REFERENCES funds(id),
//	    kind              TEXT NOT NULL,
//	    active            BOOLEAN NOT NULL,
//	    min_age           INTEGER NOT NULL DEFAULT 0,
//	    max_commitment    DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    min_loan_amount   DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    excluded_purposes TEXT[] NOT NULL DEFAULT '{}',
//	    created_at        TIMESTAMPTZ NOT NULL,
//	    updated_at        TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, f models.Fund) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO funds (id, name, base_interest_rate, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(f.ID), f.Name, f.BaseInterestRate, f.Active, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create fund: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, f models.Fund) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE funds
		SET name = $2, base_interest_rate = $3, active = $4, updated_at = $5
		WHERE id = $1
	`, uuid.UUID(f.ID), f.Name, f.BaseInterestRate, f.Active, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update fund: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fund: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.FundID) (models.Fund, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, base_interest_rate, active, created_at, updated_at
		FROM funds WHERE id = $1
	`, uuid.UUID(id))
	return scanFund(row)
}

func (s *Postgres) ListActive(ctx context.Context) ([]models.Fund, error) {
	return s.list(ctx, `
		SELECT id, name, base_interest_rate, active, created_at, updated_at
		FROM funds WHERE active ORDER BY name
	`)
}

func (s *Postgres) ListAll(ctx context.Context) ([]models.Fund, error) {
	return s.list(ctx, `
		SELECT id, name, base_interest_rate, active, created_at, updated_at
		FROM funds ORDER BY name
	`)
}

func (s *Postgres) list(ctx context.Context, query string) ([]models.Fund, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list funds: %w", err)
	}
	defer rows.Close()

	var out []models.Fund
	for rows.Next() {
		f, err := scanFund(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateCriteria(ctx context.Context, c models.Criteria) error {
	purposes := make([]string, 0, len(c.ExcludedPurposes))
	for _, p := range c.ExcludedPurposes {
		purposes = append(purposes, p.String())
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fund_criteria
			(id, fund_id, kind, active, min_age, max_commitment, min_loan_amount, excluded_purposes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uuid.UUID(c.ID), uuid.UUID(c.FundID), string(c.Kind), c.Active,
		c.MinAge, c.MaxIncomeCommitmentPct, c.MinLoanAmount, pq.Array(purposes),
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create criteria: %w", err)
	}
	return nil
}

func (s *Postgres) ListActiveCriteria(ctx context.Context, fundID domain.FundID) ([]models.Criteria, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fund_id, kind, active, min_age, max_commitment, min_loan_amount, excluded_purposes, created_at, updated_at
		FROM fund_criteria WHERE fund_id = $1 AND active
		ORDER BY created_at
	`, uuid.UUID(fundID))
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	defer rows.Close()

	var out []models.Criteria
	for rows.Next() {
		var (
			c        models.Criteria
			id, fid  uuid.UUID
			kind     string
			purposes []string
		)
		if err := rows.Scan(&id, &fid, &kind, &c.Active, &c.MinAge,
			&c.MaxIncomeCommitmentPct, &c.MinLoanAmount, pq.Array(&purposes),
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan criteria: %w", err)
		}
		c.ID = domain.CriteriaID(id)
		c.FundID = domain.FundID(fid)
		c.Kind = models.CriteriaKind(kind)
		for _, p := range purposes {
			c.ExcludedPurposes = append(c.ExcludedPurposes, domain.LoanPurpose(p))
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFund(row rowScanner) (models.Fund, error) {
	var (
		f  models.Fund
		id uuid.UUID
	)
	err := row.Scan(&id, &f.Name, &f.BaseInterestRate, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Fund{}, sentinel.ErrNotFound
		}
		return models.Fund{}, fmt.Errorf("scan fund: %w", err)
	}
	f.ID = domain.FundID(id)
	return f, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23503"
}
