package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pejotadev/fidlink/internal/contract/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
)

// Postgres persists contracts.
//
// Schema:
//
//	CREATE TABLE contracts (
//	    id                 UUID PRIMARY KEY,
//	    client_id          UUID NOT NULL REFERENCES clients(id),
//	    fund_id            UUID NOT NULL REFERENCES funds(id),
//	    offer_id           UUID NOT NULL REFERENCES offers(id),
//	    contract_number    TEXT NOT NULL UNIQUE,
//	    loan_amount        DOUBLE PRECISION NOT NULL,
//	    monthly_payment    DOUBLE PRECISION NOT NULL,
//	    installments       INTEGER NOT NULL,
//	    total_amount       DOUBLE PRECISION NOT NULL,
//	    interest_rate      DOUBLE PRECISION NOT NULL,
//	    purpose            TEXT NOT NULL,
//	    first_payment_date TIMESTAMPTZ NOT NULL,
//	    status             TEXT NOT NULL,
//	    created_at         TIMESTAMPTZ NOT NULL,
//	    updated_at         TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const contractColumns = `id, client_id, fund_id, offer_id, contract_number, loan_amount, monthly_payment, installments, total_amount, interest_rate, purpose, first_payment_date, status, created_at, updated_at`

// CreateIfNumberAvailable relies on the contract_number unique index to
// reject colliding numbers.
func (s *Postgres) CreateIfNumberAvailable(ctx context.Context, c models.Contract) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (`+contractColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, uuid.UUID(c.ID), uuid.UUID(c.ClientID), uuid.UUID(c.FundID), uuid.UUID(c.OfferID),
		c.ContractNumber, c.LoanAmount, c.MonthlyPayment, c.Installments,
		c.TotalAmount, c.InterestRate, c.Purpose.String(), c.FirstPaymentDate,
		string(c.Status), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create contract: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ContractID) (models.Contract, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contractColumns+` FROM contracts WHERE id = $1
	`, uuid.UUID(id))
	return scanContract(row)
}

func (s *Postgres) List(ctx context.Context, limit, offset int) ([]models.Contract, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}
	if limit <= 0 {
		limit = total
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contractColumns+` FROM contracts
		ORDER BY created_at DESC, contract_number
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	out := []models.Contract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Execute validates and mutates a contract while holding a row lock.
func (s *Postgres) Execute(ctx context.Context, id domain.ContractID,
	validate func(models.Contract) error, apply func(models.Contract) models.Contract) (models.Contract, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Contract{}, fmt.Errorf("begin contract tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE
	`, uuid.UUID(id))
	c, err := scanContract(row)
	if err != nil {
		return models.Contract{}, err
	}
	if err := validate(c); err != nil {
		return models.Contract{}, err
	}
	c = apply(c)

	if _, err := tx.ExecContext(ctx, `
		UPDATE contracts SET status = $2, updated_at = $3 WHERE id = $1
	`, uuid.UUID(c.ID), string(c.Status), c.UpdatedAt); err != nil {
		return models.Contract{}, fmt.Errorf("update contract: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Contract{}, fmt.Errorf("commit contract tx: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (models.Contract, error) {
	var (
		c               models.Contract
		id, clientID    uuid.UUID
		fundID, offerID uuid.UUID
		purpose, status string
	)
	err := row.Scan(&id, &clientID, &fundID, &offerID, &c.ContractNumber,
		&c.LoanAmount, &c.MonthlyPayment, &c.Installments, &c.TotalAmount,
		&c.InterestRate, &purpose, &c.FirstPaymentDate, &status,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Contract{}, sentinel.ErrNotFound
		}
		return models.Contract{}, fmt.Errorf("scan contract: %w", err)
	}
	c.ID = domain.ContractID(id)
	c.ClientID = domain.ClientID(clientID)
	c.FundID = domain.FundID(fundID)
	c.OfferID = domain.OfferID(offerID)
	c.Purpose = domain.LoanPurpose(purpose)
	c.Status = models.Status(status)
	return c, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
