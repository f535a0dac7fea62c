package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pejotadev/fidlink/internal/simulation/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
)

// Postgres persists simulations and offers.
//
// Schema:
//
//	CREATE TABLE simulations (
//	    id                 UUID PRIMARY KEY,
//	    client_id          UUID NOT NULL REFERENCES clients(id),
//	    requested_amount   DOUBLE PRECISION NOT NULL,
//	    purpose            TEXT NOT NULL,
//	    first_payment_date TIMESTAMPTZ NOT NULL,
//	    installments       INTEGER NOT NULL,
//	    created_at         TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE offers (
//	    id              UUID PRIMARY KEY,
//	    simulation_id   UUID NOT NULL REFERENCES simulations(id),
//	    fund_id         UUID NOT NULL REFERENCES funds(id),
//	    loan_amount     DOUBLE PRECISION NOT NULL,
//	    monthly_payment DOUBLE PRECISION NOT NULL,
//	    installments    INTEGER NOT NULL,
//	    total_amount    DOUBLE PRECISION NOT NULL,
//	    interest_rate   DOUBLE PRECISION NOT NULL,
//	    accepted        BOOLEAN NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL,
//	    updated_at      TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateSimulation(ctx context.Context, sim models.Simulation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO simulations (id, client_id, requested_amount, purpose, first_payment_date, installments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(sim.ID), uuid.UUID(sim.ClientID), sim.RequestedAmount,
		sim.Purpose.String(), sim.FirstPaymentDate, sim.Installments, sim.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create simulation: %w", err)
	}
	return nil
}

func (s *Postgres) FindSimulationByID(ctx context.Context, id domain.SimulationID) (models.Simulation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_id, requested_amount, purpose, first_payment_date, installments, created_at
		FROM simulations WHERE id = $1
	`, uuid.UUID(id))

	var (
		sim      models.Simulation
		sid, cid uuid.UUID
		purpose  string
	)
	err := row.Scan(&sid, &cid, &sim.RequestedAmount, &purpose,
		&sim.FirstPaymentDate, &sim.Installments, &sim.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Simulation{}, sentinel.ErrNotFound
		}
		return models.Simulation{}, fmt.Errorf("scan simulation: %w", err)
	}
	sim.ID = domain.SimulationID(sid)
	sim.ClientID = domain.ClientID(cid)
	sim.Purpose = domain.LoanPurpose(purpose)
	return sim, nil
}

// CreateOffers writes a batch of offers in a single transaction.
func (s *Postgres) CreateOffers(ctx context.Context, offers []models.Offer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin offers tx: %w", err)
	}
	defer tx.Rollback()

	for _, o := range offers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO offers
				(id, simulation_id, fund_id, loan_amount, monthly_payment, installments, total_amount, interest_rate, accepted, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, uuid.UUID(o.ID), uuid.UUID(o.SimulationID), uuid.UUID(o.FundID),
			o.LoanAmount, o.MonthlyPayment, o.Installments, o.TotalAmount,
			o.InterestRate, o.Accepted, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("create offer: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit offers tx: %w", err)
	}
	return nil
}

func (s *Postgres) FindOfferByID(ctx context.Context, id domain.OfferID) (models.Offer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, simulation_id, fund_id, loan_amount, monthly_payment, installments, total_amount, interest_rate, accepted, created_at, updated_at
		FROM offers WHERE id = $1
	`, uuid.UUID(id))
	return scanOffer(row)
}

func (s *Postgres) UpdateOffer(ctx context.Context, o models.Offer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE offers SET accepted = $2, updated_at = $3 WHERE id = $1
	`, uuid.UUID(o.ID), o.Accepted, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ExecuteOffer validates and mutates an offer while holding a row lock, so
// concurrent accepts serialize on the database.
func (s *Postgres) ExecuteOffer(ctx context.Context, id domain.OfferID,
	validate func(models.Offer) error, apply func(models.Offer) models.Offer) (models.Offer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Offer{}, fmt.Errorf("begin offer tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, simulation_id, fund_id, loan_amount, monthly_payment, installments, total_amount, interest_rate, accepted, created_at, updated_at
		FROM offers WHERE id = $1
		FOR UPDATE
	`, uuid.UUID(id))
	o, err := scanOffer(row)
	if err != nil {
		return models.Offer{}, err
	}
	if err := validate(o); err != nil {
		return models.Offer{}, err
	}
	o = apply(o)

	if _, err := tx.ExecContext(ctx, `
		UPDATE offers SET accepted = $2, updated_at = $3 WHERE id = $1
	`, uuid.UUID(o.ID), o.Accepted, o.UpdatedAt); err != nil {
		return models.Offer{}, fmt.Errorf("update offer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Offer{}, fmt.Errorf("commit offer tx: %w", err)
	}
	return o, nil
}

func (s *Postgres) ListOffersBySimulation(ctx context.Context, simID domain.SimulationID) ([]models.Offer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, simulation_id, fund_id, loan_amount, monthly_payment, installments, total_amount, interest_rate, accepted, created_at, updated_at
		FROM offers WHERE simulation_id = $1
		ORDER BY interest_rate
	`, uuid.UUID(simID))
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (models.Offer, error) {
	var (
		o             models.Offer
		id, simID, fn uuid.UUID
	)
	err := row.Scan(&id, &simID, &fn, &o.LoanAmount, &o.MonthlyPayment,
		&o.Installments, &o.TotalAmount, &o.InterestRate, &o.Accepted,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Offer{}, sentinel.ErrNotFound
		}
		return models.Offer{}, fmt.Errorf("scan offer: %w", err)
	}
	o.ID = domain.OfferID(id)
	o.SimulationID = domain.SimulationID(simID)
	o.FundID = domain.FundID(fn)
	return o, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
