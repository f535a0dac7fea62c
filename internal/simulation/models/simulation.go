package models

import (
	"time"

	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Simulation is a client's loan request context used to generate offers.
//
// Invariants:
//   - RequestedAmount is positive
//   - Installments is positive
//   - Purpose is a valid LoanPurpose
//   - Immutable after construction
type Simulation struct {
	ID               domain.SimulationID `json:"id"`
	ClientID         domain.ClientID     `json:"client_id"`
	RequestedAmount  float64             `json:"requested_amount"`
	Purpose          domain.LoanPurpose  `json:"purpose"`
	FirstPaymentDate time.Time           `json:"first_payment_date"`
	Installments     int                 `json:"installments"`
	CreatedAt        time.Time           `json:"created_at"`
}

func NewSimulation(
	id domain.SimulationID,
	clientID domain.ClientID,
	requestedAmount float64,
	purpose domain.LoanPurpose,
	firstPaymentDate time.Time,
	installments int,
	now time.Time,
) (Simulation, error) {
	if requestedAmount <= 0 {
		return Simulation{}, dErrors.New(dErrors.CodeInvariantViolation, "requested amount must be positive")
	}
	if installments <= 0 {
		return Simulation{}, dErrors.New(dErrors.CodeInvariantViolation, "installments must be positive")
	}
	if !purpose.IsValid() {
		return Simulation{}, dErrors.New(dErrors.CodeInvariantViolation, "invalid loan purpose")
	}
	return Simulation{
		ID:               id,
		ClientID:         clientID,
		RequestedAmount:  requestedAmount,
		Purpose:          purpose,
		FirstPaymentDate: firstPaymentDate,
		Installments:     installments,
		CreatedAt:        now,
	}, nil
}
