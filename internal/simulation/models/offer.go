package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Offer is a priced, fund-specific loan quote generated from a simulation.
//
// Invariants:
//   - LoanAmount, MonthlyPayment, TotalAmount, and Installments are positive
//   - InterestRate is positive
//   - Accepted transitions false→true exactly once; an accepted offer never
//     returns to pending
//
// Lifecycle: check CanAccept before calling Accepted. Accepted itself does
// not re-validate; guarding is the caller's contract, matching the
// validate-then-apply pattern used across the stores.
type Offer struct {
	ID             domain.OfferID      `json:"id"`
	SimulationID   domain.SimulationID `json:"simulation_id"`
	FundID         domain.FundID       `json:"fund_id"`
	LoanAmount     float64             `json:"loan_amount"`
	MonthlyPayment float64             `json:"monthly_payment"`
	Installments   int                 `json:"installments"`
	TotalAmount    float64             `json:"total_amount"`
	InterestRate   float64             `json:"interest_rate"`
	Accepted       bool                `json:"accepted"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func NewOffer(
	id domain.OfferID,
	simulationID domain.SimulationID,
	fundID domain.FundID,
	loanAmount, monthlyPayment float64,
	installments int,
	totalAmount, interestRate float64,
	now time.Time,
) (Offer, error) {
	if loanAmount <= 0 {
		return Offer{}, dErrors.New(dErrors.CodeInvariantViolation, "offer loan amount must be positive")
	}
	if monthlyPayment <= 0 {
		return Offer{}, dErrors.New(dErrors.CodeInvariantViolation, "offer monthly payment must be positive")
	}
	if installments <= 0 {
		return Offer{}, dErrors.New(dErrors.CodeInvariantViolation, "offer installments must be positive")
	}
	if totalAmount <= 0 {
		return Offer{}, dErrors.New(dErrors.CodeInvariantViolation, "offer total amount must be positive")
	}
	if interestRate <= 0 {
		return Offer{}, dErrors.New(dErrors.CodeInvariantViolation, "offer interest rate must be positive")
	}
	return Offer{
		ID:             id,
		SimulationID:   simulationID,
		FundID:         fundID,
		LoanAmount:     loanAmount,
		MonthlyPayment: monthlyPayment,
		Installments:   installments,
		TotalAmount:    totalAmount,
		InterestRate:   interestRate,
		Accepted:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanAccept checks the pending→accepted transition.
func (o Offer) CanAccept() error {
	if o.Accepted {
		return dErrors.New(dErrors.CodeConflict, "offer already accepted")
	}
	return nil
}

// WithAccepted returns a copy of the offer in the accepted state with a
// bumped UpdatedAt. Call CanAccept first.
func (o Offer) WithAccepted(now time.Time) Offer {
	next := o
	next.Accepted = true
	next.UpdatedAt = now
	return next
}

// WithAcceptanceReverted returns the offer back in the pending state.
// Compensation for when contract persistence fails after the accept.
func (o Offer) WithAcceptanceReverted(now time.Time) Offer {
	next := o
	next.Accepted = false
	next.UpdatedAt = now
	return next
}

// InstallmentDescription renders the quote in "12x of 989.69" form.
func (o Offer) InstallmentDescription() string {
	return fmt.Sprintf("%dx of %.2f", o.Installments, o.MonthlyPayment)
}

// MarshalJSON adds the derived installment description to the wire form.
func (o Offer) MarshalJSON() ([]byte, error) {
	type alias Offer
	return json.Marshal(struct {
		alias
		InstallmentDescription string `json:"installment_description"`
	}{alias(o), o.InstallmentDescription()})
}
