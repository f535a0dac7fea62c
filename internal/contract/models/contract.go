package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Status is the contract lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Contract is a signed loan. Its financial terms are copied from the
// accepted offer at creation and never change afterwards; only Status and
// UpdatedAt move.
//
// Lifecycle: active → completed or active → cancelled. Completed and
// cancelled are terminal.
type Contract struct {
	ID               domain.ContractID   `json:"id"`
	ClientID         domain.ClientID     `json:"client_id"`
	FundID           domain.FundID       `json:"fund_id"`
	OfferID          domain.OfferID      `json:"offer_id"`
	ContractNumber   string              `json:"contract_number"`
	LoanAmount       float64             `json:"loan_amount"`
	MonthlyPayment   float64             `json:"monthly_payment"`
	Installments     int                 `json:"installments"`
	TotalAmount      float64             `json:"total_amount"`
	InterestRate     float64             `json:"interest_rate"`
	Purpose          domain.LoanPurpose  `json:"purpose"`
	FirstPaymentDate time.Time           `json:"first_payment_date"`
	Status           Status              `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func NewContract(
	id domain.ContractID,
	clientID domain.ClientID,
	fundID domain.FundID,
	offerID domain.OfferID,
	contractNumber string,
	loanAmount, monthlyPayment float64,
	installments int,
	totalAmount, interestRate float64,
	purpose domain.LoanPurpose,
	firstPaymentDate time.Time,
	now time.Time,
) (Contract, error) {
	if contractNumber == "" {
		return Contract{}, dErrors.New(dErrors.CodeInvariantViolation, "contract number must not be empty")
	}
	if loanAmount <= 0 {
		return Contract{}, dErrors.New(dErrors.CodeInvariantViolation, "contract loan amount must be positive")
	}
	if monthlyPayment <= 0 {
		return Contract{}, dErrors.New(dErrors.CodeInvariantViolation, "contract monthly payment must be positive")
	}
	if installments <= 0 {
		return Contract{}, dErrors.New(dErrors.CodeInvariantViolation, "contract installments must be positive")
	}
	if totalAmount <= 0 {
		return Contract{}, dErrors.New(dErrors.CodeInvariantViolation, "contract total amount must be positive")
	}
	if interestRate <= 0 {
		return Contract{}, dErrors.New(dErrors.CodeInvariantViolation, "contract interest rate must be positive")
	}
	if !purpose.IsValid() {
		return Contract{}, dErrors.New(dErrors.CodeInvariantViolation, "invalid loan purpose")
	}
	return Contract{
		ID:               id,
		ClientID:         clientID,
		FundID:           fundID,
		OfferID:          offerID,
		ContractNumber:   contractNumber,
		LoanAmount:       loanAmount,
		MonthlyPayment:   monthlyPayment,
		Installments:     installments,
		TotalAmount:      totalAmount,
		InterestRate:     interestRate,
		Purpose:          purpose,
		FirstPaymentDate: firstPaymentDate,
		Status:           StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CanComplete checks the active→completed transition.
func (c Contract) CanComplete() error {
	if c.Status != StatusActive {
		return dErrors.Newf(dErrors.CodeConflict, "cannot complete a %s contract", c.Status)
	}
	return nil
}

// CanCancel checks the active→cancelled transition.
func (c Contract) CanCancel() error {
	if c.Status != StatusActive {
		return dErrors.Newf(dErrors.CodeConflict, "cannot cancel a %s contract", c.Status)
	}
	return nil
}

// WithCompleted returns the contract in the completed state. Call
// CanComplete first.
func (c Contract) WithCompleted(now time.Time) Contract {
	c.Status = StatusCompleted
	c.UpdatedAt = now
	return c
}

// WithCancelled returns the contract in the cancelled state. Call CanCancel
// first.
func (c Contract) WithCancelled(now time.Time) Contract {
	c.Status = StatusCancelled
	c.UpdatedAt = now
	return c
}

// WithContractNumber returns the contract carrying a fresh number, used when
// a generated number collides with an existing one.
func (c Contract) WithContractNumber(number string) Contract {
	c.ContractNumber = number
	return c
}

// InstallmentDescription renders the terms in "12x of 989.69" form.
func (c Contract) InstallmentDescription() string {
	return fmt.Sprintf("%dx of %.2f", c.Installments, c.MonthlyPayment)
}

// MarshalJSON adds the derived installment description to the wire form.
func (c Contract) MarshalJSON() ([]byte, error) {
	type alias Contract
	return json.Marshal(struct {
		alias
		InstallmentDescription string `json:"installment_description"`
	}{alias(c), c.InstallmentDescription()})
}
