package models

import (
	"time"

	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Fund is a lending fund in the catalog.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - BaseInterestRate is a positive monthly decimal fraction (e.g. 0.0275)
//   - Updates are copy-on-write: WithInterestRate and Deactivated return new
//     values, the receiver is never mutated
type Fund struct {
	ID               domain.FundID `json:"id"`
	Name             string        `json:"name"`
	BaseInterestRate float64       `json:"base_interest_rate"`
	Active           bool          `json:"active"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func NewFund(id domain.FundID, name string, baseInterestRate float64, now time.Time) (Fund, error) {
	if name == "" {
		return Fund{}, dErrors.New(dErrors.CodeInvariantViolation, "fund name cannot be empty")
	}
	if len(name) > 128 {
		return Fund{}, dErrors.New(dErrors.CodeInvariantViolation, "fund name must be 128 characters or less")
	}
	if baseInterestRate <= 0 {
		return Fund{}, dErrors.New(dErrors.CodeInvariantViolation, "fund base interest rate must be positive")
	}
	return Fund{
		ID:               id,
		Name:             name,
		BaseInterestRate: baseInterestRate,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// WithInterestRate returns a copy of the fund carrying the new rate.
func (f Fund) WithInterestRate(rate float64, now time.Time) (Fund, error) {
	if rate <= 0 {
		return Fund{}, dErrors.New(dErrors.CodeInvariantViolation, "fund base interest rate must be positive")
	}
	next := f
	next.BaseInterestRate = rate
	next.UpdatedAt = now
	return next, nil
}

// Deactivated returns a copy of the fund flagged inactive.
func (f Fund) Deactivated(now time.Time) Fund {
	next := f
	next.Active = false
	next.UpdatedAt = now
	return next
}

// Activated returns a copy of the fund flagged active again.
func (f Fund) Activated(now time.Time) Fund {
	next := f
	next.Active = true
	next.UpdatedAt = now
	return next
}
