// Package money provides a validated monetary amount with two-decimal
// precision. Construction is a smart constructor returning (Money, error)
// rather than a panicking constructor, so validation composes without
// exception-style control flow.
package money

import (
	"math"

	"github.com/shopspring/decimal"

	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Money is an immutable non-negative amount rounded to 2 decimal places.
// Rounding is half away from zero (decimal.Round), matching the rest of the
// financial calculations in this repository.
type Money struct {
	amount decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{amount: decimal.Zero}

// New validates and constructs a Money from a float64 amount.
//
// Errors: CodeInvalidInput when the amount is negative, NaN, or infinite.
func New(amount float64) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, dErrors.New(dErrors.CodeInvalidInput, "monetary amount must be a finite number")
	}
	if amount < 0 {
		return Money{}, dErrors.New(dErrors.CodeInvalidInput, "monetary amount cannot be negative")
	}
	return Money{amount: decimal.NewFromFloat(amount).Round(2)}, nil
}

// FromDecimal constructs a Money from a decimal, applying the same
// validation and rounding as New.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, dErrors.New(dErrors.CodeInvalidInput, "monetary amount cannot be negative")
	}
	return Money{amount: d.Round(2)}, nil
}

// Amount returns the value as a float64. Safe for amounts within the range
// this system handles (loan principals, payments).
func (m Money) Amount() float64 {
	return m.amount.InexactFloat64()
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Equal reports whether two amounts are the same to the cent.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String renders the amount with exactly two decimal places.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}
