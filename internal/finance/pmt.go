// Package finance implements the amortization math used by the offer
// optimizer and the contract assembler.
//
// All functions are pure and safe for concurrent use. Monetary results are
// rounded to 2 decimal places, half away from zero (decimal.Round); the
// power term is computed in float64 and only the final monetary value is
// rounded, so totals reproduce across platforms.
package finance

import (
	"math"

	"github.com/shopspring/decimal"

	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// MonthlyPayment computes the fixed installment for an amortized loan:
//
//	PMT = PV * i / (1 - (1+i)^-n)
//
// A zero or negative rate is rejected rather than special-cased to linear
// amortization; rate-free loans are outside this product.
//
// Errors: CodeInvalidInput when presentValue <= 0, periods <= 0, or
// monthlyRate <= 0. For inputs validated upstream these indicate a caller
// bug, not a user error.
func MonthlyPayment(presentValue, monthlyRate float64, periods int) (float64, error) {
	if presentValue <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "present value must be greater than 0")
	}
	if periods <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "number of payments must be greater than 0")
	}
	if monthlyRate <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "interest rate must be greater than 0")
	}

	denominator := 1 - math.Pow(1+monthlyRate, -float64(periods))
	payment := presentValue * monthlyRate / denominator
	return round2(payment), nil
}

// TotalAmount is the sum of all installments, rounded to 2 decimals.
func TotalAmount(monthlyPayment float64, periods int) float64 {
	total := decimal.NewFromFloat(monthlyPayment).Mul(decimal.NewFromInt(int64(periods)))
	return total.Round(2).InexactFloat64()
}

// MaxLoanAmount inverts the PMT formula: the largest principal whose
// installment keeps the client at or under maxCommitmentPct of income.
//
//	maxPayment = income * pct / 100
//	PV         = maxPayment * (1 - (1+i)^-n) / i
//
// Callers must guarantee monthlyRate > 0; the zero-rate singularity is the
// same one MonthlyPayment rejects.
func MaxLoanAmount(monthlyIncome, maxCommitmentPct, monthlyRate float64, periods int) (float64, error) {
	if monthlyIncome <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "monthly income must be greater than 0")
	}
	if periods <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "number of payments must be greater than 0")
	}
	if monthlyRate <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "interest rate must be greater than 0")
	}

	maxPayment := monthlyIncome * maxCommitmentPct / 100
	factor := 1 - math.Pow(1+monthlyRate, -float64(periods))
	return round2(maxPayment * factor / monthlyRate), nil
}

// ValidateIncomeCommitment reports whether a payment stays within the
// allowed percentage of income.
func ValidateIncomeCommitment(monthlyPayment, monthlyIncome, maxCommitmentPct float64) bool {
	return monthlyPayment/monthlyIncome*100 <= maxCommitmentPct
}

// CommitmentPercentage is the diagnostic payment-to-income percentage,
// rounded to 2 decimals.
func CommitmentPercentage(monthlyPayment, monthlyIncome float64) float64 {
	return round2(monthlyPayment / monthlyIncome * 100)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
