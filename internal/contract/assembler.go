// Package contract assembles signed loan contracts from accepted offers and
// derives their financial summaries.
package contract

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pejotadev/fidlink/internal/contract/models"
	simmodels "github.com/pejotadev/fidlink/internal/simulation/models"
)

const numberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NumberFor generates a contract number in the form
// CTR-<last 8 digits of unix milliseconds>-<6 random uppercase characters>.
// Uniqueness is probabilistic; the stores enforce it and the service retries
// once on collision.
func NumberFor(now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	code := make([]byte, 6)
	for i := range code {
		code[i] = numberCharset[rand.Intn(len(numberCharset))]
	}
	return fmt.Sprintf("CTR-%s-%s", millis, code)
}

// ValidateCreation collects every reason an offer cannot back a contract.
// An empty slice means the offer is contractable.
func ValidateCreation(offer simmodels.Offer) []string {
	var errs []string
	if offer.Accepted {
		errs = append(errs, "offer already accepted")
	}
	if offer.LoanAmount <= 0 {
		errs = append(errs, "loan amount must be greater than zero")
	}
	if offer.MonthlyPayment <= 0 {
		errs = append(errs, "monthly payment must be greater than zero")
	}
	if offer.Installments <= 0 {
		errs = append(errs, "number of installments must be greater than zero")
	}
	return errs
}

// Summary is the cost breakdown of a contract, 2-decimal rounded.
type Summary struct {
	TotalInterest         float64 `json:"total_interest"`
	EffectiveRate         float64 `json:"effective_rate"`
	MonthlyInterestAmount float64 `json:"monthly_interest_amount"`
}

// Summarize derives the contract's cost breakdown:
//
//	totalInterest         = totalAmount − loanAmount
//	effectiveRate         = (totalAmount/loanAmount − 1) × 100
//	monthlyInterestAmount = totalInterest / installments
//
// A zero loan amount would divide by zero here; ValidateCreation rejects it
// before a contract can exist.
func Summarize(c models.Contract) Summary {
	totalInterest := c.TotalAmount - c.LoanAmount
	effectiveRate := (c.TotalAmount/c.LoanAmount - 1) * 100
	monthlyInterest := totalInterest / float64(c.Installments)
	return Summary{
		TotalInterest:         round2(totalInterest),
		EffectiveRate:         round2(effectiveRate),
		MonthlyInterestAmount: round2(monthlyInterest),
	}
}

// EligibleForCancellation reports whether the contract may still be
// cancelled. Only active contracts qualify.
func EligibleForCancellation(c models.Contract) bool {
	return c.Status == models.StatusActive
}

// EarlyPayoffAmount estimates what settling the contract on payoffDate
// costs: installments already covered are approximated at one per 30 days
// elapsed, and the remaining ones are charged at the contracted payment. A
// payoff date at or before now costs the full total.
func EarlyPayoffAmount(c models.Contract, payoffDate, now time.Time) float64 {
	daysPassed := int(payoffDate.Sub(now).Hours() / 24)
	if daysPassed <= 0 {
		return c.TotalAmount
	}
	monthsPassed := daysPassed / 30
	remaining := c.Installments - monthsPassed
	if remaining < 0 {
		remaining = 0
	}
	return round2(float64(remaining) * c.MonthlyPayment)
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
