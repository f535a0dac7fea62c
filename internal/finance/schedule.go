package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleEntry is one period of an amortization schedule.
type ScheduleEntry struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Payment          decimal.Decimal `json:"payment"`
	Interest         decimal.Decimal `json:"interest"`
	Principal        decimal.Decimal `json:"principal"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// Schedule expands a loan into its per-period amortization rows. Due dates
// advance one calendar month per period starting at firstPaymentDate. The
// last row absorbs the rounding residue so the balance lands on exactly
// zero.
//
// Preconditions match MonthlyPayment: positive principal, rate, and periods.
func Schedule(principal, monthlyRate float64, periods int, firstPaymentDate time.Time) ([]ScheduleEntry, error) {
	payment, err := MonthlyPayment(principal, monthlyRate, periods)
	if err != nil {
		return nil, err
	}

	paymentDec := decimal.NewFromFloat(payment)
	rate := decimal.NewFromFloat(monthlyRate)
	remaining := decimal.NewFromFloat(principal).Round(2)

	entries := make([]ScheduleEntry, 0, periods)
	for period := 1; period <= periods; period++ {
		interest := remaining.Mul(rate).Round(2)
		principalPart := paymentDec.Sub(interest)
		rowPayment := paymentDec

		if period == periods {
			// Final installment clears whatever is left.
			principalPart = remaining
			rowPayment = principalPart.Add(interest)
		}

		remaining = remaining.Sub(principalPart)
		entries = append(entries, ScheduleEntry{
			Period:           period,
			DueDate:          firstPaymentDate.AddDate(0, period-1, 0),
			Payment:          rowPayment.Round(2),
			Interest:         interest,
			Principal:        principalPart.Round(2),
			RemainingBalance: remaining.Round(2),
		})
	}
	return entries, nil
}
