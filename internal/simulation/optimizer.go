// Package simulation builds optimized loan offers for eligible funds.
package simulation

import (
	"math"
	"time"

	"github.com/pejotadev/fidlink/internal/finance"
	fundmodels "github.com/pejotadev/fidlink/internal/fund/models"
	"github.com/pejotadev/fidlink/internal/simulation/models"
	"github.com/pejotadev/fidlink/pkg/domain"
)

// OfferInput is what the optimizer needs beyond the fund itself.
type OfferInput struct {
	RequestedAmount     float64
	ClientMonthlyIncome float64
	Installments        int
}

// BuildOptimizedOffer derives the best loan amount a fund can offer: the
// requested amount capped by the client's income commitment, subject to the
// fund's floor. Returns (zero Offer, false) when the fund cannot price the
// request:
//
//   - the fund declares no income-commitment cap (uncappable funds cannot
//     be priced), or
//   - the capped amount falls below the fund's minimum loan amount.
//
// Funds are independent; evaluation order never affects the result.
func BuildOptimizedOffer(
	simulationID domain.SimulationID,
	fund fundmodels.Fund,
	criteria []fundmodels.Criteria,
	input OfferInput,
	now time.Time,
) (models.Offer, bool, error) {
	maxCommitmentPct, ok := maxCommitmentOf(criteria)
	if !ok {
		return models.Offer{}, false, nil
	}

	maxAmount, err := finance.MaxLoanAmount(
		input.ClientMonthlyIncome, maxCommitmentPct, fund.BaseInterestRate, input.Installments)
	if err != nil {
		return models.Offer{}, false, err
	}

	finalAmount := math.Min(input.RequestedAmount, maxAmount)

	if floor, ok := minLoanAmountOf(criteria); ok && finalAmount < floor {
		return models.Offer{}, false, nil
	}

	payment, err := finance.MonthlyPayment(finalAmount, fund.BaseInterestRate, input.Installments)
	if err != nil {
		return models.Offer{}, false, err
	}
	total := finance.TotalAmount(payment, input.Installments)

	offer, err := models.NewOffer(
		domain.NewOfferID(), simulationID, fund.ID,
		finalAmount, payment, input.Installments, total, fund.BaseInterestRate, now)
	if err != nil {
		return models.Offer{}, false, err
	}
	return offer, true, nil
}

// maxCommitmentOf finds the fund's income-commitment cap. With repeated
// criteria of the same kind the first active one wins, matching criteria
// insertion order.
func maxCommitmentOf(criteria []fundmodels.Criteria) (float64, bool) {
	for _, c := range criteria {
		if c.Active && c.Kind == fundmodels.KindMaxIncomeCommitmentPct {
			return c.MaxIncomeCommitmentPct, true
		}
	}
	return 0, false
}

func minLoanAmountOf(criteria []fundmodels.Criteria) (float64, bool) {
	for _, c := range criteria {
		if c.Active && c.Kind == fundmodels.KindMinLoanAmount {
			return c.MinLoanAmount, true
		}
	}
	return 0, false
}
