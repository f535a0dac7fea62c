// Package eligibility implements the fund eligibility rule engine.
//
// Evaluate is pure: it receives the wall-clock "now" as a parameter and
// never reads a global clock, so results are fully deterministic under test.
package eligibility

import (
	"fmt"
	"math"
	"time"

	fundmodels "github.com/pejotadev/fidlink/internal/fund/models"
	"github.com/pejotadev/fidlink/pkg/domain"
)

// maxFirstPaymentWindowDays bounds how far out the first installment may be
// scheduled. The window applies to every fund, independent of its criteria.
const maxFirstPaymentWindowDays = 45

// estimatedPaymentFraction is the fixed pre-filter heuristic: before any
// installment count is known, the monthly payment is estimated as 5% of the
// requested amount. This can admit or reject funds inconsistently with the
// optimizer's installment-aware calculation; that behavior is intentional
// and preserved.
const estimatedPaymentFraction = 0.05

// Request carries the client and loan facts a rule evaluation needs.
type Request struct {
	BirthDate        time.Time
	MonthlyIncome    float64
	RequestedAmount  float64
	Purpose          domain.LoanPurpose
	FirstPaymentDate time.Time
}

// Result is the outcome of evaluating one fund. Reasons is empty exactly
// when Eligible is true.
type Result struct {
	Fund     fundmodels.Fund `json:"fund"`
	Eligible bool            `json:"eligible"`
	Reasons  []string        `json:"reasons"`
}

// Evaluate runs every active criterion of the fund plus the global
// first-payment window rule against the request. Rules do not short-circuit:
// all of them run so Reasons is complete. Inactive criteria are skipped. A
// fund with zero active criteria is eligible by rule evaluation alone,
// subject only to the date window.
func Evaluate(req Request, fund fundmodels.Fund, criteria []fundmodels.Criteria, now time.Time) Result {
	result := Result{Fund: fund, Eligible: true, Reasons: []string{}}

	for _, c := range criteria {
		if !c.Active {
			continue
		}
		switch c.Kind {
		case fundmodels.KindMinAge:
			if age := AgeInYears(req.BirthDate, now); age < c.MinAge {
				result.fail(fmt.Sprintf("client must be at least %d years old", c.MinAge))
			}
		case fundmodels.KindMaxIncomeCommitmentPct:
			estimate := req.RequestedAmount * estimatedPaymentFraction
			if estimate/req.MonthlyIncome*100 > c.MaxIncomeCommitmentPct {
				result.fail(fmt.Sprintf("monthly payment would exceed %g%% of monthly income", c.MaxIncomeCommitmentPct))
			}
		case fundmodels.KindMinLoanAmount:
			if req.RequestedAmount < c.MinLoanAmount {
				result.fail(fmt.Sprintf("minimum loan amount is %.2f", c.MinLoanAmount))
			}
		case fundmodels.KindExcludedPurposes:
			if c.Excludes(req.Purpose) {
				result.fail(fmt.Sprintf("loans for %s are not allowed by this fund", req.Purpose))
			}
		}
	}

	switch days := DaysUntil(req.FirstPaymentDate, now); {
	case days <= 0:
		result.fail("first payment date must be in the future")
	case days > maxFirstPaymentWindowDays:
		result.fail(fmt.Sprintf("first payment date cannot be more than %d days from today", maxFirstPaymentWindowDays))
	}

	return result
}

func (r *Result) fail(reason string) {
	r.Eligible = false
	r.Reasons = append(r.Reasons, reason)
}

// AgeInYears is the floor of elapsed years: the year difference, minus one
// when now's month/day precede the birth month/day.
func AgeInYears(birthDate, now time.Time) int {
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// DaysUntil counts days from now to the target, rounding partial days up.
func DaysUntil(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}
