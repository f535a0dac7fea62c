package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fundmodels "github.com/pejotadev/fidlink/internal/fund/models"
	"github.com/pejotadev/fidlink/pkg/domain"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func birthDateForAge(years int) time.Time {
	// Birthday was yesterday, so the age is exactly `years`.
	return now.AddDate(-years, 0, -1)
}

func testFund(t *testing.T) fundmodels.Fund {
	t.Helper()
	f, err := fundmodels.NewFund(domain.NewFundID(), "Fund A", 0.0275, now)
	require.NoError(t, err)
	return f
}

func baseRequest() Request {
	return Request{
		BirthDate:        birthDateForAge(35),
		MonthlyIncome:    5000,
		RequestedAmount:  10000,
		Purpose:          domain.LoanPurposeShopping,
		FirstPaymentDate: now.AddDate(0, 0, 10),
	}
}

func minAge(t *testing.T, fundID domain.FundID, years int) fundmodels.Criteria {
	t.Helper()
	c, err := fundmodels.NewMinAge(domain.NewCriteriaID(), fundID, years, now)
	require.NoError(t, err)
	return c
}

func maxCommitment(t *testing.T, fundID domain.FundID, pct float64) fundmodels.Criteria {
	t.Helper()
	c, err := fundmodels.NewMaxIncomeCommitmentPct(domain.NewCriteriaID(), fundID, pct, now)
	require.NoError(t, err)
	return c
}

func minLoan(t *testing.T, fundID domain.FundID, amount float64) fundmodels.Criteria {
	t.Helper()
	c, err := fundmodels.NewMinLoanAmount(domain.NewCriteriaID(), fundID, amount, now)
	require.NoError(t, err)
	return c
}

func excluded(t *testing.T, fundID domain.FundID, purposes ...domain.LoanPurpose) fundmodels.Criteria {
	t.Helper()
	c, err := fundmodels.NewExcludedPurposes(domain.NewCriteriaID(), fundID, purposes, now)
	require.NoError(t, err)
	return c
}

func TestEvaluate_ReferenceScenario(t *testing.T) {
	// Income 5000, min age 21, commitment cap 20%, requesting 10000 for
	// shopping with first payment in 10 days.
	fund := testFund(t)
	criteria := []fundmodels.Criteria{
		minAge(t, fund.ID, 21),
		maxCommitment(t, fund.ID, 20),
	}

	result := Evaluate(baseRequest(), fund, criteria, now)

	assert.True(t, result.Eligible)
	assert.Empty(t, result.Reasons)
}

func TestEvaluate_MinAge(t *testing.T) {
	fund := testFund(t)
	criteria := []fundmodels.Criteria{minAge(t, fund.ID, 21)}

	t.Run("underage client fails with reason", func(t *testing.T) {
		req := baseRequest()
		req.BirthDate = birthDateForAge(20)

		result := Evaluate(req, fund, criteria, now)
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Reasons, "client must be at least 21 years old")
	})

	t.Run("birthday today counts as the new age", func(t *testing.T) {
		req := baseRequest()
		req.BirthDate = now.AddDate(-21, 0, 0)

		result := Evaluate(req, fund, criteria, now)
		assert.True(t, result.Eligible)
	})

	t.Run("birthday tomorrow still the old age", func(t *testing.T) {
		req := baseRequest()
		req.BirthDate = now.AddDate(-21, 0, 1)

		result := Evaluate(req, fund, criteria, now)
		assert.False(t, result.Eligible)
	})

	t.Run("monotonic in age", func(t *testing.T) {
		// Raising the age of an eligible client can never flip min_age.
		for years := 21; years <= 90; years++ {
			req := baseRequest()
			req.BirthDate = birthDateForAge(years)
			result := Evaluate(req, fund, criteria, now)
			require.True(t, result.Eligible, "age %d should stay eligible", years)
		}
	})
}

func TestEvaluate_IncomeCommitment(t *testing.T) {
	fund := testFund(t)
	criteria := []fundmodels.Criteria{maxCommitment(t, fund.ID, 20)}

	t.Run("estimate within cap passes", func(t *testing.T) {
		// 5% of 10000 = 500; 500/5000 = 10% <= 20%.
		result := Evaluate(baseRequest(), fund, criteria, now)
		assert.True(t, result.Eligible)
	})

	t.Run("estimate over cap fails", func(t *testing.T) {
		req := baseRequest()
		req.RequestedAmount = 25000 // estimate 1250 → 25% of income

		result := Evaluate(req, fund, criteria, now)
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Reasons, "monthly payment would exceed 20% of monthly income")
	})

	t.Run("estimate exactly at cap passes", func(t *testing.T) {
		req := baseRequest()
		req.RequestedAmount = 20000 // estimate 1000 → exactly 20%

		result := Evaluate(req, fund, criteria, now)
		assert.True(t, result.Eligible)
	})
}

func TestEvaluate_MinLoanAmount(t *testing.T) {
	fund := testFund(t)
	criteria := []fundmodels.Criteria{minLoan(t, fund.ID, 20000)}

	req := baseRequest()
	result := Evaluate(req, fund, criteria, now)
	assert.False(t, result.Eligible)
	assert.Contains(t, result.Reasons, "minimum loan amount is 20000.00")

	req.RequestedAmount = 20000
	result = Evaluate(req, fund, criteria, now)
	assert.True(t, result.Eligible)
}

func TestEvaluate_ExcludedPurposes(t *testing.T) {
	fund := testFund(t)
	criteria := []fundmodels.Criteria{
		excluded(t, fund.ID, domain.LoanPurposeBusinessInvestment, domain.LoanPurposeTravel),
	}

	t.Run("blocked purpose fails", func(t *testing.T) {
		req := baseRequest()
		req.Purpose = domain.LoanPurposeTravel

		result := Evaluate(req, fund, criteria, now)
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Reasons, "loans for travel are not allowed by this fund")
	})

	t.Run("other purpose passes", func(t *testing.T) {
		result := Evaluate(baseRequest(), fund, criteria, now)
		assert.True(t, result.Eligible)
	})
}

func TestEvaluate_FirstPaymentWindow(t *testing.T) {
	fund := testFund(t)

	t.Run("50 days out is ineligible regardless of criteria", func(t *testing.T) {
		req := baseRequest()
		req.FirstPaymentDate = now.AddDate(0, 0, 50)

		result := Evaluate(req, fund, nil, now)
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Reasons, "first payment date cannot be more than 45 days from today")
	})

	t.Run("past date is ineligible", func(t *testing.T) {
		req := baseRequest()
		req.FirstPaymentDate = now.AddDate(0, 0, -1)

		result := Evaluate(req, fund, nil, now)
		assert.False(t, result.Eligible)
		assert.Contains(t, result.Reasons, "first payment date must be in the future")
	})

	t.Run("same instant is not in the future", func(t *testing.T) {
		req := baseRequest()
		req.FirstPaymentDate = now

		result := Evaluate(req, fund, nil, now)
		assert.False(t, result.Eligible)
	})

	t.Run("exactly 45 days out passes", func(t *testing.T) {
		req := baseRequest()
		req.FirstPaymentDate = now.AddDate(0, 0, 45)

		result := Evaluate(req, fund, nil, now)
		assert.True(t, result.Eligible)
	})
}

func TestEvaluate_RulesDoNotShortCircuit(t *testing.T) {
	fund := testFund(t)
	criteria := []fundmodels.Criteria{
		minAge(t, fund.ID, 21),
		minLoan(t, fund.ID, 20000),
		excluded(t, fund.ID, domain.LoanPurposeShopping),
	}

	req := baseRequest()
	req.BirthDate = birthDateForAge(19)
	req.FirstPaymentDate = now.AddDate(0, 0, 60)

	result := Evaluate(req, fund, criteria, now)
	assert.False(t, result.Eligible)
	assert.Len(t, result.Reasons, 4, "every failing rule must report: %v", result.Reasons)
}

func TestEvaluate_InactiveCriteriaSkipped(t *testing.T) {
	fund := testFund(t)
	blocking := minAge(t, fund.ID, 99).Deactivated(now)

	result := Evaluate(baseRequest(), fund, []fundmodels.Criteria{blocking}, now)
	assert.True(t, result.Eligible)
}

func TestEvaluate_NoActiveCriteria(t *testing.T) {
	// A fund with no active criteria is eligible by rule evaluation alone,
	// still subject to the date window.
	fund := testFund(t)

	result := Evaluate(baseRequest(), fund, nil, now)
	assert.True(t, result.Eligible)
	assert.Empty(t, result.Reasons)
}

func TestEvaluate_ReasonsEmptyIffEligible(t *testing.T) {
	fund := testFund(t)
	criteria := []fundmodels.Criteria{
		minAge(t, fund.ID, 21),
		maxCommitment(t, fund.ID, 20),
		minLoan(t, fund.ID, 1000),
	}

	cases := []Request{
		baseRequest(),
		func() Request { r := baseRequest(); r.BirthDate = birthDateForAge(18); return r }(),
		func() Request { r := baseRequest(); r.RequestedAmount = 500; return r }(),
		func() Request { r := baseRequest(); r.RequestedAmount = 50000; return r }(),
		func() Request { r := baseRequest(); r.FirstPaymentDate = now.AddDate(0, 0, 90); return r }(),
	}

	for _, req := range cases {
		result := Evaluate(req, fund, criteria, now)
		assert.Equal(t, result.Eligible, len(result.Reasons) == 0)
	}
}

func TestAgeInYears(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		want  int
	}{
		{"birthday passed this year", time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC), 36},
		{"birthday later this year", time.Date(1990, 11, 15, 0, 0, 0, 0, time.UTC), 35},
		{"birthday today", time.Date(1990, 9, 1, 0, 0, 0, 0, time.UTC), 36},
		{"born this year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeInYears(tt.birth, now))
		})
	}
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 10, DaysUntil(now.AddDate(0, 0, 10), now))
	assert.Equal(t, 0, DaysUntil(now, now))
	assert.Equal(t, -1, DaysUntil(now.AddDate(0, 0, -1), now))
	// Partial days round up, matching a calendar-day reading of the window.
	assert.Equal(t, 1, DaysUntil(now.Add(2*time.Hour), now))
}
