package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

func TestMonthlyPayment(t *testing.T) {
	t.Run("reference loan", func(t *testing.T) {
		// 10_000 at 2.75%/month over 12 installments.
		payment, err := MonthlyPayment(10000, 0.0275, 12)
		require.NoError(t, err)
		assert.InDelta(t, 989.69, payment, 0.01)
	})

	t.Run("one installment pays principal plus one period of interest", func(t *testing.T) {
		payment, err := MonthlyPayment(1000, 0.01, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1010.00, payment, 0.005)
	})

	tests := []struct {
		name    string
		pv      float64
		rate    float64
		periods int
	}{
		{"rejects zero present value", 0, 0.0275, 12},
		{"rejects negative present value", -100, 0.0275, 12},
		{"rejects zero periods", 10000, 0.0275, 0},
		{"rejects negative periods", 10000, 0.0275, -3},
		{"rejects zero rate", 10000, 0, 12},
		{"rejects negative rate", 10000, -0.01, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MonthlyPayment(tt.pv, tt.rate, tt.periods)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

// Payment times period count must reproduce the total within rounding
// tolerance for any valid input.
func TestTotalAmount_ConsistentWithPayment(t *testing.T) {
	cases := []struct {
		pv      float64
		rate    float64
		periods int
	}{
		{10000, 0.0275, 12},
		{500, 0.015, 6},
		{250000, 0.009, 48},
		{999.99, 0.05, 24},
	}

	for _, tc := range cases {
		payment, err := MonthlyPayment(tc.pv, tc.rate, tc.periods)
		require.NoError(t, err)

		total := TotalAmount(payment, tc.periods)
		assert.InDelta(t, payment*float64(tc.periods), total, 0.01)
		assert.Greater(t, total, tc.pv, "total repaid must exceed principal at positive rates")
	}
}

// MaxLoanAmount and MonthlyPayment are inverses: the payment on the maximum
// principal equals the income cap within rounding.
func TestMaxLoanAmount_InverseOfMonthlyPayment(t *testing.T) {
	cases := []struct {
		income  float64
		pct     float64
		rate    float64
		periods int
	}{
		{5000, 20, 0.0275, 12},
		{3200, 30, 0.019, 24},
		{12000, 15, 0.008, 36},
	}

	for _, tc := range cases {
		maxAmount, err := MaxLoanAmount(tc.income, tc.pct, tc.rate, tc.periods)
		require.NoError(t, err)

		payment, err := MonthlyPayment(maxAmount, tc.rate, tc.periods)
		require.NoError(t, err)
		assert.InDelta(t, tc.income*tc.pct/100, payment, 0.01)
	}
}

func TestMaxLoanAmount_Reference(t *testing.T) {
	// Income 5000, 20% cap, 2.75%/month, 12 installments.
	maxAmount, err := MaxLoanAmount(5000, 20, 0.0275, 12)
	require.NoError(t, err)
	assert.InDelta(t, 10104.20, maxAmount, 0.01)
}

func TestMaxLoanAmount_Preconditions(t *testing.T) {
	_, err := MaxLoanAmount(0, 20, 0.0275, 12)
	assert.Error(t, err)
	_, err = MaxLoanAmount(5000, 20, 0, 12)
	assert.Error(t, err, "zero rate singularity must be rejected")
	_, err = MaxLoanAmount(5000, 20, 0.0275, 0)
	assert.Error(t, err)
}

func TestValidateIncomeCommitment(t *testing.T) {
	assert.True(t, ValidateIncomeCommitment(1000, 5000, 20))
	assert.True(t, ValidateIncomeCommitment(999.99, 5000, 20))
	assert.False(t, ValidateIncomeCommitment(1000.01, 5000, 20))
}

func TestCommitmentPercentage(t *testing.T) {
	assert.Equal(t, 19.79, CommitmentPercentage(989.69, 5000))
	assert.Equal(t, 100.0, CommitmentPercentage(5000, 5000))
}

func TestSchedule(t *testing.T) {
	first := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	entries, err := Schedule(10000, 0.0275, 12, first)
	require.NoError(t, err)
	require.Len(t, entries, 12)

	t.Run("due dates advance monthly", func(t *testing.T) {
		assert.Equal(t, first, entries[0].DueDate)
		assert.Equal(t, first.AddDate(0, 11, 0), entries[11].DueDate)
	})

	t.Run("balance reaches exactly zero", func(t *testing.T) {
		assert.True(t, entries[11].RemainingBalance.IsZero(),
			"got %s", entries[11].RemainingBalance)
	})

	t.Run("principal parts sum to the loan amount", func(t *testing.T) {
		sum := entries[0].Principal
		for _, e := range entries[1:] {
			sum = sum.Add(e.Principal)
		}
		assert.Equal(t, "10000.00", sum.StringFixed(2))
	})

	t.Run("interest declines over the life of the loan", func(t *testing.T) {
		assert.True(t, entries[0].Interest.GreaterThan(entries[11].Interest))
	})

	t.Run("propagates PMT preconditions", func(t *testing.T) {
		_, err := Schedule(0, 0.0275, 12, first)
		assert.Error(t, err)
	})
}
