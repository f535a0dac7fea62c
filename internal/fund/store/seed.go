package store

import (
	"context"
	"time"

	"github.com/pejotadev/fidlink/internal/fund/models"
	"github.com/pejotadev/fidlink/pkg/domain"
)

// SeedDefaultCatalog loads the default three-fund catalog so a fresh process
// can price simulations without an admin step.
//
//	Fund A: 2.75%/mo, min age 21, commitment cap 20%
//	Fund B: 2.10%/mo, min age 30, commitment cap 25%, floor 20k, no business_investment
//	Fund C: 4.25%/mo, min age 18, commitment cap 32%, no travel
func SeedDefaultCatalog(s *InMemory) ([]models.Fund, error) {
	ctx := context.Background()
	now := time.Now()

	type seedCriteria func(domain.FundID) (models.Criteria, error)
	catalog := []struct {
		name     string
		rate     float64
		criteria []seedCriteria
	}{
		{
			name: "Fund A",
			rate: 0.0275,
			criteria: []seedCriteria{
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewMinAge(domain.NewCriteriaID(), id, 21, now)
				},
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewMaxIncomeCommitmentPct(domain.NewCriteriaID(), id, 20, now)
				},
			},
		},
		{
			name: "Fund B",
			rate: 0.0210,
			criteria: []seedCriteria{
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewMinAge(domain.NewCriteriaID(), id, 30, now)
				},
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewMaxIncomeCommitmentPct(domain.NewCriteriaID(), id, 25, now)
				},
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewMinLoanAmount(domain.NewCriteriaID(), id, 20000, now)
				},
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewExcludedPurposes(domain.NewCriteriaID(), id,
						[]domain.LoanPurpose{domain.LoanPurposeBusinessInvestment}, now)
				},
			},
		},
		{
			name: "Fund C",
			rate: 0.0425,
			criteria: []seedCriteria{
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewMinAge(domain.NewCriteriaID(), id, 18, now)
				},
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewMaxIncomeCommitmentPct(domain.NewCriteriaID(), id, 32, now)
				},
				func(id domain.FundID) (models.Criteria, error) {
					return models.NewExcludedPurposes(domain.NewCriteriaID(), id,
						[]domain.LoanPurpose{domain.LoanPurposeTravel}, now)
				},
			},
		},
	}

	funds := make([]models.Fund, 0, len(catalog))
	for _, entry := range catalog {
		f, err := models.NewFund(domain.NewFundID(), entry.name, entry.rate, now)
		if err != nil {
			return nil, err
		}
		if err := s.Create(ctx, f); err != nil {
			return nil, err
		}
		for _, build := range entry.criteria {
			c, err := build(f.ID)
			if err != nil {
				return nil, err
			}
			if err := s.CreateCriteria(ctx, c); err != nil {
				return nil, err
			}
		}
		funds = append(funds, f)
	}
	return funds, nil
}
