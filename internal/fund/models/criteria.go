package models

import (
	"slices"
	"time"

	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// CriteriaKind enumerates the closed set of eligibility rule kinds. The
// eligibility engine dispatches on this tag; each kind owns exactly one of
// the typed payload fields on Criteria.
type CriteriaKind string

const (
	KindMinAge                 CriteriaKind = "min_age"
	KindMaxIncomeCommitmentPct CriteriaKind = "max_income_commitment_percentage"
	KindMinLoanAmount          CriteriaKind = "min_loan_amount"
	KindExcludedPurposes       CriteriaKind = "excluded_purposes"
)

// validCriteriaKinds is the single source of truth for valid kinds.
var validCriteriaKinds = map[CriteriaKind]bool{
	KindMinAge:                 true,
	KindMaxIncomeCommitmentPct: true,
	KindMinLoanAmount:          true,
	KindExcludedPurposes:       true,
}

// ParseCriteriaKind constructs a CriteriaKind from external input.
func ParseCriteriaKind(s string) (CriteriaKind, error) {
	k := CriteriaKind(s)
	if !validCriteriaKinds[k] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown criteria kind")
	}
	return k, nil
}

// Criteria is a single eligibility rule attached to a fund. A fund may carry
// several criteria, including repeated kinds; the engine evaluates all
// active ones. Construct via the per-kind constructors so the payload is
// validated against the kind; only the payload field matching Kind is
// meaningful.
//
// Copy-on-write: Deactivated returns a new value.
type Criteria struct {
	ID        domain.CriteriaID `json:"id"`
	FundID    domain.FundID     `json:"fund_id"`
	Kind      CriteriaKind      `json:"kind"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	MinAge                 int                  `json:"min_age,omitempty"`
	MaxIncomeCommitmentPct float64              `json:"max_income_commitment_percentage,omitempty"`
	MinLoanAmount          float64              `json:"min_loan_amount,omitempty"`
	ExcludedPurposes       []domain.LoanPurpose `json:"excluded_purposes,omitempty"`
}

func newCriteria(id domain.CriteriaID, fundID domain.FundID, kind CriteriaKind, now time.Time) Criteria {
	return Criteria{
		ID:        id,
		FundID:    fundID,
		Kind:      kind,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMinAge builds a minimum-age rule in whole years.
func NewMinAge(id domain.CriteriaID, fundID domain.FundID, years int, now time.Time) (Criteria, error) {
	if years <= 0 {
		return Criteria{}, dErrors.New(dErrors.CodeInvariantViolation, "minimum age must be positive")
	}
	c := newCriteria(id, fundID, KindMinAge, now)
	c.MinAge = years
	return c, nil
}

// NewMaxIncomeCommitmentPct builds an income-commitment cap rule. The value
// is a percentage of monthly income (e.g. 20 for 20%).
func NewMaxIncomeCommitmentPct(id domain.CriteriaID, fundID domain.FundID, pct float64, now time.Time) (Criteria, error) {
	if pct <= 0 || pct > 100 {
		return Criteria{}, dErrors.New(dErrors.CodeInvariantViolation, "commitment percentage must be in (0, 100]")
	}
	c := newCriteria(id, fundID, KindMaxIncomeCommitmentPct, now)
	c.MaxIncomeCommitmentPct = pct
	return c, nil
}

// NewMinLoanAmount builds a loan floor rule.
func NewMinLoanAmount(id domain.CriteriaID, fundID domain.FundID, amount float64, now time.Time) (Criteria, error) {
	if amount <= 0 {
		return Criteria{}, dErrors.New(dErrors.CodeInvariantViolation, "minimum loan amount must be positive")
	}
	c := newCriteria(id, fundID, KindMinLoanAmount, now)
	c.MinLoanAmount = amount
	return c, nil
}

// NewExcludedPurposes builds a purpose blocklist rule.
func NewExcludedPurposes(id domain.CriteriaID, fundID domain.FundID, purposes []domain.LoanPurpose, now time.Time) (Criteria, error) {
	if len(purposes) == 0 {
		return Criteria{}, dErrors.New(dErrors.CodeInvariantViolation, "excluded purposes cannot be empty")
	}
	for _, p := range purposes {
		if !p.IsValid() {
			return Criteria{}, dErrors.New(dErrors.CodeInvariantViolation, "excluded purposes contain an unknown purpose")
		}
	}
	c := newCriteria(id, fundID, KindExcludedPurposes, now)
	c.ExcludedPurposes = slices.Clone(purposes)
	return c, nil
}

// Excludes reports whether the rule blocks the given purpose. Only
// meaningful for KindExcludedPurposes.
func (c Criteria) Excludes(p domain.LoanPurpose) bool {
	return slices.Contains(c.ExcludedPurposes, p)
}

// Deactivated returns a copy of the rule flagged inactive.
func (c Criteria) Deactivated(now time.Time) Criteria {
	next := c
	next.ExcludedPurposes = slices.Clone(c.ExcludedPurposes)
	next.Active = false
	next.UpdatedAt = now
	return next
}
