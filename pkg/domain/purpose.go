package domain

import dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"

// LoanPurpose identifies what a requested loan will be used for.
// Invariant: the value must be one of the supported purposes.
//
// Usage: construct via ParseLoanPurpose at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type LoanPurpose string

// Supported loan purposes. The set is closed: funds exclude purposes by
// listing members of this set, and anything else is rejected at the boundary
// before reaching the core.
const (
	LoanPurposeBusinessInvestment LoanPurpose = "business_investment"
	LoanPurposeTravel             LoanPurpose = "travel"
	LoanPurposeShopping           LoanPurpose = "shopping"
)

// validLoanPurposes is the single source of truth for valid purposes.
var validLoanPurposes = map[LoanPurpose]bool{
	LoanPurposeBusinessInvestment: true,
	LoanPurposeTravel:             true,
	LoanPurposeShopping:           true,
}

// ParseLoanPurpose constructs a LoanPurpose from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported; no
// other errors are expected.
func ParseLoanPurpose(s string) (LoanPurpose, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "purpose cannot be empty")
	}
	p := LoanPurpose(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid loan purpose")
	}
	return p, nil
}

// IsValid checks if the purpose is one of the supported enum values.
func (p LoanPurpose) IsValid() bool {
	return validLoanPurposes[p]
}

// String returns the string representation of the purpose.
func (p LoanPurpose) String() string {
	return string(p)
}
