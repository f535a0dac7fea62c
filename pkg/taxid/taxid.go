// Package taxid provides a validated national tax identifier (CPF-style:
// 11 digits with a mod-11 two-digit checksum). Parse is the only way to
// obtain a TaxID, so a held value is always well-formed.
package taxid

import (
	"strings"

	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// TaxID is a validated 11-digit tax identifier stored in canonical
// 000.000.000-00 form.
type TaxID struct {
	value string
}

// Parse validates and canonicalizes a tax id. Any non-digit characters are
// stripped before validation, so "529.982.247-25" and "52998224725" parse to
// the same value.
//
// Errors: CodeInvalidInput when the input does not contain exactly 11
// digits, is a repeated single digit, or fails the checksum.
func Parse(s string) (TaxID, error) {
	digits := stripNonDigits(s)
	if len(digits) != 11 {
		return TaxID{}, dErrors.New(dErrors.CodeInvalidInput, "tax id must contain 11 digits")
	}
	if allSameDigit(digits) {
		return TaxID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid tax id")
	}
	if !checksumValid(digits) {
		return TaxID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid tax id")
	}
	return TaxID{value: format(digits)}, nil
}

// String returns the canonical 000.000.000-00 representation.
func (t TaxID) String() string {
	return t.value
}

// Digits returns the bare 11-digit form.
func (t TaxID) Digits() string {
	return stripNonDigits(t.value)
}

// Equal reports whether two tax ids identify the same person.
func (t TaxID) Equal(other TaxID) bool {
	return t.value == other.value
}

// IsZero reports whether the value is the uninitialized zero TaxID.
func (t TaxID) IsZero() bool {
	return t.value == ""
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// checksumValid verifies both mod-11 check digits. The first digit weighs
// the first nine digits with multipliers 10..2; the second weighs the first
// ten with 11..2. Each check digit is (sum*10 mod 11) mod 10.
func checksumValid(digits string) bool {
	return checkDigit(digits, 9) == int(digits[9]-'0') &&
		checkDigit(digits, 10) == int(digits[10]-'0')
}

func checkDigit(digits string, length int) int {
	sum := 0
	for i := 0; i < length; i++ {
		sum += int(digits[i]-'0') * (length + 1 - i)
	}
	return (sum * 10 % 11) % 10
}

func format(digits string) string {
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}
