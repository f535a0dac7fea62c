package models

import (
	"strings"
	"time"

	"github.com/pejotadev/fidlink/pkg/domain"
	domainerrors "github.com/pejotadev/fidlink/pkg/domain-errors"
	"github.com/pejotadev/fidlink/pkg/money"
	"github.com/pejotadev/fidlink/pkg/taxid"
)

const maxNameLength = 255

// minRegistrationAge is the youngest age at which a client may register,
// independent of any fund's own minimum-age criterion.
const minRegistrationAge = 18

// Client is a registered borrower.
//
// Invariants:
//   - Name is non-empty and at most 255 characters
//   - BirthDate is in the past and the client is at least 18 at creation
//   - TaxID is a validated tax id
//   - MonthlyIncome is non-negative (enforced by money.Money)
//
// Only MonthlyIncome is mutable after creation.
type Client struct {
	ID            domain.ClientID
	Name          string
	BirthDate     time.Time
	TaxID         taxid.TaxID
	MonthlyIncome money.Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewClient builds a valid Client or reports which invariant failed.
func NewClient(id domain.ClientID, name string, birthDate time.Time, tid taxid.TaxID, income money.Money, now time.Time) (Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Client{}, domainerrors.New(domainerrors.CodeInvariantViolation, "client name must not be empty")
	}
	if len(name) > maxNameLength {
		return Client{}, domainerrors.Newf(domainerrors.CodeInvariantViolation, "client name must be at most %d characters", maxNameLength)
	}
	if !birthDate.Before(now) {
		return Client{}, domainerrors.New(domainerrors.CodeInvariantViolation, "birth date must be in the past")
	}
	if age := ageInYears(birthDate, now); age < minRegistrationAge {
		return Client{}, domainerrors.Newf(domainerrors.CodeInvariantViolation, "client must be at least %d years old", minRegistrationAge)
	}
	if tid.IsZero() {
		return Client{}, domainerrors.New(domainerrors.CodeInvariantViolation, "tax id is required")
	}
	return Client{
		ID:            id,
		Name:          name,
		BirthDate:     birthDate,
		TaxID:         tid,
		MonthlyIncome: income,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// WithIncome returns a copy of the client with the income replaced and the
// update timestamp bumped.
func (c Client) WithIncome(income money.Money, now time.Time) Client {
	c.MonthlyIncome = income
	c.UpdatedAt = now
	return c
}

func ageInYears(birthDate, now time.Time) int {
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	return age
}
