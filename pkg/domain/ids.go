// Package domain holds typed identifiers and small domain primitives shared
// across modules. Typed IDs prevent cross-aggregate assignment at compile
// time: a ClientID can never be passed where a FundID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Typed identifiers for every aggregate in the system.
type (
	ClientID     uuid.UUID
	FundID       uuid.UUID
	CriteriaID   uuid.UUID
	SimulationID uuid.UUID
	OfferID      uuid.UUID
	ContractID   uuid.UUID
)

func (id ClientID) String() string     { return uuid.UUID(id).String() }
func (id FundID) String() string       { return uuid.UUID(id).String() }
func (id CriteriaID) String() string   { return uuid.UUID(id).String() }
func (id SimulationID) String() string { return uuid.UUID(id).String() }
func (id OfferID) String() string      { return uuid.UUID(id).String() }
func (id ContractID) String() string   { return uuid.UUID(id).String() }

func (id ClientID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id FundID) IsZero() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CriteriaID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id SimulationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id OfferID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ContractID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders IDs as canonical uuid strings in JSON; defined types
// do not inherit uuid.UUID's encoding methods.
func (id ClientID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id FundID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id CriteriaID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id SimulationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id OfferID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id ContractID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *ClientID) UnmarshalText(b []byte) error {
	parsed, err := ParseClientID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *FundID) UnmarshalText(b []byte) error {
	parsed, err := ParseFundID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CriteriaID) UnmarshalText(b []byte) error {
	parsed, err := ParseCriteriaID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *SimulationID) UnmarshalText(b []byte) error {
	parsed, err := ParseSimulationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *OfferID) UnmarshalText(b []byte) error {
	parsed, err := ParseOfferID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ContractID) UnmarshalText(b []byte) error {
	parsed, err := ParseContractID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewClientID and friends mint fresh identifiers.
func NewClientID() ClientID         { return ClientID(uuid.New()) }
func NewFundID() FundID             { return FundID(uuid.New()) }
func NewCriteriaID() CriteriaID     { return CriteriaID(uuid.New()) }
func NewSimulationID() SimulationID { return SimulationID(uuid.New()) }
func NewOfferID() OfferID           { return OfferID(uuid.New()) }
func NewContractID() ContractID     { return ContractID(uuid.New()) }

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
// Call the typed wrappers below at trust boundaries; direct casting bypasses
// validation.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}

func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s, "client")
	return ClientID(u), err
}

func ParseFundID(s string) (FundID, error) {
	u, err := parseUUID(s, "fund")
	return FundID(u), err
}

func ParseCriteriaID(s string) (CriteriaID, error) {
	u, err := parseUUID(s, "criteria")
	return CriteriaID(u), err
}

func ParseSimulationID(s string) (SimulationID, error) {
	u, err := parseUUID(s, "simulation")
	return SimulationID(u), err
}

func ParseOfferID(s string) (OfferID, error) {
	u, err := parseUUID(s, "offer")
	return OfferID(u), err
}

func ParseContractID(s string) (ContractID, error) {
	u, err := parseUUID(s, "contract")
	return ContractID(u), err
}
