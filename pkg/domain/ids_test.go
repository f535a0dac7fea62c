package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

func TestNewIDsAreDistinct(t *testing.T) {
	a := domain.NewClientID()
	b := domain.NewClientID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsZero())
}

func TestParseRoundTrip(t *testing.T) {
	id := domain.NewSimulationID()

	parsed, err := domain.ParseSimulationID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-uuid", "123"} {
		_, err := domain.ParseClientID(raw)
		require.Error(t, err, "raw=%q", raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
}

func TestZeroValueIsZero(t *testing.T) {
	var id domain.ContractID
	assert.True(t, id.IsZero())
	assert.Equal(t, uuid.Nil.String(), id.String())
}

func TestJSONEncoding(t *testing.T) {
	id := domain.NewOfferID()

	encoded, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(encoded))

	var decoded domain.OfferID
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, id, decoded)
}

func TestJSONDecodingRejectsGarbage(t *testing.T) {
	var id domain.FundID
	err := json.Unmarshal([]byte(`"not-a-uuid"`), &id)
	require.Error(t, err)
}

func TestCrossTypeConversionIsExplicit(t *testing.T) {
	// Typed IDs share an underlying uuid.UUID, so conversion is possible
	// but never implicit.
	raw := uuid.New()
	clientID := domain.ClientID(raw)
	fundID := domain.FundID(raw)
	assert.Equal(t, clientID.String(), fundID.String())
}
