package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pejotadev/fidlink/internal/simulation/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

func newOffer(t *testing.T) models.Offer {
	t.Helper()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	o, err := models.NewOffer(domain.NewOfferID(), domain.NewSimulationID(), domain.NewFundID(),
		10000, 989.69, 12, 11876.28, 0.0275, now)
	require.NoError(t, err)
	return o
}

func TestOfferAcceptOnce(t *testing.T) {
	o := newOffer(t)
	require.NoError(t, o.CanAccept())

	accepted := o.WithAccepted(o.CreatedAt.Add(time.Hour))
	assert.True(t, accepted.Accepted)
	assert.True(t, accepted.UpdatedAt.After(o.UpdatedAt))
	assert.False(t, o.Accepted, "original value must stay pending")

	err := accepted.CanAccept()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestOfferRejectsNonPositiveTerms(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	_, err := models.NewOffer(domain.NewOfferID(), domain.NewSimulationID(), domain.NewFundID(),
		0, 989.69, 12, 11876.28, 0.0275, now)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestOfferInstallmentDescription(t *testing.T) {
	o := newOffer(t)
	assert.Equal(t, "12x of 989.69", o.InstallmentDescription())
}

func TestOfferJSONCarriesDescription(t *testing.T) {
	o := newOffer(t)

	raw, err := json.Marshal(o)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "12x of 989.69", decoded["installment_description"])
	assert.Equal(t, o.ID.String(), decoded["id"])
}
