package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pejotadev/fidlink/internal/simulation/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
)

type SimulationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func (s *SimulationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func TestSimulationStoreSuite(t *testing.T) {
	suite.Run(t, new(SimulationStoreSuite))
}

func (s *SimulationStoreSuite) newSimulation() models.Simulation {
	sim, err := models.NewSimulation(domain.NewSimulationID(), domain.NewClientID(),
		10000, domain.LoanPurposeShopping, s.now.AddDate(0, 0, 30), 12, s.now)
	s.Require().NoError(err)
	return sim
}

func (s *SimulationStoreSuite) newOffer(simID domain.SimulationID, rate float64) models.Offer {
	o, err := models.NewOffer(domain.NewOfferID(), simID, domain.NewFundID(),
		10000, 989.69, 12, 11876.28, rate, s.now)
	s.Require().NoError(err)
	return o
}

func (s *SimulationStoreSuite) TestSimulations() {
	s.Run("creates and finds a simulation", func() {
		sim := s.newSimulation()
		s.Require().NoError(s.store.CreateSimulation(s.ctx, sim))

		found, err := s.store.FindSimulationByID(s.ctx, sim.ID)
		s.Require().NoError(err)
		s.Equal(sim, found)
	})

	s.Run("rejects a duplicate simulation id", func() {
		sim := s.newSimulation()
		s.Require().NoError(s.store.CreateSimulation(s.ctx, sim))
		s.Require().ErrorIs(s.store.CreateSimulation(s.ctx, sim), sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for unknown simulation", func() {
		_, err := s.store.FindSimulationByID(s.ctx, domain.NewSimulationID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *SimulationStoreSuite) TestOffers() {
	s.Run("lists offers by rate ascending", func() {
		sim := s.newSimulation()
		s.Require().NoError(s.store.CreateSimulation(s.ctx, sim))

		offers := []models.Offer{
			s.newOffer(sim.ID, 0.0425),
			s.newOffer(sim.ID, 0.0210),
			s.newOffer(sim.ID, 0.0275),
		}
		s.Require().NoError(s.store.CreateOffers(s.ctx, offers))

		got, err := s.store.ListOffersBySimulation(s.ctx, sim.ID)
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal(0.0210, got[0].InterestRate)
		s.Equal(0.0275, got[1].InterestRate)
		s.Equal(0.0425, got[2].InterestRate)
	})

	s.Run("batch insert is all or nothing", func() {
		sim := s.newSimulation()
		existing := s.newOffer(sim.ID, 0.0275)
		s.Require().NoError(s.store.CreateOffers(s.ctx, []models.Offer{existing}))

		fresh := s.newOffer(sim.ID, 0.0210)
		err := s.store.CreateOffers(s.ctx, []models.Offer{fresh, existing})
		s.Require().ErrorIs(err, sentinel.ErrConflict)

		_, err = s.store.FindOfferByID(s.ctx, fresh.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *SimulationStoreSuite) TestExecuteOffer() {
	s.Run("accepts a pending offer exactly once", func() {
		sim := s.newSimulation()
		offer := s.newOffer(sim.ID, 0.0275)
		s.Require().NoError(s.store.CreateOffers(s.ctx, []models.Offer{offer}))

		accepted, err := s.store.ExecuteOffer(s.ctx, offer.ID,
			func(o models.Offer) error { return o.CanAccept() },
			func(o models.Offer) models.Offer { return o.WithAccepted(s.now) })
		s.Require().NoError(err)
		s.True(accepted.Accepted)

		_, err = s.store.ExecuteOffer(s.ctx, offer.ID,
			func(o models.Offer) error { return o.CanAccept() },
			func(o models.Offer) models.Offer { return o.WithAccepted(s.now) })
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("returns ErrNotFound for unknown offer", func() {
		_, err := s.store.ExecuteOffer(s.ctx, domain.NewOfferID(),
			func(o models.Offer) error { return nil },
			func(o models.Offer) models.Offer { return o })
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
