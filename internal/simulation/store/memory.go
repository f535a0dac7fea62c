package store

import (
	"context"
	"slices"
	"sync"

	"github.com/pejotadev/fidlink/internal/simulation/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
)

// InMemory stores simulations and their offers behind a mutex. Values are
// stored and returned by copy.
type InMemory struct {
	mu          sync.RWMutex
	simulations map[domain.SimulationID]models.Simulation
	offers      map[domain.OfferID]models.Offer
}

func NewInMemory() *InMemory {
	return &InMemory{
		simulations: make(map[domain.SimulationID]models.Simulation),
		offers:      make(map[domain.OfferID]models.Offer),
	}
}

func (s *InMemory) CreateSimulation(_ context.Context, sim models.Simulation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.simulations[sim.ID]; exists {
		return sentinel.ErrConflict
	}
	s.simulations[sim.ID] = sim
	return nil
}

func (s *InMemory) FindSimulationByID(_ context.Context, id domain.SimulationID) (models.Simulation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sim, ok := s.simulations[id]
	if !ok {
		return models.Simulation{}, sentinel.ErrNotFound
	}
	return sim, nil
}

// CreateOffers persists a batch of offers for a simulation. The batch is
// all-or-nothing: an ID collision leaves the store untouched.
func (s *InMemory) CreateOffers(_ context.Context, offers []models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range offers {
		if _, exists := s.offers[o.ID]; exists {
			return sentinel.ErrConflict
		}
	}
	for _, o := range offers {
		s.offers[o.ID] = o
	}
	return nil
}

func (s *InMemory) FindOfferByID(_ context.Context, id domain.OfferID) (models.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.offers[id]
	if !ok {
		return models.Offer{}, sentinel.ErrNotFound
	}
	return o, nil
}

func (s *InMemory) UpdateOffer(_ context.Context, o models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.offers[o.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.offers[o.ID] = o
	return nil
}

// ExecuteOffer atomically validates and mutates an offer under the store
// lock, so two concurrent accepts cannot both pass validation.
func (s *InMemory) ExecuteOffer(_ context.Context, id domain.OfferID,
	validate func(models.Offer) error, apply func(models.Offer) models.Offer) (models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return models.Offer{}, sentinel.ErrNotFound
	}
	if err := validate(o); err != nil {
		return models.Offer{}, err
	}
	o = apply(o)
	s.offers[id] = o
	return o, nil
}

// ListOffersBySimulation returns the offers of a simulation sorted by
// interest rate ascending, cheapest first.
func (s *InMemory) ListOffersBySimulation(_ context.Context, simID domain.SimulationID) ([]models.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Offer
	for _, o := range s.offers {
		if o.SimulationID == simID {
			out = append(out, o)
		}
	}
	sortOffers(out)
	return out, nil
}

func sortOffers(offers []models.Offer) {
	slices.SortFunc(offers, func(a, b models.Offer) int {
		switch {
		case a.InterestRate < b.InterestRate:
			return -1
		case a.InterestRate > b.InterestRate:
			return 1
		default:
			return 0
		}
	})
}
