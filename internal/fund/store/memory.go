package store

import (
	"context"
	"slices"
	"sync"

	"github.com/pejotadev/fidlink/internal/fund/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
)

// InMemory keeps the fund catalog and its criteria behind a mutex. Values
// are stored and returned by copy, so callers can never mutate the catalog
// through a returned Fund or Criteria.
type InMemory struct {
	mu       sync.RWMutex
	funds    map[domain.FundID]models.Fund
	criteria map[domain.FundID][]models.Criteria
}

func NewInMemory() *InMemory {
	return &InMemory{
		funds:    make(map[domain.FundID]models.Fund),
		criteria: make(map[domain.FundID][]models.Criteria),
	}
}

func (s *InMemory) Create(_ context.Context, f models.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funds[f.ID]; exists {
		return sentinel.ErrConflict
	}
	s.funds[f.ID] = f
	return nil
}

func (s *InMemory) Update(_ context.Context, f models.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funds[f.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.funds[f.ID] = f
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.FundID) (models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.funds[id]
	if !ok {
		return models.Fund{}, sentinel.ErrNotFound
	}
	return f, nil
}

// ListActive returns active funds sorted by name for deterministic
// evaluation order downstream.
func (s *InMemory) ListActive(_ context.Context) ([]models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Fund
	for _, f := range s.funds {
		if f.Active {
			out = append(out, f)
		}
	}
	sortFunds(out)
	return out, nil
}

func (s *InMemory) ListAll(_ context.Context) ([]models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Fund, 0, len(s.funds))
	for _, f := range s.funds {
		out = append(out, f)
	}
	sortFunds(out)
	return out, nil
}

func (s *InMemory) CreateCriteria(_ context.Context, c models.Criteria) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funds[c.FundID]; !exists {
		return sentinel.ErrNotFound
	}
	s.criteria[c.FundID] = append(s.criteria[c.FundID], c)
	return nil
}

// ListActiveCriteria returns the active criteria attached to a fund.
func (s *InMemory) ListActiveCriteria(_ context.Context, fundID domain.FundID) ([]models.Criteria, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Criteria
	for _, c := range s.criteria[fundID] {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func sortFunds(funds []models.Fund) {
	slices.SortFunc(funds, func(a, b models.Fund) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
}
