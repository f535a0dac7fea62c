package store

import (
	"context"
	"slices"
	"sync"

	"github.com/pejotadev/fidlink/internal/contract/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
)

// InMemory stores contracts behind a mutex, enforcing contract number
// uniqueness. Values are stored and returned by copy.
type InMemory struct {
	mu        sync.RWMutex
	contracts map[domain.ContractID]models.Contract
	byNumber  map[string]domain.ContractID
}

func NewInMemory() *InMemory {
	return &InMemory{
		contracts: make(map[domain.ContractID]models.Contract),
		byNumber:  make(map[string]domain.ContractID),
	}
}

// CreateIfNumberAvailable persists the contract unless its number is taken.
func (s *InMemory) CreateIfNumberAvailable(_ context.Context, c models.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byNumber[c.ContractNumber]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.contracts[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.contracts[c.ID] = c
	s.byNumber[c.ContractNumber] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ContractID) (models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[id]
	if !ok {
		return models.Contract{}, sentinel.ErrNotFound
	}
	return c, nil
}

// List returns a page of contracts ordered by creation time descending,
// newest first, plus the unpaginated total.
func (s *InMemory) List(_ context.Context, limit, offset int) ([]models.Contract, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		all = append(all, c)
	}
	slices.SortFunc(all, func(a, b models.Contract) int {
		switch {
		case a.CreatedAt.After(b.CreatedAt):
			return -1
		case a.CreatedAt.Before(b.CreatedAt):
			return 1
		default:
			// Same-instant creations order by number so pages are stable.
			switch {
			case a.ContractNumber < b.ContractNumber:
				return -1
			case a.ContractNumber > b.ContractNumber:
				return 1
			default:
				return 0
			}
		}
	})

	total := len(all)
	if offset >= total {
		return []models.Contract{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Execute atomically validates and mutates a contract under the store lock.
func (s *InMemory) Execute(_ context.Context, id domain.ContractID,
	validate func(models.Contract) error, apply func(models.Contract) models.Contract) (models.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	if !ok {
		return models.Contract{}, sentinel.ErrNotFound
	}
	if err := validate(c); err != nil {
		return models.Contract{}, err
	}
	c = apply(c)
	s.contracts[id] = c
	return c, nil
}
