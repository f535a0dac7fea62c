package store

import (
	"context"
	"sync"

	"github.com/pejotadev/fidlink/internal/client/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
	"github.com/pejotadev/fidlink/pkg/taxid"
)

// InMemory stores clients behind a mutex, indexed by id and tax id. Values
// are stored and returned by copy.
type InMemory struct {
	mu      sync.RWMutex
	clients map[domain.ClientID]models.Client
	byTaxID map[string]domain.ClientID
}

func NewInMemory() *InMemory {
	return &InMemory{
		clients: make(map[domain.ClientID]models.Client),
		byTaxID: make(map[string]domain.ClientID),
	}
}

// CreateIfTaxIDAvailable registers a client unless the tax id is taken.
func (s *InMemory) CreateIfTaxIDAvailable(_ context.Context, c models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byTaxID[c.TaxID.Digits()]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.clients[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.clients[c.ID] = c
	s.byTaxID[c.TaxID.Digits()] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ClientID) (models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return models.Client{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *InMemory) FindByTaxID(_ context.Context, tid taxid.TaxID) (models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byTaxID[tid.Digits()]
	if !ok {
		return models.Client{}, sentinel.ErrNotFound
	}
	return s.clients[id], nil
}

func (s *InMemory) Update(_ context.Context, c models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[c.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.clients[c.ID] = c
	return nil
}
