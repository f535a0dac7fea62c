package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pejotadev/fidlink/internal/contract/models"
	"github.com/pejotadev/fidlink/internal/contract/store"
	"github.com/pejotadev/fidlink/pkg/domain"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
)

type ContractStoreSuite struct {
	suite.Suite
	store *store.InMemory
	ctx   context.Context
	now   time.Time
}

func TestContractStoreSuite(t *testing.T) {
	suite.Run(t, new(ContractStoreSuite))
}

func (s *ContractStoreSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ContractStoreSuite) mustContract(number string, createdAt time.Time) models.Contract {
	c, err := models.NewContract(
		domain.NewContractID(),
		domain.NewClientID(),
		domain.NewFundID(),
		domain.NewOfferID(),
		number,
		10000, 989.69, 12, 11876.28, 0.0275,
		domain.LoanPurposeShopping,
		createdAt.AddDate(0, 1, 0),
		createdAt,
	)
	s.Require().NoError(err)
	return c
}

func (s *ContractStoreSuite) TestCreateAndFind() {
	c := s.mustContract("CTR-12345678-ABC123", s.now)
	s.Require().NoError(s.store.CreateIfNumberAvailable(s.ctx, c))

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ContractNumber, found.ContractNumber)
	s.Equal(models.StatusActive, found.Status)
}

func (s *ContractStoreSuite) TestNumberCollision() {
	first := s.mustContract("CTR-12345678-ABC123", s.now)
	second := s.mustContract("CTR-12345678-ABC123", s.now)

	s.Require().NoError(s.store.CreateIfNumberAvailable(s.ctx, first))
	err := s.store.CreateIfNumberAvailable(s.ctx, second)
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *ContractStoreSuite) TestDuplicateID() {
	c := s.mustContract("CTR-12345678-ABC123", s.now)
	s.Require().NoError(s.store.CreateIfNumberAvailable(s.ctx, c))

	c.ContractNumber = "CTR-12345678-XYZ789"
	err := s.store.CreateIfNumberAvailable(s.ctx, c)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *ContractStoreSuite) TestListNewestFirstWithPagination() {
	for i := 0; i < 5; i++ {
		number := fmt.Sprintf("CTR-12345678-ABC10%d", i)
		c := s.mustContract(number, s.now.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.store.CreateIfNumberAvailable(s.ctx, c))
	}

	page, total, err := s.store.List(s.ctx, 2, 0)
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Require().Len(page, 2)
	s.Equal("CTR-12345678-ABC104", page[0].ContractNumber)
	s.Equal("CTR-12345678-ABC103", page[1].ContractNumber)

	page, total, err = s.store.List(s.ctx, 2, 4)
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Require().Len(page, 1)
	s.Equal("CTR-12345678-ABC100", page[0].ContractNumber)

	page, total, err = s.store.List(s.ctx, 2, 10)
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Empty(page)
}

func (s *ContractStoreSuite) TestListSameInstantOrdersByNumber() {
	for _, number := range []string{"CTR-12345678-BBB222", "CTR-12345678-AAA111"} {
		c := s.mustContract(number, s.now)
		s.Require().NoError(s.store.CreateIfNumberAvailable(s.ctx, c))
	}

	page, _, err := s.store.List(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("CTR-12345678-AAA111", page[0].ContractNumber)
	s.Equal("CTR-12345678-BBB222", page[1].ContractNumber)
}

func (s *ContractStoreSuite) TestExecuteTransition() {
	c := s.mustContract("CTR-12345678-ABC123", s.now)
	s.Require().NoError(s.store.CreateIfNumberAvailable(s.ctx, c))

	completed, err := s.store.Execute(s.ctx, c.ID,
		func(cur models.Contract) error { return cur.CanComplete() },
		func(cur models.Contract) models.Contract { return cur.WithCompleted(s.now.Add(time.Hour)) },
	)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, completed.Status)

	// A failed validation must leave the stored contract untouched.
	_, err = s.store.Execute(s.ctx, c.ID,
		func(cur models.Contract) error { return cur.CanCancel() },
		func(cur models.Contract) models.Contract { return cur.WithCancelled(s.now.Add(2 * time.Hour)) },
	)
	s.Require().Error(err)

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, found.Status)
}

func (s *ContractStoreSuite) TestExecuteMissing() {
	_, err := s.store.Execute(s.ctx, domain.NewContractID(),
		func(models.Contract) error { return nil },
		func(cur models.Contract) models.Contract { return cur },
	)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
