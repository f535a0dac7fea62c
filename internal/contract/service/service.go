package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pejotadev/fidlink/internal/contract"
	contractmetrics "github.com/pejotadev/fidlink/internal/contract/metrics"
	"github.com/pejotadev/fidlink/internal/contract/models"
	"github.com/pejotadev/fidlink/internal/finance"
	simmodels "github.com/pejotadev/fidlink/internal/simulation/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
	"github.com/pejotadev/fidlink/pkg/requestcontext"
)

type ContractStore interface {
	CreateIfNumberAvailable(ctx context.Context, c models.Contract) error
	FindByID(ctx context.Context, id domain.ContractID) (models.Contract, error)
	List(ctx context.Context, limit, offset int) ([]models.Contract, int, error)
	Execute(ctx context.Context, id domain.ContractID,
		validate func(models.Contract) error, apply func(models.Contract) models.Contract) (models.Contract, error)
}

type OfferStore interface {
	FindOfferByID(ctx context.Context, id domain.OfferID) (simmodels.Offer, error)
	ExecuteOffer(ctx context.Context, id domain.OfferID,
		validate func(simmodels.Offer) error, apply func(simmodels.Offer) simmodels.Offer) (simmodels.Offer, error)
	FindSimulationByID(ctx context.Context, id domain.SimulationID) (simmodels.Simulation, error)
}

// Service turns accepted offers into contracts and drives the contract
// lifecycle.
type Service struct {
	contracts ContractStore
	offers    OfferStore
	logger    *slog.Logger
	metrics   *contractmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *contractmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(contracts ContractStore, offers OfferStore, opts ...Option) *Service {
	s := &Service{
		contracts: contracts,
		offers:    offers,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detail is a contract with its derived cost breakdown and amortization
// schedule.
type Detail struct {
	Contract models.Contract         `json:"contract"`
	Summary  contract.Summary        `json:"summary"`
	Schedule []finance.ScheduleEntry `json:"schedule"`
}

// CreateFromOffer signs a contract for a pending offer. Accepting the offer
// is the serialization point: of two concurrent attempts only one passes the
// pending check, so at most one contract per offer can exist.
func (s *Service) CreateFromOffer(ctx context.Context, offerID domain.OfferID) (Detail, error) {
	now := requestcontext.Now(ctx)

	offer, err := s.offers.FindOfferByID(ctx, offerID)
	if err != nil {
		return Detail{}, wrapOfferErr(err)
	}
	if errs := contract.ValidateCreation(offer); len(errs) > 0 {
		return Detail{}, dErrors.New(dErrors.CodeConflict, strings.Join(errs, "; "))
	}

	sim, err := s.offers.FindSimulationByID(ctx, offer.SimulationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Detail{}, dErrors.New(dErrors.CodeNotFound, "simulation not found")
		}
		return Detail{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load simulation")
	}

	offer, err = s.offers.ExecuteOffer(ctx, offer.ID,
		func(o simmodels.Offer) error { return o.CanAccept() },
		func(o simmodels.Offer) simmodels.Offer { return o.WithAccepted(now) })
	if err != nil {
		return Detail{}, wrapOfferErr(err)
	}

	signed, err := models.NewContract(domain.NewContractID(), sim.ClientID, offer.FundID,
		offer.ID, contract.NumberFor(now), offer.LoanAmount, offer.MonthlyPayment,
		offer.Installments, offer.TotalAmount, offer.InterestRate,
		sim.Purpose, sim.FirstPaymentDate, now)
	if err != nil {
		return Detail{}, err
	}

	if err := s.contracts.CreateIfNumberAvailable(ctx, signed); err != nil {
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.revertAcceptance(ctx, offer.ID, now)
			return Detail{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create contract")
		}
		// Number collision: regenerate once.
		if s.metrics != nil {
			s.metrics.NumberCollisions.Inc()
		}
		signed = signed.WithContractNumber(contract.NumberFor(now))
		if err := s.contracts.CreateIfNumberAvailable(ctx, signed); err != nil {
			s.revertAcceptance(ctx, offer.ID, now)
			return Detail{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create contract")
		}
	}

	s.logger.InfoContext(ctx, "contract created",
		"contract_id", signed.ID, "contract_number", signed.ContractNumber,
		"offer_id", offer.ID, "client_id", sim.ClientID)
	if s.metrics != nil {
		s.metrics.ContractsCreated.Inc()
	}
	return s.detail(signed), nil
}

// revertAcceptance puts an offer back in the pending state after contract
// persistence failed. Best effort: if the revert itself fails the offer is
// stranded accepted with no contract, which only an operator can repair, so
// log it loudly.
func (s *Service) revertAcceptance(ctx context.Context, id domain.OfferID, now time.Time) {
	_, err := s.offers.ExecuteOffer(ctx, id,
		func(simmodels.Offer) error { return nil },
		func(o simmodels.Offer) simmodels.Offer { return o.WithAcceptanceReverted(now) })
	if err != nil {
		s.logger.ErrorContext(ctx, "offer stranded accepted without a contract",
			"offer_id", id, "error", err)
	}
}

// Get returns a contract with its summary and amortization schedule.
func (s *Service) Get(ctx context.Context, id domain.ContractID) (Detail, error) {
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return Detail{}, wrapContractErr(err)
	}
	return s.detail(c), nil
}

// Page is one page of the contract listing.
type Page struct {
	Contracts []models.Contract `json:"contracts"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
}

const defaultPageLimit = 20

// List returns contracts newest first, one page at a time. Page numbering
// starts at 1.
func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	contracts, total, err := s.contracts.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return Page{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contracts")
	}
	return Page{Contracts: contracts, Total: total, Page: page, Limit: limit}, nil
}

// Complete transitions an active contract to completed.
func (s *Service) Complete(ctx context.Context, id domain.ContractID) (models.Contract, error) {
	now := requestcontext.Now(ctx)
	c, err := s.contracts.Execute(ctx, id,
		func(c models.Contract) error { return c.CanComplete() },
		func(c models.Contract) models.Contract { return c.WithCompleted(now) })
	if err != nil {
		return models.Contract{}, wrapContractErr(err)
	}
	s.logger.InfoContext(ctx, "contract completed", "contract_id", c.ID)
	if s.metrics != nil {
		s.metrics.ContractsCompleted.Inc()
	}
	return c, nil
}

// Cancel transitions an active contract to cancelled.
func (s *Service) Cancel(ctx context.Context, id domain.ContractID) (models.Contract, error) {
	now := requestcontext.Now(ctx)
	c, err := s.contracts.Execute(ctx, id,
		func(c models.Contract) error { return c.CanCancel() },
		func(c models.Contract) models.Contract { return c.WithCancelled(now) })
	if err != nil {
		return models.Contract{}, wrapContractErr(err)
	}
	s.logger.InfoContext(ctx, "contract cancelled", "contract_id", c.ID)
	if s.metrics != nil {
		s.metrics.ContractsCancelled.Inc()
	}
	return c, nil
}

// EarlyPayoffQuote estimates the cost of settling a contract on payoffDate.
// Only active contracts can be quoted.
func (s *Service) EarlyPayoffQuote(ctx context.Context, id domain.ContractID, payoffDate time.Time) (float64, error) {
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return 0, wrapContractErr(err)
	}
	if c.Status != models.StatusActive {
		return 0, dErrors.Newf(dErrors.CodeConflict, "cannot quote a %s contract", c.Status)
	}
	return contract.EarlyPayoffAmount(c, payoffDate, requestcontext.Now(ctx)), nil
}

func (s *Service) detail(c models.Contract) Detail {
	schedule, err := finance.Schedule(c.LoanAmount, c.InterestRate, c.Installments, c.FirstPaymentDate)
	if err != nil {
		// Contract invariants guarantee valid schedule inputs.
		schedule = nil
	}
	return Detail{Contract: c, Summary: contract.Summarize(c), Schedule: schedule}
}

func wrapOfferErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "offer not found")
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load offer")
	}
}

func wrapContractErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "contract not found")
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contract")
	}
}
