package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pejotadev/fidlink/internal/cache"
	clientmodels "github.com/pejotadev/fidlink/internal/client/models"
	"github.com/pejotadev/fidlink/internal/eligibility"
	fundmodels "github.com/pejotadev/fidlink/internal/fund/models"
	"github.com/pejotadev/fidlink/internal/simulation"
	simmetrics "github.com/pejotadev/fidlink/internal/simulation/metrics"
	"github.com/pejotadev/fidlink/internal/simulation/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
	"github.com/pejotadev/fidlink/pkg/requestcontext"
)

const defaultEligibilityTTL = 5 * time.Minute

type ClientStore interface {
	FindByID(ctx context.Context, id domain.ClientID) (clientmodels.Client, error)
}

type FundStore interface {
	ListActive(ctx context.Context) ([]fundmodels.Fund, error)
	ListActiveCriteria(ctx context.Context, fundID domain.FundID) ([]fundmodels.Criteria, error)
}

type SimulationStore interface {
	CreateSimulation(ctx context.Context, sim models.Simulation) error
	FindSimulationByID(ctx context.Context, id domain.SimulationID) (models.Simulation, error)
	CreateOffers(ctx context.Context, offers []models.Offer) error
	FindOfferByID(ctx context.Context, id domain.OfferID) (models.Offer, error)
	ListOffersBySimulation(ctx context.Context, simID domain.SimulationID) ([]models.Offer, error)
}

// Service orchestrates loan simulations: eligibility checks across the fund
// catalog and optimized offer generation.
type Service struct {
	clients        ClientStore
	funds          FundStore
	simulations    SimulationStore
	cache          cache.Cache
	eligibilityTTL time.Duration
	logger         *slog.Logger
	metrics        *simmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *simmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.eligibilityTTL = ttl
		}
	}
}

// New constructs a Service.
func New(clients ClientStore, funds FundStore, simulations SimulationStore, opts ...Option) *Service {
	s := &Service{
		clients:        clients,
		funds:          funds,
		simulations:    simulations,
		eligibilityTTL: defaultEligibilityTTL,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is a loan simulation request.
type CreateInput struct {
	ClientID         domain.ClientID
	RequestedAmount  float64
	Purpose          domain.LoanPurpose
	FirstPaymentDate time.Time
	Installments     int
}

// CreateResult is a persisted simulation with its offers sorted by interest
// rate ascending, cheapest first.
type CreateResult struct {
	Simulation models.Simulation `json:"simulation"`
	Offers     []models.Offer    `json:"offers"`
}

// fundEvaluation pairs a fund's eligibility verdict with its criteria so the
// optimizer does not re-fetch them.
type fundEvaluation struct {
	fund     fundmodels.Fund
	criteria []fundmodels.Criteria
	result   eligibility.Result
}

// Create runs the full simulation flow: load the client, evaluate every
// active fund concurrently, reject when no fund is eligible, then persist
// the simulation and one optimized offer per eligible fund. An eligible
// fund that cannot price the request is simply absent from the offers, so
// a simulation can legitimately carry zero offers.
func (s *Service) Create(ctx context.Context, input CreateInput) (CreateResult, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)

	client, err := s.clients.FindByID(ctx, input.ClientID)
	if err != nil {
		return CreateResult{}, wrapClientErr(err)
	}

	evaluations, err := s.evaluateFunds(ctx, client, input, now)
	if err != nil {
		return CreateResult{}, err
	}

	var eligible []fundEvaluation
	for _, ev := range evaluations {
		if ev.result.Eligible {
			eligible = append(eligible, ev)
		}
	}
	if len(eligible) == 0 {
		return CreateResult{}, dErrors.New(dErrors.CodeConflict, "no fund accepts the requested loan")
	}

	sim, err := models.NewSimulation(domain.NewSimulationID(), client.ID,
		input.RequestedAmount, input.Purpose, input.FirstPaymentDate, input.Installments, now)
	if err != nil {
		return CreateResult{}, err
	}

	offerInput := simulation.OfferInput{
		RequestedAmount:     input.RequestedAmount,
		ClientMonthlyIncome: client.MonthlyIncome.Amount(),
		Installments:        input.Installments,
	}
	offers := make([]models.Offer, 0, len(eligible))
	for _, ev := range eligible {
		offer, ok, err := simulation.BuildOptimizedOffer(sim.ID, ev.fund, ev.criteria, offerInput, now)
		if err != nil {
			return CreateResult{}, err
		}
		if ok {
			offers = append(offers, offer)
		}
	}
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

	if err := s.simulations.CreateSimulation(ctx, sim); err != nil {
		return CreateResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create simulation")
	}
	if len(offers) > 0 {
		if err := s.simulations.CreateOffers(ctx, offers); err != nil {
			return CreateResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create offers")
		}
	}

	s.logger.InfoContext(ctx, "simulation created",
		"simulation_id", sim.ID, "client_id", client.ID, "offers", len(offers))
	if s.metrics != nil {
		s.metrics.IncrementSimulationsCreated()
		s.metrics.AddOffersGenerated(len(offers))
		s.metrics.ObserveSimulate(start)
	}
	return CreateResult{Simulation: sim, Offers: offers}, nil
}

// Get returns a simulation with its offers.
func (s *Service) Get(ctx context.Context, id domain.SimulationID) (CreateResult, error) {
	sim, err := s.simulations.FindSimulationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return CreateResult{}, dErrors.New(dErrors.CodeNotFound, "simulation not found")
		}
		return CreateResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load simulation")
	}
	offers, err := s.simulations.ListOffersBySimulation(ctx, id)
	if err != nil {
		return CreateResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load offers")
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	return CreateResult{Simulation: sim, Offers: offers}, nil
}

// EligibilityReport lists, per fund, whether it accepts the request and why
// not. Results keep the fund catalog's name order.
type EligibilityReport struct {
	Results []eligibility.Result `json:"results"`
}

// CheckEligibility evaluates the request against every active fund without
// creating anything. Results are cached per request parameters; a stale
// verdict within the TTL is acceptable.
func (s *Service) CheckEligibility(ctx context.Context, input CreateInput) (EligibilityReport, error) {
	client, err := s.clients.FindByID(ctx, input.ClientID)
	if err != nil {
		return EligibilityReport{}, wrapClientErr(err)
	}

	key := eligibilityKey(input)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			var report EligibilityReport
			if err := json.Unmarshal([]byte(cached), &report); err == nil {
				return report, nil
			}
		}
	}

	now := requestcontext.Now(ctx)
	evaluations, err := s.evaluateFunds(ctx, client, input, now)
	if err != nil {
		return EligibilityReport{}, err
	}

	report := EligibilityReport{Results: make([]eligibility.Result, 0, len(evaluations))}
	for _, ev := range evaluations {
		report.Results = append(report.Results, ev.result)
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, string(encoded), s.eligibilityTTL); err != nil {
				s.logger.WarnContext(ctx, "eligibility cache write failed", "error", err)
			}
		}
	}
	return report, nil
}

// evaluateFunds runs the rule engine against every active fund concurrently.
// Results are indexed by the catalog's order, so output is deterministic
// regardless of goroutine scheduling.
func (s *Service) evaluateFunds(ctx context.Context, client clientmodels.Client, input CreateInput, now time.Time) ([]fundEvaluation, error) {
	funds, err := s.funds.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list funds")
	}

	req := eligibility.Request{
		BirthDate:        client.BirthDate,
		MonthlyIncome:    client.MonthlyIncome.Amount(),
		RequestedAmount:  input.RequestedAmount,
		Purpose:          input.Purpose,
		FirstPaymentDate: input.FirstPaymentDate,
	}

	evaluations := make([]fundEvaluation, len(funds))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range funds {
		i, f := i, f
		g.Go(func() error {
			criteria, err := s.funds.ListActiveCriteria(gctx, f.ID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fund criteria")
			}
			evaluations[i] = fundEvaluation{
				fund:     f,
				criteria: criteria,
				result:   eligibility.Evaluate(req, f, criteria, now),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evaluations, nil
}

func eligibilityKey(input CreateInput) string {
	return fmt.Sprintf(cache.EligibilityPrefix+"%s:%.2f:%s:%s",
		input.ClientID, input.RequestedAmount, input.Purpose,
		input.FirstPaymentDate.UTC().Format("2006-01-02"))
}

func wrapClientErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
}
