package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	clientmetrics "github.com/pejotadev/fidlink/internal/client/metrics"
	"github.com/pejotadev/fidlink/internal/client/models"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
	"github.com/pejotadev/fidlink/pkg/money"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
	"github.com/pejotadev/fidlink/pkg/requestcontext"
	"github.com/pejotadev/fidlink/pkg/taxid"
)

type ClientStore interface {
	CreateIfTaxIDAvailable(ctx context.Context, c models.Client) error
	FindByID(ctx context.Context, id domain.ClientID) (models.Client, error)
	FindByTaxID(ctx context.Context, tid taxid.TaxID) (models.Client, error)
	Update(ctx context.Context, c models.Client) error
}

// Service manages borrower registration.
type Service struct {
	clients ClientStore
	logger  *slog.Logger
	metrics *clientmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *clientmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(clients ClientStore, opts ...Option) *Service {
	s := &Service{clients: clients, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries raw registration fields. TaxID and MonthlyIncome are
// parsed here so malformed values surface as validation errors, not
// invariant violations.
type RegisterInput struct {
	Name          string
	BirthDate     time.Time
	TaxID         string
	MonthlyIncome float64
}

// Register creates a client. The tax id must not belong to an existing
// client.
func (s *Service) Register(ctx context.Context, input RegisterInput) (models.Client, error) {
	tid, err := taxid.Parse(input.TaxID)
	if err != nil {
		return models.Client{}, err
	}
	income, err := money.New(input.MonthlyIncome)
	if err != nil {
		return models.Client{}, err
	}

	now := requestcontext.Now(ctx)
	client, err := models.NewClient(domain.NewClientID(), input.Name, input.BirthDate, tid, income, now)
	if err != nil {
		return models.Client{}, err
	}

	if err := s.clients.CreateIfTaxIDAvailable(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return models.Client{}, dErrors.New(dErrors.CodeConflict, "a client with this tax id already exists")
		}
		return models.Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register client")
	}

	s.logger.InfoContext(ctx, "client registered", "client_id", client.ID)
	if s.metrics != nil {
		s.metrics.ClientsRegistered.Inc()
	}
	return client, nil
}

// Get returns a client by id.
func (s *Service) Get(ctx context.Context, id domain.ClientID) (models.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return models.Client{}, wrapClientErr(err)
	}
	return client, nil
}

// UpdateIncome replaces the client's monthly income.
func (s *Service) UpdateIncome(ctx context.Context, id domain.ClientID, monthlyIncome float64) (models.Client, error) {
	income, err := money.New(monthlyIncome)
	if err != nil {
		return models.Client{}, err
	}

	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return models.Client{}, wrapClientErr(err)
	}

	client = client.WithIncome(income, requestcontext.Now(ctx))
	if err := s.clients.Update(ctx, client); err != nil {
		return models.Client{}, wrapClientErr(err)
	}

	s.logger.InfoContext(ctx, "client income updated", "client_id", client.ID)
	if s.metrics != nil {
		s.metrics.IncomeUpdates.Inc()
	}
	return client, nil
}

func wrapClientErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
}
