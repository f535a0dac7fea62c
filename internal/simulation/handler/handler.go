package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pejotadev/fidlink/internal/simulation/service"
	"github.com/pejotadev/fidlink/internal/transport/http/shared"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Service defines the simulation operations the handler needs.
type Service interface {
	Create(ctx context.Context, input service.CreateInput) (service.CreateResult, error)
	Get(ctx context.Context, id domain.SimulationID) (service.CreateResult, error)
	CheckEligibility(ctx context.Context, input service.CreateInput) (service.EligibilityReport, error)
}

// Handler handles simulation and eligibility endpoints.
type Handler struct {
	simulations Service
	logger      *slog.Logger
}

// New creates a simulation Handler.
func New(simulations Service, logger *slog.Logger) *Handler {
	return &Handler{simulations: simulations, logger: logger}
}

// Register registers the simulation routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/simulations", h.handleCreate)
	r.Get("/simulations/{id}", h.handleGet)
	r.Post("/eligibility/check", h.handleCheckEligibility)
}

type simulationRequest struct {
	ClientID         string  `json:"client_id"`
	RequestedAmount  float64 `json:"requested_amount"`
	Purpose          string  `json:"purpose"`
	FirstPaymentDate string  `json:"first_payment_date"`
	Installments     int     `json:"installments"`
}

// parseInput validates the boundary representation: ids, purpose, and dates
// are rejected here so the services only see well-formed values.
func (h *Handler) parseInput(req simulationRequest) (service.CreateInput, error) {
	clientID, err := domain.ParseClientID(req.ClientID)
	if err != nil {
		return service.CreateInput{}, err
	}
	purpose, err := domain.ParseLoanPurpose(req.Purpose)
	if err != nil {
		return service.CreateInput{}, err
	}
	firstPayment, err := time.Parse("2006-01-02", req.FirstPaymentDate)
	if err != nil {
		return service.CreateInput{}, dErrors.New(dErrors.CodeBadRequest, "first_payment_date must be YYYY-MM-DD")
	}
	if req.RequestedAmount <= 0 {
		return service.CreateInput{}, dErrors.New(dErrors.CodeBadRequest, "requested_amount must be positive")
	}
	if req.Installments <= 0 {
		return service.CreateInput{}, dErrors.New(dErrors.CodeBadRequest, "installments must be positive")
	}
	return service.CreateInput{
		ClientID:         clientID,
		RequestedAmount:  req.RequestedAmount,
		Purpose:          purpose,
		FirstPaymentDate: firstPayment,
		Installments:     req.Installments,
	}, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	input, err := h.parseInput(req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.simulations.Create(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "simulation rejected", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseSimulationID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	result, err := h.simulations.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	input, err := h.parseInput(req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, err := h.simulations.CheckEligibility(ctx, input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}
