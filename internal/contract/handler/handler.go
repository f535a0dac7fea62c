package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pejotadev/fidlink/internal/contract/models"
	"github.com/pejotadev/fidlink/internal/contract/service"
	"github.com/pejotadev/fidlink/internal/transport/http/shared"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Service defines the contract operations the handler needs.
type Service interface {
	CreateFromOffer(ctx context.Context, offerID domain.OfferID) (service.Detail, error)
	Get(ctx context.Context, id domain.ContractID) (service.Detail, error)
	List(ctx context.Context, page, limit int) (service.Page, error)
	Complete(ctx context.Context, id domain.ContractID) (models.Contract, error)
	Cancel(ctx context.Context, id domain.ContractID) (models.Contract, error)
	EarlyPayoffQuote(ctx context.Context, id domain.ContractID, payoffDate time.Time) (float64, error)
}

// Handler handles contract endpoints.
type Handler struct {
	contracts Service
	logger    *slog.Logger
}

// New creates a contract Handler.
func New(contracts Service, logger *slog.Logger) *Handler {
	return &Handler{contracts: contracts, logger: logger}
}

// Register registers the contract routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/contracts", h.handleCreate)
	r.Get("/contracts", h.handleList)
	r.Get("/contracts/{id}", h.handleGet)
	r.Post("/contracts/{id}/complete", h.handleComplete)
	r.Post("/contracts/{id}/cancel", h.handleCancel)
	r.Get("/contracts/{id}/early-payoff", h.handleEarlyPayoff)
}

type createRequest struct {
	OfferID string `json:"offer_id"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	offerID, err := domain.ParseOfferID(req.OfferID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	detail, err := h.contracts.CreateFromOffer(ctx, offerID)
	if err != nil {
		h.logger.WarnContext(ctx, "contract creation rejected", "offer_id", offerID, "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, detail)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.contracts.List(r.Context(), page, limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseContractID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	detail, err := h.contracts.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.contracts.Complete)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.contracts.Cancel)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request,
	transition func(ctx context.Context, id domain.ContractID) (models.Contract, error)) {
	id, err := domain.ParseContractID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := transition(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleEarlyPayoff(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseContractID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	payoffDate, err := time.Parse("2006-01-02", r.URL.Query().Get("payoff_date"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "payoff_date must be YYYY-MM-DD"))
		return
	}

	amount, err := h.contracts.EarlyPayoffQuote(r.Context(), id, payoffDate)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]float64{"early_payoff_amount": amount})
}
