package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pejotadev/fidlink/internal/client/models"
	"github.com/pejotadev/fidlink/internal/client/service"
	"github.com/pejotadev/fidlink/internal/transport/http/shared"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
)

// Service defines the client operations the handler needs.
type Service interface {
	Register(ctx context.Context, input service.RegisterInput) (models.Client, error)
	Get(ctx context.Context, id domain.ClientID) (models.Client, error)
	UpdateIncome(ctx context.Context, id domain.ClientID, monthlyIncome float64) (models.Client, error)
}

// Handler handles client endpoints.
type Handler struct {
	clients Service
	logger  *slog.Logger
}

// New creates a client Handler.
func New(clients Service, logger *slog.Logger) *Handler {
	return &Handler{clients: clients, logger: logger}
}

// Register registers the client routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clients", h.handleRegister)
	r.Get("/clients/{id}", h.handleGet)
	r.Patch("/clients/{id}/income", h.handleUpdateIncome)
}

type registerRequest struct {
	Name          string  `json:"name"`
	BirthDate     string  `json:"birth_date"`
	TaxID         string  `json:"tax_id"`
	MonthlyIncome float64 `json:"monthly_income"`
}

type clientResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	BirthDate     string  `json:"birth_date"`
	TaxID         string  `json:"tax_id"`
	MonthlyIncome float64 `json:"monthly_income"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toClientResponse(c models.Client) clientResponse {
	return clientResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		BirthDate:     c.BirthDate.Format("2006-01-02"),
		TaxID:         c.TaxID.String(),
		MonthlyIncome: c.MonthlyIncome.Amount(),
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "birth_date must be YYYY-MM-DD"))
		return
	}

	client, err := h.clients.Register(ctx, service.RegisterInput{
		Name:          req.Name,
		BirthDate:     birthDate,
		TaxID:         req.TaxID,
		MonthlyIncome: req.MonthlyIncome,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "client registration rejected", "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toClientResponse(client))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

type updateIncomeRequest struct {
	MonthlyIncome float64 `json:"monthly_income"`
}

func (h *Handler) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	client, err := h.clients.UpdateIncome(r.Context(), id, req.MonthlyIncome)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toClientResponse(client))
}
