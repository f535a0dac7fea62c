package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pejotadev/fidlink/internal/cache"
	"github.com/pejotadev/fidlink/internal/fund/models"
	"github.com/pejotadev/fidlink/internal/transport/http/shared"
	"github.com/pejotadev/fidlink/pkg/domain"
	dErrors "github.com/pejotadev/fidlink/pkg/domain-errors"
	"github.com/pejotadev/fidlink/pkg/platform/sentinel"
	"github.com/pejotadev/fidlink/pkg/requestcontext"
)

// Store defines the fund catalog access the handler needs.
type Store interface {
	ListActive(ctx context.Context) ([]models.Fund, error)
	ListAll(ctx context.Context) ([]models.Fund, error)
	ListActiveCriteria(ctx context.Context, fundID domain.FundID) ([]models.Criteria, error)
	FindByID(ctx context.Context, id domain.FundID) (models.Fund, error)
	Update(ctx context.Context, f models.Fund) error
}

// Handler exposes the fund catalog. Catalog changes invalidate cached
// eligibility verdicts; cache may be nil when caching is not configured.
type Handler struct {
	funds  Store
	cache  cache.Cache
	logger *slog.Logger
}

// New creates a fund Handler.
func New(funds Store, c cache.Cache, logger *slog.Logger) *Handler {
	return &Handler{funds: funds, cache: c, logger: logger}
}

// Register registers the fund routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/funds", h.handleList)
	r.Get("/funds/{id}/criteria", h.handleListCriteria)
	r.Patch("/funds/{id}", h.handleSetActive)
}

type fundResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	BaseInterestRate float64 `json:"base_interest_rate"`
	Active           bool    `json:"active"`
	CreatedAt        string  `json:"created_at"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		funds []models.Fund
		err   error
	)
	if r.URL.Query().Get("include_inactive") == "true" {
		funds, err = h.funds.ListAll(ctx)
	} else {
		funds, err = h.funds.ListActive(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list funds", "error", err)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list funds"))
		return
	}

	out := make([]fundResponse, 0, len(funds))
	for _, f := range funds {
		out = append(out, fundResponse{
			ID:               f.ID.String(),
			Name:             f.Name,
			BaseInterestRate: f.BaseInterestRate,
			Active:           f.Active,
			CreatedAt:        f.CreatedAt.Format(time.RFC3339),
		})
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"funds": out})
}

func (h *Handler) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseFundID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	criteria, err := h.funds.ListActiveCriteria(r.Context(), id)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list criteria"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"criteria": criteria})
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// handleSetActive activates or deactivates a fund. Deactivated funds stop
// appearing in simulations, so any cached eligibility verdict is flushed.
func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseFundID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "body must carry an active flag"))
		return
	}

	f, err := h.funds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "fund not found"))
			return
		}
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fund"))
		return
	}

	now := requestcontext.Now(ctx)
	if *req.Active {
		f = f.Activated(now)
	} else {
		f = f.Deactivated(now)
	}
	if err := h.funds.Update(ctx, f); err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update fund"))
		return
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, cache.EligibilityPrefix); err != nil {
			h.logger.WarnContext(ctx, "failed to invalidate eligibility cache",
				"fund_id", f.ID, "error", err)
		}
	}

	h.logger.InfoContext(ctx, "fund status updated", "fund_id", f.ID, "active", f.Active)
	shared.WriteJSON(w, http.StatusOK, fundResponse{
		ID:               f.ID.String(),
		Name:             f.Name,
		BaseInterestRate: f.BaseInterestRate,
		Active:           f.Active,
		CreatedAt:        f.CreatedAt.Format(time.RFC3339),
	})
}
