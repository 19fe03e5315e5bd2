package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

type contributeRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	ExternalTxRef string          `json:"externalTxRef"`
}

// handleContribute records a contribution of the caller. The funds must
// already be custodied by the settlement layer under externalTxRef.
func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req contributeRequest
	if err = decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.engine.Contribute(r.Context(), port.ContributeInput{
		CampaignID:    chi.URLParam(r, "id"),
		Contributor:   who,
		Amount:        req.Amount,
		ExternalTxRef: req.ExternalTxRef,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

type contributionHistoryResponse struct {
	CampaignID  string                `json:"campaignId"`
	Contributor string                `json:"contributor"`
	Total       decimal.Decimal       `json:"total"`
	Events      []domain.Contribution `json:"events"`
}

func (h *Handler) handleContributionHistory(w http.ResponseWriter, r *http.Request) {
	id, address := chi.URLParam(r, "id"), chi.URLParam(r, "address")
	total, err := h.engine.GetContributorTotal(r.Context(), id, address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	events, err := h.engine.GetContributionHistory(r.Context(), id, address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, contributionHistoryResponse{
		CampaignID:  id,
		Contributor: address,
		Total:       total,
		Events:      events,
	})
}

func (h *Handler) handleUserContributions(w http.ResponseWriter, r *http.Request) {
	out, err := h.engine.GetUserContributions(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}
