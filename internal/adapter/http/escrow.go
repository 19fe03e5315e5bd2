package httpadapter

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

type voteRequest struct {
	Approved *bool `json:"approved"`
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req voteRequest
	if err = decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Approved == nil {
		h.writeError(w, r, domain.Validationf("approved is required"))
		return
	}
	c, err := h.engine.VoteForApproval(r.Context(), chi.URLParam(r, "id"), who, *req.Approved)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.engine.ApproveCampaign(r.Context(), chi.URLParam(r, "id"), who)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

type releaseRequest struct {
	Proof string `json:"proof"`
}

// handleReleaseMilestone releases milestone {index}. The body is optional
// and may carry a proof reference.
func (h *Handler) handleReleaseMilestone(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, domain.NotFoundf("milestone %q not found", chi.URLParam(r, "index")))
		return
	}
	var req releaseRequest
	if r.ContentLength != 0 {
		if err = decodeJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	c, err := h.engine.ReleaseMilestone(r.Context(), port.ReleaseInput{
		CampaignID: chi.URLParam(r, "id"),
		Index:      index,
		Caller:     who,
		Proof:      req.Proof,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleEscrowSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.GetEscrowSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

// handleRefund refunds every unrefunded contribution of the caller.
func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.engine.RequestRefund(r.Context(), chi.URLParam(r, "id"), who)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
