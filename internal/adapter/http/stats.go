package httpadapter

import (
	"net/http"
)

// handleStatsOverview returns platform totals: campaigns by status, raised
// amount, contribution events and distinct contributors.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.GetStatsOverview(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

type uploadResponse struct {
	Ref string `json:"ref"`
}

// handleUploadDocument stores the raw request body and returns its content
// reference with HTTP 201.
func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ref, err := h.docs.UploadDocument(r.Context(), r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, uploadResponse{Ref: ref})
}
