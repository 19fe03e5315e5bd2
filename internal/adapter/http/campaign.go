package httpadapter

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"medfund/internal/core/domain"
)

type milestoneRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type createCampaignRequest struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     domain.Category    `json:"category"`
	GoalAmount   decimal.Decimal    `json:"goalAmount"`
	Deadline     time.Time          `json:"deadline"`
	Documents    []string           `json:"documents"`
	AllOrNothing bool               `json:"allOrNothing"`
	Milestones   []milestoneRequest `json:"milestones"`
}

// handleCreateCampaign creates a campaign owned by the caller. A missing id
// is generated. On success it returns HTTP 201 with the campaign.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	creator, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req createCampaignRequest
	if err = decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		req.ID = uuid.NewString()
	}
	in := domain.CreateCampaignInput{
		ID:           req.ID,
		Creator:      creator,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		GoalAmount:   req.GoalAmount,
		Deadline:     req.Deadline,
		Documents:    req.Documents,
		AllOrNothing: req.AllOrNothing,
	}
	for _, m := range req.Milestones {
		in.Milestones = append(in.Milestones, domain.MilestoneInput{Description: m.Description, Amount: m.Amount})
	}
	c, err := h.engine.CreateCampaign(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

// handleListCampaigns accepts status, category, creator, min_goal, max_goal,
// sort (created|deadline|raised_ratio), order (asc|desc, default desc), page
// and limit query parameters.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.engine.ListCampaigns(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func parseFilter(r *http.Request) (domain.CampaignFilter, error) {
	q := r.URL.Query()
	f := domain.CampaignFilter{
		Status:   domain.Status(strings.ToUpper(q.Get("status"))),
		Category: domain.Category(strings.ToUpper(q.Get("category"))),
		Creator:  q.Get("creator"),
		Sort:     domain.SortKey(q.Get("sort")),
		Desc:     true,
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		f.Desc = false
	default:
		return f, domain.Validationf("order must be asc or desc")
	}
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_goal", &f.MinGoal}, {"max_goal", &f.MaxGoal}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, domain.Validationf("invalid %s", p.name)
		}
		*p.dst = &d
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &f.Page}, {"limit", &f.Limit}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, domain.Validationf("invalid %s", p.name)
		}
		*p.dst = n
	}
	return f, nil
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.engine.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

// handleUpdateCampaign applies a JSON object of field changes. Allowed keys
// are title, description, documents, status and isApproved.
func (h *Handler) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var fields map[string]any
	if err = decodeJSON(r, &fields); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.engine.UpdateCampaign(r.Context(), chi.URLParam(r, "id"), who, fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.engine.CancelCampaign(r.Context(), chi.URLParam(r, "id"), who)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleFinalizeCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.engine.FinalizeCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleRecordView(w http.ResponseWriter, r *http.Request) {
	a, err := h.engine.RecordView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) handleRecordShare(w http.ResponseWriter, r *http.Request) {
	a, err := h.engine.RecordShare(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) handleUserCampaigns(w http.ResponseWriter, r *http.Request) {
	cs, err := h.engine.GetUserCreatedCampaigns(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cs)
}
