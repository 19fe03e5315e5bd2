package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"medfund/internal/core/port"
)

// CallerHeader carries the authenticated account address. Authentication is
// done upstream; the handler trusts the header.
const CallerHeader = "X-Caller"

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the campaign engine and the document uploader to execute business
// logic and a logger for structured logging. Routes are registered on a
// chi.Router for convenient method handling.
type Handler struct {
	engine port.CampaignEngine
	docs   port.DocumentUploader
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. requestTimeout
// bounds every request's context; zero disables the limit.
func NewHandler(engine port.CampaignEngine, docs port.DocumentUploader, logger *slog.Logger, requestTimeout time.Duration) *Handler {
	h := &Handler{engine: engine, docs: docs, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.handleCreateCampaign)
			r.Get("/", h.handleListCampaigns)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetCampaign)
				r.Patch("/", h.handleUpdateCampaign)
				r.Post("/cancel", h.handleCancelCampaign)
				r.Post("/finalize", h.handleFinalizeCampaign)
				r.Post("/contributions", h.handleContribute)
				r.Get("/contributions/{address}", h.handleContributionHistory)
				r.Post("/votes", h.handleVote)
				r.Post("/approve", h.handleApprove)
				r.Post("/milestones/{index}/release", h.handleReleaseMilestone)
				r.Get("/escrow", h.handleEscrowSummary)
				r.Post("/refunds", h.handleRefund)
				r.Post("/views", h.handleRecordView)
				r.Post("/shares", h.handleRecordShare)
			})
		})
		r.Get("/users/{address}/campaigns", h.handleUserCampaigns)
		r.Get("/users/{address}/contributions", h.handleUserContributions)
		r.Get("/stats/overview", h.handleStatsOverview)
		r.Post("/documents", h.handleUploadDocument)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)))
	})
}
