package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"medfund/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:    http.StatusBadRequest,
	domain.KindAuthorization: http.StatusForbidden,
	domain.KindState:         http.StatusConflict,
	domain.KindConflict:      http.StatusConflict,
	domain.KindNotFound:      http.StatusNotFound,
	domain.KindSettlement:    http.StatusBadGateway,
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; the status is already sent
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps domain error kinds to status codes. Anything else is an
// internal error: it is logged and its details are not exposed.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		status, ok := kindStatus[de.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if de.Kind == domain.KindSettlement {
			h.logger.Warn("settlement failure", slog.String("request_id", middleware.GetReqID(r.Context())), slog.Any("error", err))
		}
		h.writeJSON(w, status, errorResponse{Error: string(de.Kind), Message: de.Error()})
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		h.writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "TIMEOUT", Message: "request timed out"})
		return
	}
	h.logger.Error("request failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "INTERNAL", Message: "internal error"})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Validationf("invalid JSON body: %v", err)
	}
	return nil
}

// caller returns the X-Caller address or an authorization error.
func caller(r *http.Request) (string, error) {
	c := strings.TrimSpace(r.Header.Get(CallerHeader))
	if c == "" {
		return "", domain.Authorizationf("%s header is required", CallerHeader)
	}
	return c, nil
}
