// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
	"github.com/Shivanand-hulikatti/eventhub/internal/ticket"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all HTTP handlers for the booking API.
type Handler struct {
	events   *service.EventService
	bookings *service.BookingService
	payments *service.PaymentService
	tickets  *ticket.Generator
	health   Pinger
	logger   *logrus.Logger
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondError maps domain errors onto HTTP statuses. Unexpected errors are
// logged and reported without detail.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, model.ErrSoldOut):
		writeError(w, http.StatusConflict, "not enough tickets available")
	case errors.Is(err, model.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "booking status does not allow this action")
	case errors.Is(err, model.ErrInvalidState):
		writeError(w, http.StatusConflict, "booking is not confirmed")
	case errors.Is(err, model.ErrEventHasBookings):
		writeError(w, http.StatusConflict, "event still has active bookings")
	case errors.Is(err, ticket.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, "invalid ticket payload")
	default:
		h.logger.WithContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error, please retry")
	}
}

func session(r *http.Request) model.Session {
	s, _ := auth.SessionFrom(r.Context())
	return s
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Warn("health check degraded")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "cache": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
