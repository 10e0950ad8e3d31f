package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/go-chi/chi/v5"
)

// CreateBooking handles POST /bookings
// Reserves tickets; the booking starts pending.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), session(r), req.EventID, req.TicketCount)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// MyBookings handles GET /bookings/mine
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListUserBookings(r.Context(), session(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// GetBooking handles GET /bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.GetBooking(r.Context(), session(r), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// ConfirmBooking handles PUT /bookings/{id}/confirm
func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.Confirm(r.Context(), session(r), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// CancelBooking handles PUT /bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.Cancel(r.Context(), session(r), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// PayBooking handles POST /bookings/{id}/pay
// Simulated payment; success confirms the booking.
func (h *Handler) PayBooking(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.payments.Pay(r.Context(), session(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// DownloadTicket handles GET /bookings/{id}/ticket
// Streams the PNG ticket of a confirmed booking as an attachment.
func (h *Handler) DownloadTicket(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.GetBooking(r.Context(), session(r), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	art, err := h.tickets.Generate(booking)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

type verifyRequest struct {
	Payload string `json:"payload"`
}

type verifyResponse struct {
	Valid   bool           `json:"valid"`
	Booking *model.Booking `json:"booking"`
}

// VerifyTicket handles POST /tickets/verify
// Checks a scanned QR payload against the ledger.
func (h *Handler) VerifyTicket(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	claim, err := h.tickets.Verify(req.Payload)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	booking, err := h.bookings.FindBooking(r.Context(), claim.BookingID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if booking.EventID != claim.EventID {
		writeError(w, http.StatusBadRequest, "invalid ticket payload")
		return
	}
	if booking.Status != model.StatusConfirmed {
		h.respondError(w, r, model.ErrInvalidState)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, Booking: booking})
}
