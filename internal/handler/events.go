package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/go-chi/chi/v5"
)

// ListEvents handles GET /events
// Upcoming events come first; ?search= filters and ?sort= reorders.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.events.ListEvents(r.Context(), model.ListEventsQuery{
		Search: q.Get("search"),
		SortBy: q.Get("sort"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// MyEvents handles GET /events/mine
func (h *Handler) MyEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListByOrganizer(r.Context(), session(r).UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// CreateEvent handles POST /events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.CreateEvent(r.Context(), session(r), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /events/{id}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EventBookings handles GET /events/{id}/bookings
// Returns the event, its bookings and their stats.
func (h *Handler) EventBookings(w http.ResponseWriter, r *http.Request) {
	view, err := h.bookings.ListEventBookings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// EventStats handles GET /events/{id}/stats
func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bookings.EventStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Dashboard handles GET /dashboard
// Organizers see their own events, admins see every event, attendees see
// their bookings.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	view := model.Dashboard{Role: s.Role}

	switch s.Role {
	case model.RoleOrganizer, model.RoleAdmin:
		var (
			events []model.Event
			err    error
		)
		if s.Role == model.RoleOrganizer {
			events, err = h.events.ListByOrganizer(r.Context(), s.UserID)
		} else {
			events, err = h.events.ListEvents(r.Context(), model.ListEventsQuery{})
		}
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		view.Upcoming, view.Past = h.events.PartitionEvents(events)
	default:
		bookings, err := h.bookings.ListUserBookings(r.Context(), s)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		view.Bookings = bookings
	}

	writeJSON(w, http.StatusOK, view)
}
