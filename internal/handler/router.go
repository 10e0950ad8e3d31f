package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
	"github.com/Shivanand-hulikatti/eventhub/internal/ticket"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the router wires into its handlers.
type Deps struct {
	Events   *service.EventService
	Bookings *service.BookingService
	Payments *service.PaymentService
	Tickets  *ticket.Generator
	Auth     *auth.Authenticator
	Health   Pinger
	Logger   *logrus.Logger

	CORSOrigins   []string
	EnableMetrics bool
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		events:   d.Events,
		bookings: d.Bookings,
		payments: d.Payments,
		tickets:  d.Tickets,
		health:   d.Health,
		logger:   d.Logger,
	}

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(d.Logger))        // structured access log
	r.Use(CORS(d.CORSOrigins))

	// Health
	r.Get("/health", h.HealthCheck)
	if d.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	organizer := auth.RequireRole(model.RoleOrganizer)
	staff := auth.RequireRole(model.RoleOrganizer, model.RoleAdmin)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Middleware)
			r.With(organizer).Get("/mine", h.MyEvents)
			r.With(organizer).Post("/", h.CreateEvent)
			r.With(organizer).Put("/{id}", h.UpdateEvent)
			r.With(organizer).Delete("/{id}", h.DeleteEvent)
			r.With(staff).Get("/{id}/bookings", h.EventBookings)
			r.With(staff).Get("/{id}/stats", h.EventStats)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(d.Auth.Middleware)
		r.Post("/", h.CreateBooking)
		r.Get("/mine", h.MyBookings)
		r.Get("/{id}", h.GetBooking)
		r.Put("/{id}/confirm", h.ConfirmBooking)
		r.Put("/{id}/cancel", h.CancelBooking)
		r.Post("/{id}/pay", h.PayBooking)
		r.Get("/{id}/ticket", h.DownloadTicket)
	})

	r.With(d.Auth.Middleware, staff).Post("/tickets/verify", h.VerifyTicket)
	r.With(d.Auth.Middleware).Get("/dashboard", h.Dashboard)

	return r
}
