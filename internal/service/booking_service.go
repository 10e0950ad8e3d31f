package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/metrics"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/sirupsen/logrus"
)

// MaxTicketsPerBooking caps a single reservation.
const MaxTicketsPerBooking = 10

// BookingService orchestrates the booking ledger and its state machine.
type BookingService struct {
	bookings BookingStore
	events   EventStore
	cache    EventCache
	logger   *logrus.Logger
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(bookings BookingStore, events EventStore, cache EventCache, logger *logrus.Logger) *BookingService {
	return &BookingService{bookings: bookings, events: events, cache: cache, logger: logger}
}

// CreateBooking reserves ticketCount tickets on an event for the caller.
// The booking starts pending and already holds its tickets.
func (s *BookingService) CreateBooking(ctx context.Context, session model.Session, eventID string, ticketCount int) (booking *model.Booking, err error) {
	defer func(start time.Time) { metrics.Track("create_booking", start, err) }(time.Now())

	eventID = strings.TrimSpace(eventID)
	verr := &model.ValidationError{}
	if eventID == "" {
		verr.Add("event_id", "is required")
	}
	switch {
	case ticketCount < 1:
		verr.Add("ticket_count", "must be at least 1")
	case ticketCount > MaxTicketsPerBooking:
		verr.Add("ticket_count", fmt.Sprintf("must be at most %d", MaxTicketsPerBooking))
	}
	if err = verr.OrNil(); err != nil {
		return nil, err
	}

	booking, err = s.bookings.Reserve(ctx, session.UserID, eventID, ticketCount)
	if err != nil {
		return nil, err
	}

	metrics.TicketsReserved(ticketCount)
	s.invalidate(ctx, eventID)
	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"event_id":     eventID,
		"user_id":      session.UserID,
		"ticket_count": ticketCount,
	}).Info("booking created")
	return booking, nil
}

// Confirm moves a pending booking to confirmed. Confirming a confirmed
// booking returns it unchanged.
func (s *BookingService) Confirm(ctx context.Context, session model.Session, id string) (booking *model.Booking, err error) {
	defer func(start time.Time) { metrics.Track("confirm", start, err) }(time.Now())

	booking, t, err := s.bookings.Transition(ctx, id, owned(session, (*model.Booking).Confirm))
	if err != nil {
		return nil, err
	}
	if t.Changed() {
		s.logger.WithContext(ctx).WithField("booking_id", id).Info("booking confirmed")
	}
	return booking, nil
}

// Cancel moves a pending or confirmed booking to cancelled and returns its
// tickets to the event.
func (s *BookingService) Cancel(ctx context.Context, session model.Session, id string) (booking *model.Booking, err error) {
	defer func(start time.Time) { metrics.Track("cancel", start, err) }(time.Now())

	booking, t, err := s.bookings.Transition(ctx, id, owned(session, (*model.Booking).Cancel))
	if err != nil {
		return nil, err
	}

	metrics.TicketsReleased(t.Release)
	s.invalidate(ctx, booking.EventID)
	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"booking_id": id,
		"event_id":   booking.EventID,
		"from":       t.From,
		"released":   t.Release,
	}).Info("booking cancelled")
	return booking, nil
}

// GetBooking returns one of the caller's bookings with its event. Bookings
// the caller may not access are reported as model.ErrNotFound.
func (s *BookingService) GetBooking(ctx context.Context, session model.Session, id string) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanAccess(booking) {
		return nil, model.ErrNotFound
	}
	return booking, nil
}

// FindBooking returns any booking by id. Ticket verification at the door
// uses it, since the scanning organizer does not own the booking.
func (s *BookingService) FindBooking(ctx context.Context, id string) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// ListUserBookings returns the caller's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, session model.Session) ([]model.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

// ListEventBookings returns an event with its bookings, newest first, and
// their aggregate stats.
func (s *BookingService) ListEventBookings(ctx context.Context, eventID string) (*model.EventBookings, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event bookings: %w", err)
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}

	return &model.EventBookings{
		Event:    event,
		Bookings: bookings,
		Stats:    model.Stats(bookings),
	}, nil
}

// EventStats aggregates the bookings of one event.
func (s *BookingService) EventStats(ctx context.Context, eventID string) (model.EventStats, error) {
	view, err := s.ListEventBookings(ctx, eventID)
	if err != nil {
		return model.EventStats{}, err
	}
	return view.Stats, nil
}

// owned restricts a state change to bookings the caller may access. The
// check runs under the store's booking lock.
func owned(session model.Session, apply func(*model.Booking) (model.Transition, error)) func(*model.Booking) (model.Transition, error) {
	return func(b *model.Booking) (model.Transition, error) {
		if !session.CanAccess(b) {
			return model.Transition{From: b.Status, To: b.Status}, model.ErrNotFound
		}
		return apply(b)
	}
}

func (s *BookingService) invalidate(ctx context.Context, eventID string) {
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("event_id", eventID).Warn("event cache invalidation failed")
	}
}
