// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// EventStore persists events. Update runs mutate inside the store's
// per-event atomic section and persists the result only when it succeeds.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	List(ctx context.Context) ([]model.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, mutate func(*model.Event) error) (*model.Event, error)
	Delete(ctx context.Context, id string) error
}

// BookingStore persists bookings together with the availability counter
// they draw from. Reserve and Transition are atomic with respect to every
// other operation on the same event or booking.
type BookingStore interface {
	Reserve(ctx context.Context, userID, eventID string, ticketCount int) (*model.Booking, error)
	Transition(ctx context.Context, id string, apply func(*model.Booking) (model.Transition, error)) (*model.Booking, model.Transition, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Booking, error)
}

// EventCache is a best-effort read cache in front of EventStore.GetByID.
// A nil event with a nil error is a miss. Invalidate advances the event's
// generation, and Set must discard a write whose generation is no longer
// current.
type EventCache interface {
	Get(ctx context.Context, id string) (*model.Event, error)
	Generation(ctx context.Context, id string) (int64, error)
	Set(ctx context.Context, e *model.Event, generation int64) (bool, error)
	Invalidate(ctx context.Context, ids ...string) error
}

// Option customises a service at construction.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the wall clock used for date checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
