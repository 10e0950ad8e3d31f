package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const bookingWithEventColumns = `b.id, b.event_id, b.user_id, b.ticket_count, b.total_amount::text, b.status,
	b.created_at, b.updated_at,
	e.id, e.organizer_id, e.title, e.description, e.location, e.date, e.start_time, e.image_url,
	e.ticket_price::text, e.total_tickets, e.available_tickets, e.created_at`

func scanBookingWithEvent(row pgx.Row, b *model.Booking) error {
	var (
		amount, price, status string
		e                     model.Event
	)
	if err := row.Scan(
		&b.ID, &b.EventID, &b.UserID, &b.TicketCount, &amount, &status, &b.CreatedAt, &b.UpdatedAt,
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Location, &e.Date, &e.Time, &e.ImageURL,
		&price, &e.TotalTickets, &e.AvailableTickets, &e.CreatedAt,
	); err != nil {
		return err
	}
	b.Status = model.BookingStatus(status)
	if err := parseDecimal(amount, &b.TotalAmount); err != nil {
		return err
	}
	if err := parseDecimal(price, &e.TicketPrice); err != nil {
		return err
	}
	b.Event = &e
	return nil
}

// BookingRepository handles persistence for bookings and the availability
// counter they draw from.
type BookingRepository struct {
	db     DB
	logger *logrus.Logger
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db DB, logger *logrus.Logger) *BookingRepository {
	return &BookingRepository{db: db, logger: logger}
}

// Reserve creates a pending booking and takes its tickets out of the event's
// availability inside one transaction.
//
// A naive read-then-write lets two requests both read available=1 and both
// book the last ticket. Locking the event row with SELECT … FOR UPDATE
// serialises every reservation, release and capacity edit on that event, so
// the check and the decrement see the same value.
func (r *BookingRepository) Reserve(ctx context.Context, userID, eventID string, ticketCount int) (booking *model.Booking, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, r.logger, tx)
		}
	}()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if err = event.Reserve(ticketCount); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET available_tickets = $1 WHERE id = $2`,
		event.AvailableTickets, event.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("decrement available_tickets: %w", err)
	}

	now := time.Now().UTC()
	booking = &model.Booking{
		ID:          uuid.New().String(),
		EventID:     event.ID,
		UserID:      userID,
		TicketCount: ticketCount,
		TotalAmount: event.TicketPrice.Mul(decimal.NewFromInt(int64(ticketCount))),
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Event:       event,
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, event_id, user_id, ticket_count, total_amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.ID, booking.EventID, booking.UserID, booking.TicketCount, booking.TotalAmount,
		string(booking.Status), booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return booking, nil
}

// Transition runs apply against the locked booking row and persists the
// result. When the transition releases tickets, the event counter is
// restored in the same transaction, so two concurrent cancels cannot both
// release. Locks are always taken booking first, then event.
func (r *BookingRepository) Transition(
	ctx context.Context,
	id string,
	apply func(*model.Booking) (model.Transition, error),
) (booking *model.Booking, t model.Transition, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, t, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, r.logger, tx)
		}
	}()

	booking = &model.Booking{}
	var amount, status string
	err = tx.QueryRow(ctx,
		`SELECT id, event_id, user_id, ticket_count, total_amount::text, status, created_at, updated_at
		 FROM bookings WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&booking.ID, &booking.EventID, &booking.UserID, &booking.TicketCount, &amount,
		&status, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, t, model.ErrNotFound
		}
		return nil, t, fmt.Errorf("lock booking row: %w", err)
	}
	booking.Status = model.BookingStatus(status)
	if err = parseDecimal(amount, &booking.TotalAmount); err != nil {
		return nil, t, err
	}

	if t, err = apply(booking); err != nil {
		return nil, t, err
	}

	if t.Changed() {
		booking.UpdatedAt = time.Now().UTC()
		_, err = tx.Exec(ctx,
			`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`,
			string(booking.Status), booking.UpdatedAt, booking.ID,
		)
		if err != nil {
			return nil, t, fmt.Errorf("update booking status: %w", err)
		}
	}

	if t.Release > 0 {
		var event *model.Event
		if event, err = lockEvent(ctx, tx, booking.EventID); err != nil {
			return nil, t, err
		}
		if err = event.Release(t.Release); err != nil {
			return nil, t, err
		}
		_, err = tx.Exec(ctx,
			`UPDATE events SET available_tickets = $1 WHERE id = $2`,
			event.AvailableTickets, event.ID,
		)
		if err != nil {
			return nil, t, fmt.Errorf("restore available_tickets: %w", err)
		}
		booking.Event = event
	} else {
		event := &model.Event{}
		err = scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, booking.EventID), event)
		if err != nil {
			return nil, t, fmt.Errorf("load booking event: %w", err)
		}
		booking.Event = event
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, t, fmt.Errorf("commit transaction: %w", err)
	}
	return booking, t, nil
}

// GetByID returns a booking joined with its event, or model.ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := scanBookingWithEvent(r.db.QueryRow(ctx,
		`SELECT `+bookingWithEventColumns+`
		 FROM bookings b JOIN events e ON e.id = b.event_id
		 WHERE b.id = $1`,
		id,
	), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.query(ctx,
		`SELECT `+bookingWithEventColumns+`
		 FROM bookings b JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC`,
		userID,
	)
}

// ListByEvent returns all bookings for one event, newest first.
func (r *BookingRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Booking, error) {
	return r.query(ctx,
		`SELECT `+bookingWithEventColumns+`
		 FROM bookings b JOIN events e ON e.id = b.event_id
		 WHERE b.event_id = $1
		 ORDER BY b.created_at DESC`,
		eventID,
	)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := scanBookingWithEvent(rows, &b); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
