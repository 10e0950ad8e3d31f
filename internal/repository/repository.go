// Package repository implements persistence for events and bookings.
// The Postgres repositories use pgx directly (no ORM); MemoryStore offers
// the same guarantees in-process for development and tests.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DB is the subset of *pgxpool.Pool the repositories depend on.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const eventColumns = `id, organizer_id, title, description, location, date, start_time, image_url,
	ticket_price::text, total_tickets, available_tickets, created_at`

func scanEvent(row pgx.Row, e *model.Event) error {
	var price string
	if err := row.Scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Location, &e.Date, &e.Time, &e.ImageURL,
		&price, &e.TotalTickets, &e.AvailableTickets, &e.CreatedAt,
	); err != nil {
		return err
	}
	return parseDecimal(price, &e.TicketPrice)
}

func parseDecimal(s string, dst *decimal.Decimal) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse decimal %q: %w", s, err)
	}
	*dst = d
	return nil
}

func rollback(ctx context.Context, logger *logrus.Logger, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.WithContext(ctx).WithError(err).Warn("rollback failed")
	}
}

// EventRepository handles persistence for events.
type EventRepository struct {
	db     DB
	logger *logrus.Logger
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db DB, logger *logrus.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

// Create inserts a new event, assigning its UUID and creation time.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, organizer_id, title, description, location, date, start_time, image_url,
		                     ticket_price, total_tickets, available_tickets, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.OrganizerID, e.Title, e.Description, e.Location, e.Date, e.Time, e.ImageURL,
		e.TicketPrice, e.TotalTickets, e.AvailableTickets, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List returns all events ordered by date ascending.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	return r.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date ASC, created_at ASC`)
}

// ListByOrganizer returns the events owned by one organizer.
func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	return r.query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = $1 ORDER BY date ASC, created_at ASC`,
		organizerID,
	)
}

func (r *EventRepository) query(ctx context.Context, sql string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or model.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// Update applies mutate to the event while holding its row lock, so edits
// serialise with reservations and releases on the same event.
func (r *EventRepository) Update(ctx context.Context, id string, mutate func(*model.Event) error) (event *model.Event, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, r.logger, tx)
		}
	}()

	event, err = lockEvent(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err = mutate(event); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events
		 SET title = $1, description = $2, location = $3, date = $4, start_time = $5, image_url = $6,
		     ticket_price = $7, total_tickets = $8, available_tickets = $9
		 WHERE id = $10`,
		event.Title, event.Description, event.Location, event.Date, event.Time, event.ImageURL,
		event.TicketPrice, event.TotalTickets, event.AvailableTickets, event.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return event, nil
}

// Delete removes an event that has no pending or confirmed bookings.
// Cancelled bookings go with it.
func (r *EventRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, r.logger, tx)
		}
	}()

	if _, err = lockEvent(ctx, tx, id); err != nil {
		return err
	}

	var active int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status <> 'cancelled'`,
		id,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("count active bookings: %w", err)
	}
	if active > 0 {
		return model.ErrEventHasBookings
	}

	if _, err = tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// lockEvent reads an event with SELECT … FOR UPDATE. Any other transaction
// locking the same row blocks until this one commits or rolls back.
func lockEvent(ctx context.Context, tx pgx.Tx, id string) (*model.Event, error) {
	var e model.Event
	err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return &e, nil
}
