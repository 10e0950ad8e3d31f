package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is a user's reservation of tickets against one event.
// TotalAmount is a snapshot of TicketCount × price taken at creation.
type Booking struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	UserID      string          `json:"user_id"`
	TicketCount int             `json:"ticket_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      BookingStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Event is populated on reads that join the referenced event.
	Event *Event `json:"event,omitempty"`
}

// ShortCode is the human-readable booking reference printed on tickets.
func (b *Booking) ShortCode() string {
	code := strings.ReplaceAll(b.ID, "-", "")
	if len(code) > 8 {
		code = code[:8]
	}
	return strings.ToUpper(code)
}

// Transition describes a status change and the number of tickets it hands
// back to the event.
type Transition struct {
	From    BookingStatus
	To      BookingStatus
	Release int
}

// Changed is false for idempotent no-op transitions.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Confirm moves a pending booking to confirmed. Confirming an already
// confirmed booking is a no-op; a cancelled booking cannot be confirmed.
// Capacity was reserved at creation, so nothing is released.
func (b *Booking) Confirm() (Transition, error) {
	t := Transition{From: b.Status, To: b.Status}
	switch b.Status {
	case StatusPending:
		t.To = StatusConfirmed
	case StatusConfirmed:
		return t, nil
	default:
		return t, ErrInvalidTransition
	}
	b.Status = t.To
	return t, nil
}

// Cancel moves a pending or confirmed booking to cancelled and releases its
// tickets. Cancelled is terminal.
func (b *Booking) Cancel() (Transition, error) {
	t := Transition{From: b.Status, To: b.Status}
	switch b.Status {
	case StatusPending, StatusConfirmed:
		t.To = StatusCancelled
		t.Release = b.TicketCount
	default:
		return t, ErrInvalidTransition
	}
	b.Status = t.To
	return t, nil
}

// Stats aggregates the organizer view over one event's bookings. Cancelled
// bookings are counted but contribute no tickets or revenue.
func Stats(bookings []Booking) EventStats {
	stats := EventStats{TotalRevenue: decimal.Zero}
	for _, b := range bookings {
		stats.TotalBookings++
		switch b.Status {
		case StatusCancelled:
			continue
		case StatusConfirmed:
			stats.ConfirmedBookings++
		}
		stats.TotalTickets += b.TicketCount
		stats.TotalRevenue = stats.TotalRevenue.Add(b.TotalAmount)
	}
	return stats
}
