// Package model defines the core domain types for the event booking system.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Monetary values travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the wire and storage format of an event's calendar date.
const DateLayout = "2006-01-02"

// Event represents a bookable event created by an organizer.
type Event struct {
	ID               string          `json:"id"`
	OrganizerID      string          `json:"organizer_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Location         string          `json:"location"`
	Date             time.Time       `json:"date"`
	Time             string          `json:"time"`
	ImageURL         string          `json:"image_url,omitempty"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TotalTickets     int             `json:"total_tickets"`
	AvailableTickets int             `json:"available_tickets"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Reserved returns the number of tickets held by pending or confirmed bookings.
func (e *Event) Reserved() int {
	return e.TotalTickets - e.AvailableTickets
}

// IsSoldOut returns true when no tickets remain.
func (e *Event) IsSoldOut() bool {
	return e.AvailableTickets <= 0
}

// IsPast reports whether the event's date lies before the calendar day of now.
// Time of day is ignored on both sides.
func (e *Event) IsPast(now time.Time) bool {
	return Day(e.Date).Before(Day(now))
}

// Reserve takes n tickets out of the available pool.
func (e *Event) Reserve(n int) error {
	if e.IsSoldOut() || n > e.AvailableTickets {
		return ErrSoldOut
	}
	e.AvailableTickets -= n
	return nil
}

// Release puts n tickets back into the available pool.
func (e *Event) Release(n int) error {
	if e.AvailableTickets+n > e.TotalTickets {
		return fmt.Errorf("release %d tickets on event %s: available would exceed total %d", n, e.ID, e.TotalTickets)
	}
	e.AvailableTickets += n
	return nil
}

// Resize changes the capacity while keeping the reserved count fixed.
func (e *Event) Resize(total int) error {
	reserved := e.Reserved()
	if total < reserved {
		return &ValidationError{Fields: map[string]string{
			"total_tickets": fmt.Sprintf("must be at least %d, the number of tickets already reserved", reserved),
		}}
	}
	e.TotalTickets = total
	e.AvailableTickets = total - reserved
	return nil
}

// Matches reports whether the search term occurs in the title, description or
// location, ignoring case. An empty term matches every event.
func (e *Event) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), term) ||
		strings.Contains(strings.ToLower(e.Description), term) ||
		strings.Contains(strings.ToLower(e.Location), term)
}

// Day truncates t to midnight of its own calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EventStats summarises the bookings of a single event for its organizer.
type EventStats struct {
	TotalBookings     int             `json:"total_bookings"`
	TotalTickets      int             `json:"total_tickets"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	ConfirmedBookings int             `json:"confirmed_bookings"`
}
