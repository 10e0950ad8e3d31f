package model

import "github.com/shopspring/decimal"

// EventRequest is the payload for creating or updating an event.
type EventRequest struct {
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description" validate:"min=20"`
	Location     string          `json:"location" validate:"required"`
	Date         string          `json:"date" validate:"required"`
	Time         string          `json:"time" validate:"required,clock"`
	ImageURL     string          `json:"image_url" validate:"omitempty,url"`
	TicketPrice  decimal.Decimal `json:"ticket_price"`
	TotalTickets int             `json:"total_tickets" validate:"min=1"`
}

// ListEventsQuery narrows and orders the public event listing.
type ListEventsQuery struct {
	Search string
	SortBy string
}

// Sort orders accepted by ListEventsQuery.SortBy.
const (
	SortByDate  = "date"
	SortByPrice = "price"
	SortByName  = "name"
)

// BookingRequest is the payload for reserving tickets.
type BookingRequest struct {
	EventID     string `json:"event_id"`
	TicketCount int    `json:"ticket_count"`
}

// PaymentRequest carries the simulated card details.
type PaymentRequest struct {
	CardName   string `json:"card_name" validate:"required"`
	CardNumber string `json:"card_number" validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// EventBookings is the organizer view of one event.
type EventBookings struct {
	Event    *Event     `json:"event"`
	Bookings []Booking  `json:"bookings"`
	Stats    EventStats `json:"stats"`
}

// Dashboard is the role-specific landing view.
type Dashboard struct {
	Role     Role      `json:"role"`
	Upcoming []Event   `json:"upcoming,omitempty"`
	Past     []Event   `json:"past,omitempty"`
	Bookings []Booking `json:"bookings,omitempty"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
