package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		apply   func(*Booking) (Transition, error)
		want    BookingStatus
		release int
		err     error
	}{
		{"confirm pending", StatusPending, (*Booking).Confirm, StatusConfirmed, 0, nil},
		{"confirm confirmed", StatusConfirmed, (*Booking).Confirm, StatusConfirmed, 0, nil},
		{"confirm cancelled", StatusCancelled, (*Booking).Confirm, StatusCancelled, 0, ErrInvalidTransition},
		{"cancel pending", StatusPending, (*Booking).Cancel, StatusCancelled, 4, nil},
		{"cancel confirmed", StatusConfirmed, (*Booking).Cancel, StatusCancelled, 4, nil},
		{"cancel cancelled", StatusCancelled, (*Booking).Cancel, StatusCancelled, 0, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.from, TicketCount: 4}
			tr, err := tt.apply(b)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, b.Status)
			assert.Equal(t, tt.release, tr.Release)
			assert.Equal(t, tt.from, tr.From)
		})
	}
}

func TestTransitionChanged(t *testing.T) {
	assert.False(t, Transition{From: StatusConfirmed, To: StatusConfirmed}.Changed())
	assert.True(t, Transition{From: StatusPending, To: StatusConfirmed}.Changed())
}

func TestShortCode(t *testing.T) {
	b := &Booking{ID: "3f2a9c1e-77b4-4d2e-9a51-0c6e2b8f4d10"}
	assert.Equal(t, "3F2A9C1E", b.ShortCode())

	assert.Equal(t, "AB", (&Booking{ID: "ab"}).ShortCode())
}

func TestEventReserveRelease(t *testing.T) {
	e := &Event{ID: "evt-1", TotalTickets: 10, AvailableTickets: 10}

	require.NoError(t, e.Reserve(3))
	assert.Equal(t, 7, e.AvailableTickets)
	assert.Equal(t, 3, e.Reserved())

	assert.ErrorIs(t, e.Reserve(8), ErrSoldOut)
	assert.Equal(t, 7, e.AvailableTickets)

	require.NoError(t, e.Reserve(7))
	assert.True(t, e.IsSoldOut())
	assert.ErrorIs(t, e.Reserve(0), ErrSoldOut)
	assert.Equal(t, 0, e.AvailableTickets)

	require.NoError(t, e.Release(10))
	assert.Equal(t, 10, e.AvailableTickets)
	assert.Error(t, e.Release(1))
	assert.Equal(t, 10, e.AvailableTickets)
}

func TestEventResize(t *testing.T) {
	e := &Event{TotalTickets: 10, AvailableTickets: 4}

	require.NoError(t, e.Resize(8))
	assert.Equal(t, 8, e.TotalTickets)
	assert.Equal(t, 2, e.AvailableTickets)

	err := e.Resize(5)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields["total_tickets"], "6")
	assert.Equal(t, 8, e.TotalTickets)
}

func TestEventIsPast(t *testing.T) {
	now := time.Date(2030, 6, 15, 23, 59, 0, 0, time.UTC)

	assert.False(t, (&Event{Date: time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)}).IsPast(now))
	assert.True(t, (&Event{Date: time.Date(2030, 6, 14, 0, 0, 0, 0, time.UTC)}).IsPast(now))
	assert.False(t, (&Event{Date: time.Date(2030, 6, 16, 0, 0, 0, 0, time.UTC)}).IsPast(now))
}

func TestEventMatches(t *testing.T) {
	e := &Event{Title: "Jazz Night", Description: "Live quartet", Location: "Riverside Hall"}

	assert.True(t, e.Matches(""))
	assert.True(t, e.Matches("jazz"))
	assert.True(t, e.Matches("QUARTET"))
	assert.True(t, e.Matches(" riverside "))
	assert.False(t, e.Matches("rock"))
}

func TestStats(t *testing.T) {
	bookings := []Booking{
		{Status: StatusConfirmed, TicketCount: 2, TotalAmount: decimal.RequireFromString("40.00")},
		{Status: StatusPending, TicketCount: 3, TotalAmount: decimal.RequireFromString("60.00")},
		{Status: StatusCancelled, TicketCount: 5, TotalAmount: decimal.RequireFromString("100.00")},
	}

	stats := Stats(bookings)
	assert.Equal(t, 3, stats.TotalBookings)
	assert.Equal(t, 5, stats.TotalTickets)
	assert.Equal(t, 1, stats.ConfirmedBookings)
	assert.Equal(t, "100", stats.TotalRevenue.String())

	empty := Stats(nil)
	assert.Equal(t, 0, empty.TotalBookings)
	assert.True(t, empty.TotalRevenue.IsZero())
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{
		"":          RoleAttendee,
		"attendee":  RoleAttendee,
		"organizer": RoleOrganizer,
		"admin":     RoleAdmin,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRole("superuser")
	assert.Error(t, err)
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("title", "is required")
	verr.Add("title", "second message is dropped")
	verr.Add("date", "must not be in the past")

	require.Error(t, verr.OrNil())
	assert.Equal(t, "validation failed: date: must not be in the past; title: is required", verr.Error())
}

func TestMoneyMarshalsAsNumber(t *testing.T) {
	raw, err := json.Marshal(Booking{TotalAmount: decimal.RequireFromString("60.50")})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_amount":60.5`)
}

func TestSessionCanAccess(t *testing.T) {
	b := &Booking{ID: "bk-1", UserID: "u1"}

	assert.True(t, Session{UserID: "u1", Role: RoleAttendee}.CanAccess(b))
	assert.False(t, Session{UserID: "u2", Role: RoleAttendee}.CanAccess(b))
	assert.False(t, Session{UserID: "org-1", Role: RoleOrganizer}.CanAccess(b))
	assert.True(t, Session{UserID: "admin-1", Role: RoleAdmin}.CanAccess(b))
}
