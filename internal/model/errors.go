package model

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned when a requested event or booking does not exist.
var ErrNotFound = errors.New("not found")

// ErrSoldOut is returned when a booking asks for more tickets than remain.
var ErrSoldOut = errors.New("not enough tickets available")

// ErrInvalidTransition is returned when a booking is already in a state the
// requested transition cannot leave.
var ErrInvalidTransition = errors.New("booking status does not allow this transition")

// ErrInvalidState is returned when an operation needs a booking in a
// different state, e.g. a ticket for a booking that is not confirmed.
var ErrInvalidState = errors.New("booking is not in a valid state for this operation")

// ErrEventHasBookings is returned when deleting an event that still holds
// pending or confirmed bookings.
var ErrEventHasBookings = errors.New("event has active bookings")

// ValidationError carries user-correctable problems keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a problem for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
