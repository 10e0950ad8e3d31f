package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{model.ErrNotFound, OutcomeNotFound},
		{fmt.Errorf("reserve: %w", model.ErrSoldOut), OutcomeSoldOut},
		{model.ErrInvalidTransition, OutcomeInvalidTransition},
		{model.ErrInvalidState, OutcomeInvalidState},
		{&model.ValidationError{Fields: map[string]string{"ticket_count": "must be at least 1"}}, OutcomeInvalid},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestTrack(t *testing.T) {
	before := testutil.ToFloat64(bookingOperations.WithLabelValues("test_track", OutcomeSoldOut))

	Track("test_track", time.Now(), model.ErrSoldOut)
	Track("test_track", time.Now(), model.ErrSoldOut)

	after := testutil.ToFloat64(bookingOperations.WithLabelValues("test_track", OutcomeSoldOut))
	assert.Equal(t, before+2, after)
}

func TestTicketCounters(t *testing.T) {
	reserved := testutil.ToFloat64(ticketsReserved)
	released := testutil.ToFloat64(ticketsReleased)

	TicketsReserved(3)
	TicketsReleased(2)

	assert.Equal(t, reserved+3, testutil.ToFloat64(ticketsReserved))
	assert.Equal(t, released+2, testutil.ToFloat64(ticketsReleased))
}
