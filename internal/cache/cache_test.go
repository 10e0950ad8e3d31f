package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() *model.Event {
	return &model.Event{
		ID:               "evt-1",
		OrganizerID:      "org-1",
		Title:            "Jazz Night",
		Description:      "An evening of improvised jazz by the river.",
		Location:         "Riverside Hall",
		Date:             time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		Time:             "19:30",
		TicketPrice:      decimal.RequireFromString("20.5"),
		TotalTickets:     10,
		AvailableTickets: 7,
		CreatedAt:        time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEventCache_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)
	ctx := context.Background()

	e := sampleEvent()
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	mock.ExpectEval(setIfCurrentScript, []string{"event:evt-1", "event:evt-1:gen"},
		string(raw), int64(60000), "0").SetVal(int64(1))
	mock.ExpectGet("event:evt-1").SetVal(string(raw))

	written, err := c.Set(ctx, e, 0)
	require.NoError(t, err)
	assert.True(t, written)

	got, err := c.Get(ctx, "evt-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, 7, got.AvailableTickets)
	assert.True(t, e.TicketPrice.Equal(got.TicketPrice))
	assert.True(t, e.Date.Equal(got.Date))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCache_SetSkippedAfterInvalidation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)
	ctx := context.Background()

	e := sampleEvent()
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	mock.ExpectEval(setIfCurrentScript, []string{"event:evt-1", "event:evt-1:gen"},
		string(raw), int64(60000), "4").SetVal(int64(0))

	written, err := c.Set(ctx, e, 4)
	require.NoError(t, err)
	assert.False(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCache_Generation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)
	ctx := context.Background()

	mock.ExpectGet("event:evt-1:gen").RedisNil()
	mock.ExpectGet("event:evt-1:gen").SetVal("3")
	mock.ExpectGet("event:evt-1:gen").SetErr(errors.New("connection refused"))

	gen, err := c.Generation(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	gen, err = c.Generation(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), gen)

	_, err = c.Generation(ctx, "evt-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)

	mock.ExpectGet("event:missing").RedisNil()

	got, err := c.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)

	mock.ExpectGet("event:evt-1").SetErr(errors.New("connection refused"))

	got, err := c.Get(context.Background(), "evt-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, got)
}

func TestEventCache_GetCorruptPayload(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)

	mock.ExpectGet("event:evt-1").SetVal("{not json")

	_, err := c.Get(context.Background(), "evt-1")
	assert.Error(t, err)
}

func TestEventCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)

	mock.ExpectIncr("event:a:gen").SetVal(1)
	mock.ExpectIncr("event:b:gen").SetVal(5)
	mock.ExpectDel("event:a", "event:b").SetVal(2)

	assert.NoError(t, c.Invalidate(context.Background(), "a", "b"))
	assert.NoError(t, c.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCache_InvalidateStopsOnCounterError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)

	mock.ExpectIncr("event:a:gen").SetErr(errors.New("readonly replica"))

	err := c.Invalidate(context.Background(), "a")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "readonly replica")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var n Nop

	got, err := n.Get(ctx, "evt-1")
	assert.NoError(t, err)
	assert.Nil(t, got)

	written, err := n.Set(ctx, sampleEvent(), 0)
	assert.NoError(t, err)
	assert.False(t, written)
}

func TestEventCache_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewEventCache(db, time.Minute)

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, c.Ping(context.Background()))

	mock.ExpectPing().SetErr(errors.New("down"))
	err := c.Ping(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis health check failed")
}
