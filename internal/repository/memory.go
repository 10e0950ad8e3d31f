package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps events and bookings in process memory. A single mutex
// makes every check-and-update a critical section, which gives the same
// per-event and per-booking atomicity as the row locks in Postgres.
type MemoryStore struct {
	mu       sync.Mutex
	events   map[string]*model.Event
	bookings map[string]*model.Booking
	now      func() time.Time
	last     time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:   make(map[string]*model.Event),
		bookings: make(map[string]*model.Booking),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// tick returns a timestamp strictly after the previous one so that
// creation order survives coarse clocks. Callers must hold s.mu.
func (s *MemoryStore) tick() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

// Events returns the store's event-side view.
func (s *MemoryStore) Events() *MemoryEvents { return (*MemoryEvents)(s) }

// Bookings returns the store's booking-side view.
func (s *MemoryStore) Bookings() *MemoryBookings { return (*MemoryBookings)(s) }

// MemoryEvents implements the event store over a MemoryStore.
type MemoryEvents MemoryStore

func (m *MemoryEvents) Create(_ context.Context, e *model.Event) error {
	s := (*MemoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.New().String()
	e.CreatedAt = s.tick()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (m *MemoryEvents) List(_ context.Context) ([]model.Event, error) {
	s := (*MemoryStore)(m)
	return s.listEvents(func(*model.Event) bool { return true }), nil
}

func (m *MemoryEvents) ListByOrganizer(_ context.Context, organizerID string) ([]model.Event, error) {
	s := (*MemoryStore)(m)
	return s.listEvents(func(e *model.Event) bool { return e.OrganizerID == organizerID }), nil
}

func (m *MemoryEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	s := (*MemoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// Update applies mutate to a copy and only stores it when mutate succeeds.
func (m *MemoryEvents) Update(_ context.Context, id string, mutate func(*model.Event) error) (*model.Event, error) {
	s := (*MemoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *e
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	*e = cp
	return &cp, nil
}

func (m *MemoryEvents) Delete(_ context.Context, id string) error {
	s := (*MemoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return model.ErrNotFound
	}
	for _, b := range s.bookings {
		if b.EventID == id && b.Status != model.StatusCancelled {
			return model.ErrEventHasBookings
		}
	}
	for bid, b := range s.bookings {
		if b.EventID == id {
			delete(s.bookings, bid)
		}
	}
	delete(s.events, id)
	return nil
}

func (s *MemoryStore) listEvents(keep func(*model.Event) bool) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Event
	for _, e := range s.events {
		if keep(e) {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// MemoryBookings implements the booking store over a MemoryStore.
type MemoryBookings MemoryStore

func (m *MemoryBookings) Reserve(_ context.Context, userID, eventID string, ticketCount int) (*model.Booking, error) {
	s := (*MemoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, model.ErrNotFound
	}
	if err := e.Reserve(ticketCount); err != nil {
		return nil, err
	}

	now := s.tick()
	b := &model.Booking{
		ID:          uuid.New().String(),
		EventID:     eventID,
		UserID:      userID,
		TicketCount: ticketCount,
		TotalAmount: e.TicketPrice.Mul(decimal.NewFromInt(int64(ticketCount))),
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.bookings[b.ID] = b
	return s.withEvent(b), nil
}

func (m *MemoryBookings) Transition(
	_ context.Context,
	id string,
	apply func(*model.Booking) (model.Transition, error),
) (*model.Booking, model.Transition, error) {
	s := (*MemoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, model.Transition{}, model.ErrNotFound
	}

	cp := *b
	t, err := apply(&cp)
	if err != nil {
		return nil, t, err
	}
	if t.Release > 0 {
		e, ok := s.events[cp.EventID]
		if !ok {
			return nil, t, model.ErrNotFound
		}
		if err := e.Release(t.Release); err != nil {
			return nil, t, err
		}
	}
	if t.Changed() {
		cp.UpdatedAt = s.tick()
	}
	*b = cp
	return s.withEvent(b), t, nil
}

func (m *MemoryBookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s := (*MemoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return s.withEvent(b), nil
}

func (m *MemoryBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	s := (*MemoryStore)(m)
	return s.listBookings(func(b *model.Booking) bool { return b.UserID == userID }), nil
}

func (m *MemoryBookings) ListByEvent(_ context.Context, eventID string) ([]model.Booking, error) {
	s := (*MemoryStore)(m)
	return s.listBookings(func(b *model.Booking) bool { return b.EventID == eventID }), nil
}

func (s *MemoryStore) listBookings(keep func(*model.Booking) bool) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Booking
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, *s.withEvent(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// withEvent returns a detached copy of b joined with a copy of its event.
// Callers must hold s.mu.
func (s *MemoryStore) withEvent(b *model.Booking) *model.Booking {
	cp := *b
	if e, ok := s.events[b.EventID]; ok {
		ev := *e
		cp.Event = &ev
	}
	return &cp
}
