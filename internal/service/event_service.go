package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// maxTicketPrice is the first price the NUMERIC(12,2) column cannot hold.
var maxTicketPrice = decimal.New(1, 10)

// EventService orchestrates event catalog operations.
type EventService struct {
	events   EventStore
	cache    EventCache
	validate *validator.Validate
	logger   *logrus.Logger
	now      func() time.Time
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, cache EventCache, logger *logrus.Logger, opts ...Option) *EventService {
	o := buildOptions(opts)
	return &EventService{
		events:   events,
		cache:    cache,
		validate: newValidator(),
		logger:   logger,
		now:      o.now,
	}
}

// ListEvents returns events matching q.Search. With the default date sort,
// every upcoming event precedes every past event and each group is ordered
// by ascending date. Price and name sorts are ascending over all matches.
func (s *EventService) ListEvents(ctx context.Context, q model.ListEventsQuery) ([]model.Event, error) {
	sortBy := strings.ToLower(strings.TrimSpace(q.SortBy))
	if sortBy == "" {
		sortBy = model.SortByDate
	}
	switch sortBy {
	case model.SortByDate, model.SortByPrice, model.SortByName:
	default:
		return nil, &model.ValidationError{Fields: map[string]string{
			"sort": "must be one of date, price, name",
		}}
	}

	all, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]model.Event, 0, len(all))
	for i := range all {
		if all[i].Matches(q.Search) {
			events = append(events, all[i])
		}
	}

	switch sortBy {
	case model.SortByPrice:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].TicketPrice.LessThan(events[j].TicketPrice)
		})
	case model.SortByName:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Title) < strings.ToLower(events[j].Title)
		})
	default:
		s.sortUpcomingFirst(events)
	}
	return events, nil
}

func (s *EventService) sortUpcomingFirst(events []model.Event) {
	now := s.now()
	sort.SliceStable(events, func(i, j int) bool {
		pi, pj := events[i].IsPast(now), events[j].IsPast(now)
		if pi != pj {
			return !pi
		}
		return model.Day(events[i].Date).Before(model.Day(events[j].Date))
	})
}

// PartitionEvents splits events into upcoming and past, keeping their order.
func (s *EventService) PartitionEvents(events []model.Event) (upcoming, past []model.Event) {
	now := s.now()
	for _, e := range events {
		if e.IsPast(now) {
			past = append(past, e)
		} else {
			upcoming = append(upcoming, e)
		}
	}
	return upcoming, past
}

// GetEvent returns a single event by ID, consulting the cache first. The
// cache is refilled only when no invalidation of the event raced the store
// read.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, model.ErrNotFound
	}
	log := s.logger.WithContext(ctx).WithField("event_id", id)

	if cached, err := s.cache.Get(ctx, id); err != nil {
		log.WithError(err).Warn("event cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	gen, genErr := s.cache.Generation(ctx, id)
	if genErr != nil {
		log.WithError(genErr).Warn("event cache generation read failed")
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		written, err := s.cache.Set(ctx, event, gen)
		switch {
		case err != nil:
			log.WithError(err).Warn("event cache write failed")
		case !written:
			log.Debug("event cache fill skipped after concurrent invalidation")
		}
	}
	return event, nil
}

// ListByOrganizer returns the events created by one organizer.
func (s *EventService) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	events, err := s.events.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}
	return events, nil
}

// CreateEvent validates the request and stores a new event owned by the
// caller with every ticket available.
func (s *EventService) CreateEvent(ctx context.Context, session model.Session, req model.EventRequest) (*model.Event, error) {
	fields, err := s.eventFields(ctx, req)
	if err != nil {
		return nil, err
	}

	event := fields
	event.OrganizerID = session.UserID
	event.AvailableTickets = event.TotalTickets
	if err := s.events.Create(ctx, &event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"event_id":      event.ID,
		"organizer_id":  event.OrganizerID,
		"total_tickets": event.TotalTickets,
	}).Info("event created")
	return &event, nil
}

// UpdateEvent replaces an event's editable fields. Capacity changes keep the
// number of reserved tickets fixed.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.EventRequest) (*model.Event, error) {
	fields, err := s.eventFields(ctx, req)
	if err != nil {
		return nil, err
	}

	event, err := s.events.Update(ctx, id, func(e *model.Event) error {
		if err := e.Resize(fields.TotalTickets); err != nil {
			return err
		}
		e.Title = fields.Title
		e.Description = fields.Description
		e.Location = fields.Location
		e.Date = fields.Date
		e.Time = fields.Time
		e.ImageURL = fields.ImageURL
		e.TicketPrice = fields.TicketPrice
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.logger.WithContext(ctx).WithField("event_id", id).Info("event updated")
	return event, nil
}

// DeleteEvent removes an event that holds no pending or confirmed bookings.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.WithContext(ctx).WithField("event_id", id).Info("event deleted")
	return nil
}

func (s *EventService) invalidate(ctx context.Context, ids ...string) {
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("event cache invalidation failed")
	}
}

// eventFields validates req and returns the event fields it describes. All
// field problems are reported together.
func (s *EventService) eventFields(ctx context.Context, req model.EventRequest) (model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.ImageURL = strings.TrimSpace(req.ImageURL)

	verr := &model.ValidationError{}
	if err := collect(ctx, s.validate, req, verr); err != nil {
		return model.Event{}, err
	}

	var date time.Time
	if req.Date != "" {
		d, err := time.Parse(model.DateLayout, req.Date)
		switch {
		case err != nil:
			verr.Add("date", "must be a date in YYYY-MM-DD format")
		case d.Before(model.Day(s.now())):
			verr.Add("date", "must not be in the past")
		default:
			date = d
		}
	}
	switch {
	case req.TicketPrice.IsNegative():
		verr.Add("ticket_price", "must not be negative")
	case !req.TicketPrice.Equal(req.TicketPrice.Round(2)):
		verr.Add("ticket_price", "must have at most 2 decimal places")
	case req.TicketPrice.GreaterThanOrEqual(maxTicketPrice):
		verr.Add("ticket_price", "must be less than "+maxTicketPrice.String())
	}
	if err := verr.OrNil(); err != nil {
		return model.Event{}, err
	}

	return model.Event{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Date:         date,
		Time:         req.Time,
		ImageURL:     req.ImageURL,
		TicketPrice:  req.TicketPrice.Round(2),
		TotalTickets: req.TotalTickets,
	}, nil
}
