package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ludobar/gamekeeper/api/internal/clock"
	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
)

// EventRepository defines the interface for club event storage
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, from, to time.Time) ([]*model.Event, error)
	GetNextAfter(ctx context.Context, now time.Time) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
}

// EventStateLinkRepository detaches planned states when an event goes away
type EventStateLinkRepository interface {
	ClearEventLinks(ctx context.Context, eventID string) error
}

// EventService handles club events. Reads are public; writes belong to
// events managers.
type EventService struct {
	repo       EventRepository
	stateLinks EventStateLinkRepository
	tx         TxRunner
	clock      clock.Clock
}

// EventServiceConfig holds configuration for the event service
type EventServiceConfig struct {
	EventRepo  EventRepository
	StateLinks EventStateLinkRepository
	Tx         TxRunner
	Clock      clock.Clock
}

// NewEventService creates a new event service
func NewEventService(cfg EventServiceConfig) *EventService {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &EventService{
		repo:       cfg.EventRepo,
		stateLinks: cfg.StateLinks,
		tx:         cfg.Tx,
		clock:      clk,
	}
}

// GetEvents retrieves the events overlapping the given range. A zero from
// defaults to now, a zero to defaults to ninety days after from.
func (s *EventService) GetEvents(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	if from.IsZero() {
		from = s.clock.Now()
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 90)
	}
	if !to.After(from) {
		return nil, model.NewBadRequestError("to must be after from")
	}

	events, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetNextEvent retrieves the nearest event that has not finished yet
func (s *EventService) GetNextEvent(ctx context.Context) (*model.Event, error) {
	event, err := s.repo.GetNextAfter(ctx, s.clock.Now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get next event: %w", err)
	}
	return event, nil
}

// GetEvent retrieves one event
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// CreateEvent adds an event to the calendar
func (s *EventService) CreateEvent(ctx context.Context, access model.Access, req *model.CreateEventRequest) (*model.Event, error) {
	if !access.CanManageEvents() {
		return nil, ErrNotAnEventsManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	from, _ := time.Parse(time.RFC3339, req.From)
	to, _ := time.Parse(time.RFC3339, req.To)
	now := s.clock.Now()
	event := &model.Event{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Place:            req.Place,
		PlaceURL:         req.PlaceURL,
		ImageURL:         req.ImageURL,
		ShortDescription: req.ShortDescription,
		FullDescription:  req.FullDescription,
		URL:              req.URL,
		From:             from.UTC(),
		To:               to.UTC(),
		MadeByID:         access.UserID,
		CreatedOn:        now,
		UpdatedOn:        now,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a partial update to an event
func (s *EventService) UpdateEvent(ctx context.Context, access model.Access, id string, req *model.UpdateEventRequest) (*model.Event, error) {
	if !access.CanManageEvents() {
		return nil, ErrNotAnEventsManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Place != nil {
		event.Place = req.Place
	}
	if req.PlaceURL != nil {
		event.PlaceURL = req.PlaceURL
	}
	if req.ImageURL != nil {
		event.ImageURL = req.ImageURL
	}
	if req.ShortDescription != nil {
		event.ShortDescription = req.ShortDescription
	}
	if req.FullDescription != nil {
		event.FullDescription = req.FullDescription
	}
	if req.URL != nil {
		event.URL = req.URL
	}
	if req.From != nil {
		from, _ := time.Parse(time.RFC3339, *req.From)
		event.From = from.UTC()
	}
	if req.To != nil {
		to, _ := time.Parse(time.RFC3339, *req.To)
		event.To = to.UTC()
	}
	if !event.To.After(event.From) {
		return nil, model.NewBadRequestError("to must be after from")
	}
	event.UpdatedOn = s.clock.Now()

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event. Its linked planned states survive with
// the link cleared; the schedule stands on its own.
func (s *EventService) DeleteEvent(ctx context.Context, access model.Access, id string) error {
	if !access.CanManageEvents() {
		return ErrNotAnEventsManager
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.stateLinks.ClearEventLinks(ctx, id); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}
