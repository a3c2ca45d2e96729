package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ludobar/gamekeeper/api/internal/clock"
	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
)

// PlannedStateRepository defines the interface for planned state storage
type PlannedStateRepository interface {
	Create(ctx context.Context, state *model.PlannedState) error
	InsertBatch(ctx context.Context, states []*model.PlannedState) error
	GetByID(ctx context.Context, id string) (*model.PlannedState, error)
	GetForUpdate(ctx context.Context, id string) (*model.PlannedState, error)
	List(ctx context.Context, from, to time.Time) ([]*model.PlannedState, error)
	GetCurrent(ctx context.Context, now time.Time) (*model.PlannedState, error)
	GetNextAfter(ctx context.Context, now time.Time) (*model.PlannedState, error)
	Update(ctx context.Context, state *model.PlannedState) error
	Delete(ctx context.Context, id string) error
	ListDueStart(ctx context.Context, now time.Time) ([]*model.PlannedState, error)
	ListDueEnd(ctx context.Context, now time.Time) ([]*model.PlannedState, error)
	MarkStarted(ctx context.Context, id string, at time.Time) error
	MarkEnded(ctx context.Context, id string, at time.Time) error
	FindPredecessor(ctx context.Context, id string) (*model.PlannedState, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.PlannedState, error)
	ClearEventLinks(ctx context.Context, eventID string) error
	SetEventLinks(ctx context.Context, stateIDs []string, eventID string) error
	DeleteGeneratedAfter(ctx context.Context, repeatingStateID string, after time.Time) error
}

// RepeatingStateRepository defines the interface for weekly template storage
type RepeatingStateRepository interface {
	Create(ctx context.Context, state *model.RepeatingState) error
	GetByID(ctx context.Context, id string) (*model.RepeatingState, error)
	List(ctx context.Context) ([]*model.RepeatingState, error)
	Update(ctx context.Context, state *model.RepeatingState) error
	Delete(ctx context.Context, id string) error
}

// ClubStateEventRepository defines the event lookups state linkage needs
type ClubStateEventRepository interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// ClubStateService handles the club's open and closed schedule.
//
// The transition engine marks states started and ended behind row locks,
// so each start and end action fires at most once no matter how many
// processor instances run. Handlers are invoked after the marking
// transaction commits.
type ClubStateService struct {
	repo          PlannedStateRepository
	repeatingRepo RepeatingStateRepository
	eventRepo     ClubStateEventRepository
	tx            TxRunner
	clock         clock.Clock
	location      *time.Location
	handlers      []TransitionHandler
	tracer        trace.Tracer
}

// ClubStateServiceConfig holds configuration for the club state service
type ClubStateServiceConfig struct {
	StateRepo     PlannedStateRepository
	RepeatingRepo RepeatingStateRepository
	EventRepo     ClubStateEventRepository
	Tx            TxRunner
	Clock         clock.Clock
	Location      *time.Location
	Handlers      []TransitionHandler
}

// NewClubStateService creates a new club state service
func NewClubStateService(cfg ClubStateServiceConfig) *ClubStateService {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ClubStateService{
		repo:          cfg.StateRepo,
		repeatingRepo: cfg.RepeatingRepo,
		eventRepo:     cfg.EventRepo,
		tx:            cfg.Tx,
		clock:         clk,
		location:      loc,
		handlers:      cfg.Handlers,
		tracer:        otel.Tracer("gamekeeper/clubstate"),
	}
}

// GetCurrentState retrieves the state the club is in right now. Absence
// means no explicit state is scheduled; clients treat that as closed.
func (s *ClubStateService) GetCurrentState(ctx context.Context, access model.Access) (*model.PlannedState, error) {
	state, err := s.repo.GetCurrent(ctx, s.clock.Now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoCurrentState
		}
		return nil, fmt.Errorf("failed to get current state: %w", err)
	}
	return s.scrub(access, state), nil
}

// GetNextState retrieves the next scheduled state after now
func (s *ClubStateService) GetNextState(ctx context.Context, access model.Access) (*model.PlannedState, error) {
	state, err := s.repo.GetNextAfter(ctx, s.clock.Now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get next state: %w", err)
	}
	return s.scrub(access, state), nil
}

// GetStates retrieves the schedule overlapping the given range. A zero
// from defaults to now, a zero to defaults to four weeks after from.
func (s *ClubStateService) GetStates(ctx context.Context, access model.Access, from, to time.Time) ([]*model.PlannedState, error) {
	if from.IsZero() {
		from = s.clock.Now()
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 28)
	}
	if !to.After(from) {
		return nil, model.NewBadRequestError("to must be after from")
	}
	if to.Sub(from) > model.MaxPlannedStateRangeDays*24*time.Hour {
		return nil, model.NewBadRequestError("range cannot exceed 120 days")
	}

	states, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	for _, state := range states {
		s.scrub(access, state)
	}
	return states, nil
}

// GetState retrieves one planned state
func (s *ClubStateService) GetState(ctx context.Context, access model.Access, id string) (*model.PlannedState, error) {
	state, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return s.scrub(access, state), nil
}

// CreatePlannedState schedules an open or closed interval
func (s *ClubStateService) CreatePlannedState(ctx context.Context, access model.Access, req *model.CreatePlannedStateRequest) (*model.PlannedState, error) {
	if !access.CanManageStates() {
		return nil, ErrNotAStatesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	start, _ := time.Parse(time.RFC3339, req.Start)
	plannedEnd, _ := time.Parse(time.RFC3339, req.PlannedEnd)

	state := &model.PlannedState{
		ID:                 uuid.NewString(),
		Kind:               model.StateKind(req.Kind),
		Start:              start.UTC(),
		PlannedEnd:         plannedEnd.UTC(),
		MadeByID:           access.UserID,
		NotePublic:         req.NotePublic,
		NoteInternal:       req.NoteInternal,
		NextPlannedStateID: req.NextPlannedStateID,
		AssociatedEventID:  req.AssociatedEventID,
	}

	if state.NextPlannedStateID != nil {
		if err := s.checkSuccessor(ctx, state.ID, *state.NextPlannedStateID); err != nil {
			return nil, err
		}
	}
	if state.AssociatedEventID != nil {
		if err := s.checkEventExists(ctx, *state.AssociatedEventID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, state); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// Raced for the successor's unique slot
			return nil, ErrSuccessorTaken
		}
		return nil, fmt.Errorf("failed to create state: %w", err)
	}
	return state, nil
}

// UpdatePlannedState applies a partial update. The start of a state whose
// start action already fired cannot be moved.
func (s *ClubStateService) UpdatePlannedState(ctx context.Context, access model.Access, id string, req *model.UpdatePlannedStateRequest) (*model.PlannedState, error) {
	if !access.CanManageStates() {
		return nil, ErrNotAStatesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	state, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	if req.Kind != nil {
		state.Kind = model.StateKind(*req.Kind)
	}
	if req.Start != nil {
		start, _ := time.Parse(time.RFC3339, *req.Start)
		start = start.UTC()
		if !start.Equal(state.Start) {
			if state.HasStarted() {
				return nil, ErrStateAlreadyStarted
			}
			state.Start = start
		}
	}
	if req.PlannedEnd != nil {
		plannedEnd, _ := time.Parse(time.RFC3339, *req.PlannedEnd)
		state.PlannedEnd = plannedEnd.UTC()
	}
	if !state.PlannedEnd.After(state.Start) {
		return nil, model.NewBadRequestError("planned_end must be after start")
	}
	if req.NotePublic != nil {
		state.NotePublic = req.NotePublic
	}
	if req.NoteInternal != nil {
		state.NoteInternal = req.NoteInternal
	}
	if req.NextPlannedStateID != nil {
		// Empty string clears the successor link
		if *req.NextPlannedStateID == "" {
			state.NextPlannedStateID = nil
		} else {
			if err := s.checkSuccessor(ctx, state.ID, *req.NextPlannedStateID); err != nil {
				return nil, err
			}
			state.NextPlannedStateID = req.NextPlannedStateID
		}
	}
	if req.AssociatedEventID != nil {
		// Empty string clears the event link
		if *req.AssociatedEventID == "" {
			state.AssociatedEventID = nil
		} else {
			if err := s.checkEventExists(ctx, *req.AssociatedEventID); err != nil {
				return nil, err
			}
			state.AssociatedEventID = req.AssociatedEventID
		}
	}

	if err := s.repo.Update(ctx, state); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrSuccessorTaken
		}
		return nil, fmt.Errorf("failed to update state: %w", err)
	}
	return state, nil
}

// DeletePlannedState removes a state that has not started yet. Started
// states are history and stay.
func (s *ClubStateService) DeletePlannedState(ctx context.Context, access model.Access, id string) error {
	if !access.CanManageStates() {
		return ErrNotAStatesManager
	}

	state, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrStateNotFound
		}
		return fmt.Errorf("failed to get state: %w", err)
	}
	if state.HasStarted() {
		return ErrStateAlreadyStarted
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrStateNotFound
		}
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

// CloseCurrentState ends the running state right now instead of at its
// planned end
func (s *ClubStateService) CloseCurrentState(ctx context.Context, access model.Access) (*model.PlannedState, error) {
	if !access.CanManageStates() {
		return nil, ErrNotAStatesManager
	}

	now := s.clock.Now()
	var closed *model.PlannedState
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetCurrent(ctx, now)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrNoCurrentState
			}
			return fmt.Errorf("failed to get current state: %w", err)
		}

		closed, err = s.repo.GetForUpdate(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("failed to lock state: %w", err)
		}
		if closed.HasEnded() {
			// The transition engine got there first
			return ErrStateAlreadyEnded
		}

		if err := s.repo.MarkEnded(ctx, closed.ID, now); err != nil {
			return fmt.Errorf("failed to mark state ended: %w", err)
		}
		ended := now
		closed.Ended = &ended
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A state closed before its start action fired ends silently
	if closed.HasStarted() {
		s.fireEnded(ctx, closed)
	}
	return closed, nil
}

// ProcessTransitions runs one pass of the transition engine and returns
// how many states started and ended.
//
// Ends run before starts so a linked successor can begin in the same
// pass its predecessor finishes. States whose whole window passed while
// the processor was down are marked ended without firing any action.
func (s *ClubStateService) ProcessTransitions(ctx context.Context) (int, int, error) {
	ctx, span := s.tracer.Start(ctx, "clubstate.process_transitions")
	defer span.End()

	now := s.clock.Now()
	var toStart, toEnd []*model.PlannedState

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		due, err := s.repo.ListDueEnd(ctx, now)
		if err != nil {
			return err
		}
		for _, state := range due {
			if err := s.repo.MarkEnded(ctx, state.ID, now); err != nil {
				return err
			}
			ended := now
			state.Ended = &ended
			if state.HasStarted() {
				toEnd = append(toEnd, state)
			}
		}

		dueStart, err := s.repo.ListDueStart(ctx, now)
		if err != nil {
			return err
		}
		for _, state := range dueStart {
			if err := s.repo.MarkStarted(ctx, state.ID, now); err != nil {
				return err
			}
			startedOn := now
			state.StartedOn = &startedOn
			toStart = append(toStart, state)
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to process transitions: %w", err)
	}

	// Handlers run after commit so a slow webhook never holds the row locks
	for _, state := range toEnd {
		s.fireEnded(ctx, state)
	}
	for _, state := range toStart {
		s.fireStarted(ctx, state)
	}

	span.SetAttributes(
		attribute.Int("states.started", len(toStart)),
		attribute.Int("states.ended", len(toEnd)),
	)
	return len(toStart), len(toEnd), nil
}

// Repeating templates

// GetRepeatingStates retrieves all weekly templates
func (s *ClubStateService) GetRepeatingStates(ctx context.Context, access model.Access) ([]*model.RepeatingState, error) {
	if !access.CanManageStates() {
		return nil, ErrNotAStatesManager
	}

	states, err := s.repeatingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list repeating states: %w", err)
	}
	return states, nil
}

// GetRepeatingState retrieves one weekly template
func (s *ClubStateService) GetRepeatingState(ctx context.Context, access model.Access, id string) (*model.RepeatingState, error) {
	if !access.CanManageStates() {
		return nil, ErrNotAStatesManager
	}

	state, err := s.repeatingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrRepeatingStateNotFound
		}
		return nil, fmt.Errorf("failed to get repeating state: %w", err)
	}
	return state, nil
}

// CreateRepeatingState creates a weekly template and generates its planned
// states up to the horizon
func (s *ClubStateService) CreateRepeatingState(ctx context.Context, access model.Access, req *model.CreateRepeatingStateRequest) (*model.RepeatingState, error) {
	if !access.CanManageStates() {
		return nil, ErrNotAStatesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	effectiveFrom, _ := time.Parse(time.RFC3339, req.EffectiveFrom)
	now := s.clock.Now()
	rs := &model.RepeatingState{
		ID:            uuid.NewString(),
		Kind:          model.StateKind(req.Kind),
		DayOfWeek:     req.DayOfWeek,
		MinutesFrom:   req.MinutesFrom,
		MinutesTo:     req.MinutesTo,
		EffectiveFrom: effectiveFrom.UTC(),
		MadeByID:      access.UserID,
		NotePublic:    req.NotePublic,
		NoteInternal:  req.NoteInternal,
		CreatedOn:     now,
	}
	if req.EffectiveTo != nil {
		effectiveTo, _ := time.Parse(time.RFC3339, *req.EffectiveTo)
		effectiveTo = effectiveTo.UTC()
		if !effectiveTo.After(rs.EffectiveFrom) {
			return nil, model.NewBadRequestError("effective_to must be after effective_from")
		}
		rs.EffectiveTo = &effectiveTo
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repeatingRepo.Create(ctx, rs); err != nil {
			return fmt.Errorf("failed to create repeating state: %w", err)
		}
		return s.generate(ctx, rs, now)
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// UpdateRepeatingState applies a partial update and regenerates the
// template's future planned states. Generated states that already
// started are never touched.
func (s *ClubStateService) UpdateRepeatingState(ctx context.Context, access model.Access, id string, req *model.UpdateRepeatingStateRequest) (*model.RepeatingState, error) {
	if !access.CanManageStates() {
		return nil, ErrNotAStatesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	rs, err := s.repeatingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrRepeatingStateNotFound
		}
		return nil, fmt.Errorf("failed to get repeating state: %w", err)
	}

	if req.Kind != nil {
		rs.Kind = model.StateKind(*req.Kind)
	}
	if req.DayOfWeek != nil {
		rs.DayOfWeek = *req.DayOfWeek
	}
	if req.MinutesFrom != nil {
		rs.MinutesFrom = *req.MinutesFrom
	}
	if req.MinutesTo != nil {
		rs.MinutesTo = *req.MinutesTo
	}
	if rs.MinutesTo <= rs.MinutesFrom {
		return nil, model.NewBadRequestError("minutes_to must be after minutes_from")
	}
	if req.EffectiveTo != nil {
		// Empty string clears the end date
		if *req.EffectiveTo == "" {
			rs.EffectiveTo = nil
		} else {
			effectiveTo, _ := time.Parse(time.RFC3339, *req.EffectiveTo)
			effectiveTo = effectiveTo.UTC()
			if !effectiveTo.After(rs.EffectiveFrom) {
				return nil, model.NewBadRequestError("effective_to must be after effective_from")
			}
			rs.EffectiveTo = &effectiveTo
		}
	}
	if req.NotePublic != nil {
		rs.NotePublic = req.NotePublic
	}
	if req.NoteInternal != nil {
		rs.NoteInternal = req.NoteInternal
	}

	now := s.clock.Now()
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repeatingRepo.Update(ctx, rs); err != nil {
			return fmt.Errorf("failed to update repeating state: %w", err)
		}
		if err := s.repo.DeleteGeneratedAfter(ctx, rs.ID, now); err != nil {
			return err
		}
		return s.generate(ctx, rs, now)
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// DeleteRepeatingState removes a template together with its future
// generated states. Past and started entries keep their history, with
// the template link cleared.
func (s *ClubStateService) DeleteRepeatingState(ctx context.Context, access model.Access, id string) error {
	if !access.CanManageStates() {
		return ErrNotAStatesManager
	}

	if _, err := s.repeatingRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrRepeatingStateNotFound
		}
		return fmt.Errorf("failed to get repeating state: %w", err)
	}

	now := s.clock.Now()
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteGeneratedAfter(ctx, id, now); err != nil {
			return err
		}
		if err := s.repeatingRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete repeating state: %w", err)
		}
		return nil
	})
}

// Event linkage

// GetStatesForEvent retrieves the planned states linked to a club event
func (s *ClubStateService) GetStatesForEvent(ctx context.Context, access model.Access, eventID string) ([]*model.PlannedState, error) {
	if err := s.checkEventExists(ctx, eventID); err != nil {
		return nil, err
	}

	states, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list states for event: %w", err)
	}
	for _, state := range states {
		s.scrub(access, state)
	}
	return states, nil
}

// SetStatesForEvent replaces the set of planned states linked to an event
func (s *ClubStateService) SetStatesForEvent(ctx context.Context, access model.Access, eventID string, req *model.SetEventStatesRequest) ([]*model.PlannedState, error) {
	if !access.CanManageStates() {
		return nil, ErrNotAStatesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	var states []*model.PlannedState
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.checkEventExists(ctx, eventID); err != nil {
			return err
		}
		for _, stateID := range req.StateIDs {
			if _, err := s.repo.GetByID(ctx, stateID); err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return ErrStateNotFound
				}
				return fmt.Errorf("failed to get state: %w", err)
			}
		}
		if err := s.repo.ClearEventLinks(ctx, eventID); err != nil {
			return err
		}
		if err := s.repo.SetEventLinks(ctx, req.StateIDs, eventID); err != nil {
			return err
		}

		var err error
		states, err = s.repo.ListByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list states for event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

// ClearStatesForEvent detaches every planned state from an event
func (s *ClubStateService) ClearStatesForEvent(ctx context.Context, access model.Access, eventID string) error {
	if !access.CanManageStates() {
		return ErrNotAStatesManager
	}
	if err := s.checkEventExists(ctx, eventID); err != nil {
		return err
	}
	return s.repo.ClearEventLinks(ctx, eventID)
}

// checkSuccessor verifies that nextID can become stateID's successor: it
// must exist, belong to no other predecessor, and not close a chain loop.
func (s *ClubStateService) checkSuccessor(ctx context.Context, stateID, nextID string) error {
	if nextID == stateID {
		return ErrStateChainCycle
	}

	if _, err := s.repo.GetByID(ctx, nextID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrStateNotFound
		}
		return fmt.Errorf("failed to get successor state: %w", err)
	}

	pred, err := s.repo.FindPredecessor(ctx, nextID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to find predecessor: %w", err)
	}
	if pred != nil && pred.ID != stateID {
		return ErrSuccessorTaken
	}

	// Walk the chain from the proposed successor; finding stateID again
	// means the link would close a loop. The depth cap also rejects
	// chains too long to trust.
	currentID := nextID
	for depth := 0; depth < model.MaxPlannedStateChainDepth; depth++ {
		current, err := s.repo.GetByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("failed to walk state chain: %w", err)
		}
		if current.NextPlannedStateID == nil {
			return nil
		}
		if *current.NextPlannedStateID == stateID {
			return ErrStateChainCycle
		}
		currentID = *current.NextPlannedStateID
	}
	return ErrStateChainCycle
}

func (s *ClubStateService) checkEventExists(ctx context.Context, eventID string) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}
	return nil
}

// generate inserts the planned states a template implies. Must run inside
// the caller's transaction.
func (s *ClubStateService) generate(ctx context.Context, rs *model.RepeatingState, now time.Time) error {
	states := s.generateStates(rs, now)
	if len(states) == 0 {
		return nil
	}
	if err := s.repo.InsertBatch(ctx, states); err != nil {
		return fmt.Errorf("failed to insert generated states: %w", err)
	}
	return nil
}

// generateStates builds the concrete future schedule of a template, from
// its effective window clipped to the generation horizon. Occurrences are
// built as wall-clock times in the club's timezone, so opening hours stay
// put across DST changes.
func (s *ClubStateService) generateStates(rs *model.RepeatingState, now time.Time) []*model.PlannedState {
	horizon := now.AddDate(0, 0, 7*model.RepeatingGenerationWeeks)

	from := rs.EffectiveFrom
	if from.Before(now) {
		from = now
	}
	local := from.In(s.location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)

	var states []*model.PlannedState
	for !day.After(horizon) {
		if int(day.Weekday()) != rs.DayOfWeek {
			day = day.AddDate(0, 0, 1)
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), rs.MinutesFrom/60, rs.MinutesFrom%60, 0, 0, s.location)
		end := time.Date(day.Year(), day.Month(), day.Day(), rs.MinutesTo/60, rs.MinutesTo%60, 0, 0, s.location)
		if rs.EffectiveTo != nil && start.After(*rs.EffectiveTo) {
			break
		}
		if start.After(now) && !start.Before(rs.EffectiveFrom) {
			templateID := rs.ID
			states = append(states, &model.PlannedState{
				ID:               uuid.NewString(),
				Kind:             rs.Kind,
				Start:            start.UTC(),
				PlannedEnd:       end.UTC(),
				MadeByID:         rs.MadeByID,
				NotePublic:       rs.NotePublic,
				NoteInternal:     rs.NoteInternal,
				RepeatingStateID: &templateID,
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return states
}

func (s *ClubStateService) fireStarted(ctx context.Context, state *model.PlannedState) {
	for _, h := range s.handlers {
		h.StateStarted(ctx, state)
	}
}

func (s *ClubStateService) fireEnded(ctx context.Context, state *model.PlannedState) {
	for _, h := range s.handlers {
		h.StateEnded(ctx, state)
	}
}

// scrub hides the manager-only fields from callers who cannot manage states
func (s *ClubStateService) scrub(access model.Access, state *model.PlannedState) *model.PlannedState {
	if !access.CanManageStates() {
		state.NoteInternal = nil
	}
	return state
}
