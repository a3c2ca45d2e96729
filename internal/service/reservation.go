package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ludobar/gamekeeper/api/internal/clock"
	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
)

// ReservationRepository defines the interface for reservation storage
type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Reservation, error)
	ListAll(ctx context.Context) ([]*model.Reservation, error)
	UpdateNote(ctx context.Context, id, noteUser string) error
	UpdateNoteInternal(ctx context.Context, id, noteInternal string) error
	InsertItems(ctx context.Context, items []*model.ReservationItem) error
	GetItem(ctx context.Context, itemID string) (*model.ReservationItem, error)
	GetItemForUpdate(ctx context.Context, itemID string) (*model.ReservationItem, error)
	SetItemState(ctx context.Context, itemID string, state model.ItemState) error
	SetItemExpiry(ctx context.Context, itemID string, expiresOn time.Time) error
	ListItemsByReservationIDs(ctx context.Context, reservationIDs []string) (map[string][]model.ReservationItem, error)
	AppendEvent(ctx context.Context, event *model.ReservationItemEvent) error
	ListItemEvents(ctx context.Context, itemID string) ([]*model.ReservationItemEvent, error)
	ActiveItemCount(ctx context.Context, boardGameID string) (int, error)
	ActiveItemCountByUser(ctx context.Context, userID string) (int, error)
	ListDueExpiry(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// ReservationGameRepository defines the game lookups reservations need
type ReservationGameRepository interface {
	GetForUpdate(ctx context.Context, id string) (*model.BoardGame, error)
}

// ReservationUserRepository defines the user lookups reservations need
type ReservationUserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// TxRunner runs a function inside a single database transaction
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReservationService handles reservations and the per-item lifecycle.
//
// Every item transition locks the item row, moves the state and appends
// exactly one audit event inside the same transaction, so the event log
// always matches the state column.
type ReservationService struct {
	repo     ReservationRepository
	gameRepo ReservationGameRepository
	userRepo ReservationUserRepository
	tx       TxRunner
	clock    clock.Clock
	tracer   trace.Tracer
}

// ReservationServiceConfig holds configuration for the reservation service
type ReservationServiceConfig struct {
	ReservationRepo ReservationRepository
	GameRepo        ReservationGameRepository
	UserRepo        ReservationUserRepository
	Tx              TxRunner
	Clock           clock.Clock
}

// NewReservationService creates a new reservation service
func NewReservationService(cfg ReservationServiceConfig) *ReservationService {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &ReservationService{
		repo:     cfg.ReservationRepo,
		gameRepo: cfg.GameRepo,
		userRepo: cfg.UserRepo,
		tx:       cfg.Tx,
		clock:    clk,
		tracer:   otel.Tracer("gamekeeper/reservation"),
	}
}

// GetUserReservations retrieves the caller's reservations, newest first
func (s *ReservationService) GetUserReservations(ctx context.Context, access model.Access) ([]*model.Reservation, error) {
	if !access.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	reservations, err := s.repo.ListByUser(ctx, access.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	if err := s.attachItems(ctx, reservations); err != nil {
		return nil, err
	}
	if !access.CanManageBoardGames() {
		for _, res := range reservations {
			res.NoteInternal = nil
		}
	}
	return reservations, nil
}

// GetAllReservations retrieves every reservation for managers
func (s *ReservationService) GetAllReservations(ctx context.Context, access model.Access) ([]*model.Reservation, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}

	reservations, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	if err := s.attachItems(ctx, reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// GetReservationsForUser retrieves one member's reservations for managers
func (s *ReservationService) GetReservationsForUser(ctx context.Context, access model.Access, userID string) ([]*model.Reservation, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	reservations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	if err := s.attachItems(ctx, reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// GetReservation retrieves one reservation for its owner or a manager
func (s *ReservationService) GetReservation(ctx context.Context, access model.Access, id string) (*model.Reservation, error) {
	if !access.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	manager := access.CanManageBoardGames()
	if !manager && !access.SameUser(res.MadeByID) {
		return nil, ErrReservationAccessDenied
	}

	if err := s.attachItems(ctx, []*model.Reservation{res}); err != nil {
		return nil, err
	}
	if !manager {
		res.NoteInternal = nil
	}
	return res, nil
}

// CreateReservation reserves game copies for the caller
func (s *ReservationService) CreateReservation(ctx context.Context, access model.Access, req *model.CreateReservationRequest) (*model.Reservation, error) {
	if !access.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	return s.create(ctx, access.UserID, access.UserID, req, access.CanManageBoardGames())
}

// CreateReservationFor reserves game copies on a member's behalf. The
// reservation belongs to the member; the audit events name the manager.
func (s *ReservationService) CreateReservationFor(ctx context.Context, access model.Access, userID string, req *model.CreateReservationRequest) (*model.Reservation, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.create(ctx, userID, access.UserID, req, true)
}

func (s *ReservationService) create(ctx context.Context, ownerID, actorID string, req *model.CreateReservationRequest, allowHidden bool) (*model.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.create",
		trace.WithAttributes(
			attribute.String("reservation.owner", ownerID),
			attribute.Int("reservation.items", len(req.Items)),
		),
	)
	defer span.End()

	now := s.clock.Now()
	res := &model.Reservation{
		ID:       uuid.NewString(),
		MadeByID: ownerID,
		MadeOn:   now,
		NoteUser: req.NoteUser,
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		items, err := s.buildItems(ctx, res.ID, ownerID, req.Items, now, allowHidden)
		if err != nil {
			return err
		}
		if err := s.repo.Create(ctx, res); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		if err := s.repo.InsertItems(ctx, items); err != nil {
			return fmt.Errorf("failed to insert reservation items: %w", err)
		}
		if err := s.appendCreatedEvents(ctx, items, actorID, now); err != nil {
			return err
		}
		for _, item := range items {
			res.Items = append(res.Items, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("reservation.id", res.ID))
	return res, nil
}

// AddReservationItems appends copies to an existing reservation
func (s *ReservationService) AddReservationItems(ctx context.Context, access model.Access, reservationID string, req *model.AddReservationItemsRequest) (*model.Reservation, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	ctx, span := s.tracer.Start(ctx, "reservation.add_items",
		trace.WithAttributes(
			attribute.String("reservation.id", reservationID),
			attribute.Int("reservation.items", len(req.Items)),
		),
	)
	defer span.End()

	var res *model.Reservation
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.repo.GetByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to get reservation: %w", err)
		}

		existing, err := s.repo.ListItemsByReservationIDs(ctx, []string{reservationID})
		if err != nil {
			return fmt.Errorf("failed to list reservation items: %w", err)
		}
		current := existing[reservationID]
		if len(current)+len(req.Items) > model.MaxItemsPerReservation {
			return model.NewLimitExceededError("reservation items", model.MaxItemsPerReservation, len(current))
		}

		now := s.clock.Now()
		items, err := s.buildItems(ctx, reservationID, res.MadeByID, req.Items, now, true)
		if err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, items); err != nil {
			return fmt.Errorf("failed to insert reservation items: %w", err)
		}
		if err := s.appendCreatedEvents(ctx, items, access.UserID, now); err != nil {
			return err
		}

		res.Items = current
		for _, item := range items {
			res.Items = append(res.Items, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetReservationItems retrieves a reservation's items for managers
func (s *ReservationService) GetReservationItems(ctx context.Context, access model.Access, reservationID string) ([]model.ReservationItem, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}

	if _, err := s.repo.GetByID(ctx, reservationID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	itemsByRes, err := s.repo.ListItemsByReservationIDs(ctx, []string{reservationID})
	if err != nil {
		return nil, fmt.Errorf("failed to list reservation items: %w", err)
	}
	return itemsByRes[reservationID], nil
}

// GetReservationItemEvents retrieves an item's audit trail, oldest first
func (s *ReservationService) GetReservationItemEvents(ctx context.Context, access model.Access, itemID string) ([]*model.ReservationItemEvent, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}

	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get reservation item: %w", err)
	}

	events, err := s.repo.ListItemEvents(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item events: %w", err)
	}
	return events, nil
}

// HandOverItem marks a reserved copy as picked up by the member
func (s *ReservationService) HandOverItem(ctx context.Context, access model.Access, itemID string, req *model.TransitionItemRequest) (*model.ReservationItem, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	return s.transition(ctx, access.UserID, itemID, "reservation.item.handover",
		model.ItemStateReserved, model.ItemStateCurrent, model.ItemEventHandedOver, req.NoteInternal)
}

// ReturnItem marks a handed-over copy as back on the shelf
func (s *ReservationService) ReturnItem(ctx context.Context, access model.Access, itemID string, req *model.TransitionItemRequest) (*model.ReservationItem, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	return s.transition(ctx, access.UserID, itemID, "reservation.item.return",
		model.ItemStateCurrent, model.ItemStateDone, model.ItemEventReturned, req.NoteInternal)
}

// CancelItem cancels a reserved copy. The reservation owner and board game
// managers may cancel; nobody else.
func (s *ReservationService) CancelItem(ctx context.Context, access model.Access, itemID string, req *model.TransitionItemRequest) (*model.ReservationItem, error) {
	if !access.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	note := req.NoteInternal
	if !access.CanManageBoardGames() {
		// Ownership never changes, so checking outside the lock is safe
		item, err := s.repo.GetItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, fmt.Errorf("failed to get reservation item: %w", err)
		}
		res, err := s.repo.GetByID(ctx, item.ReservationID)
		if err != nil {
			return nil, fmt.Errorf("failed to get reservation: %w", err)
		}
		if !access.SameUser(res.MadeByID) {
			return nil, ErrReservationAccessDenied
		}
		// Internal notes are written by managers only
		note = nil
	}

	return s.transition(ctx, access.UserID, itemID, "reservation.item.cancel",
		model.ItemStateReserved, model.ItemStateCancelled, model.ItemEventCancelled, note)
}

// ExtendItem moves a reserved copy's expiry forward
func (s *ReservationService) ExtendItem(ctx context.Context, access model.Access, itemID string, req *model.ExtendItemRequest) (*model.ReservationItem, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}
	newExpiresOn, err := time.Parse(time.RFC3339, req.NewExpiresOn)
	if err != nil {
		return nil, model.NewBadRequestError("new_expires_on must be an RFC3339 datetime")
	}
	newExpiresOn = newExpiresOn.UTC()

	ctx, span := s.tracer.Start(ctx, "reservation.item.extend",
		trace.WithAttributes(attribute.String("item.id", itemID)),
	)
	defer span.End()

	var item *model.ReservationItem
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.repo.GetItemForUpdate(ctx, itemID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to lock reservation item: %w", err)
		}
		if item.State != model.ItemStateReserved {
			return ErrInvalidItemTransition
		}
		if !newExpiresOn.After(item.ExpiresOn) {
			return ErrExpiryNotForward
		}
		if newExpiresOn.After(item.ExpiresOn.AddDate(0, 0, model.MaxExtensionDaysPerRequest)) {
			return ErrExpiryTooFar
		}

		if err := s.repo.SetItemExpiry(ctx, itemID, newExpiresOn); err != nil {
			return fmt.Errorf("failed to set item expiry: %w", err)
		}
		item.ExpiresOn = newExpiresOn

		actor := access.UserID
		expiry := newExpiresOn
		return s.appendEvent(ctx, &model.ReservationItemEvent{
			ReservationItemID: itemID,
			MadeOn:            s.clock.Now(),
			MadeByID:          &actor,
			Type:              model.ItemEventExtended,
			NewState:          model.ItemStateReserved,
			NewExpiresOn:      &expiry,
			NoteInternal:      req.NoteInternal,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateNote replaces the member's note on a reservation. Only the owner
// may write it; managers use the internal note instead.
func (s *ReservationService) UpdateNote(ctx context.Context, access model.Access, id string, req *model.UpdateReservationNoteRequest) (*model.Reservation, error) {
	if !access.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if !access.SameUser(res.MadeByID) {
		return nil, ErrReservationAccessDenied
	}

	if err := s.repo.UpdateNote(ctx, id, req.NoteUser); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	res.NoteUser = &req.NoteUser

	if err := s.attachItems(ctx, []*model.Reservation{res}); err != nil {
		return nil, err
	}
	if !access.CanManageBoardGames() {
		res.NoteInternal = nil
	}
	return res, nil
}

// UpdateNoteInternal replaces the manager-only note on a reservation
func (s *ReservationService) UpdateNoteInternal(ctx context.Context, access model.Access, id string, req *model.UpdateReservationNoteInternalRequest) (*model.Reservation, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	if err := s.repo.UpdateNoteInternal(ctx, id, req.NoteInternal); err != nil {
		return nil, fmt.Errorf("failed to update internal note: %w", err)
	}
	res.NoteInternal = &req.NoteInternal

	if err := s.attachItems(ctx, []*model.Reservation{res}); err != nil {
		return nil, err
	}
	return res, nil
}

// ExpireOverdueItems transitions reserved items whose pickup window has
// passed. Each item moves in its own transaction, and the appended event
// carries no author: a null made-by marks an automatic transition.
func (s *ReservationService) ExpireOverdueItems(ctx context.Context, limit int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.item.expire",
		trace.WithAttributes(attribute.Int("batch.limit", limit)),
	)
	defer span.End()

	now := s.clock.Now()
	ids, err := s.repo.ListDueExpiry(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list due items: %w", err)
	}

	expired := 0
	for _, itemID := range ids {
		var moved bool
		err := s.tx.WithTx(ctx, func(ctx context.Context) error {
			item, err := s.repo.GetItemForUpdate(ctx, itemID)
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("failed to lock reservation item: %w", err)
			}
			// A handover, cancel or extension may have won the race
			// since the listing
			if item.State != model.ItemStateReserved || item.ExpiresOn.After(now) {
				return nil
			}
			if err := s.repo.SetItemState(ctx, itemID, model.ItemStateExpired); err != nil {
				return fmt.Errorf("failed to set item state: %w", err)
			}
			moved = true
			return s.appendEvent(ctx, &model.ReservationItemEvent{
				ReservationItemID: itemID,
				MadeOn:            now,
				Type:              model.ItemEventExpired,
				NewState:          model.ItemStateExpired,
			})
		})
		if err != nil {
			return expired, err
		}
		if moved {
			expired++
		}
	}

	span.SetAttributes(attribute.Int("items.expired", expired))
	return expired, nil
}

// transition locks the item, verifies the current state and applies the
// move together with its audit event
func (s *ReservationService) transition(ctx context.Context, actorID, itemID, spanName string, from, to model.ItemState, eventType model.ItemEventType, note *string) (*model.ReservationItem, error) {
	ctx, span := s.tracer.Start(ctx, spanName,
		trace.WithAttributes(attribute.String("item.id", itemID)),
	)
	defer span.End()

	var item *model.ReservationItem
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.repo.GetItemForUpdate(ctx, itemID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to lock reservation item: %w", err)
		}
		if item.State != from {
			return ErrInvalidItemTransition
		}
		if err := s.repo.SetItemState(ctx, itemID, to); err != nil {
			return fmt.Errorf("failed to set item state: %w", err)
		}
		item.State = to

		actor := actorID
		return s.appendEvent(ctx, &model.ReservationItemEvent{
			ReservationItemID: itemID,
			MadeOn:            s.clock.Now(),
			MadeByID:          &actor,
			Type:              eventType,
			NewState:          to,
			NoteInternal:      note,
		})
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("item.state", string(to)))
	return item, nil
}

// buildItems locks each requested game, verifies free copies and builds
// the item rows. Must run inside the caller's transaction.
func (s *ReservationService) buildItems(ctx context.Context, reservationID, ownerID string, requests []model.ReservationItemRequest, now time.Time, allowHidden bool) ([]*model.ReservationItem, error) {
	active, err := s.repo.ActiveItemCountByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active items: %w", err)
	}
	if active+len(requests) > model.MaxActiveItemsPerUser {
		return nil, ErrTooManyActiveItems
	}

	wanted := make(map[string]int)
	for _, r := range requests {
		wanted[r.BoardGameID]++
	}
	gameIDs := make([]string, 0, len(wanted))
	for id := range wanted {
		gameIDs = append(gameIDs, id)
	}
	// Lock games in a stable order so two overlapping reservations
	// cannot deadlock on each other
	sort.Strings(gameIDs)

	games := make(map[string]*model.BoardGame, len(gameIDs))
	for _, id := range gameIDs {
		game, err := s.gameRepo.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrGameNotFound
			}
			return nil, fmt.Errorf("failed to lock board game: %w", err)
		}
		// Hidden games do not exist for regular members
		if !game.Visible && !allowHidden {
			return nil, ErrGameNotFound
		}
		taken, err := s.repo.ActiveItemCount(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count active items: %w", err)
		}
		if game.InStock-game.Unavailable-taken < wanted[id] {
			return nil, ErrGameUnavailable
		}
		games[id] = game
	}

	items := make([]*model.ReservationItem, 0, len(requests))
	for _, r := range requests {
		game := games[r.BoardGameID]
		expiresOn := now.AddDate(0, 0, game.DefaultReservationDays)
		if r.ExpiresOn != nil {
			parsed, err := time.Parse(time.RFC3339, *r.ExpiresOn)
			if err != nil {
				return nil, model.NewBadRequestError("expires_on must be an RFC3339 datetime")
			}
			if !parsed.After(now) {
				return nil, model.NewBadRequestError("expires_on must be in the future")
			}
			expiresOn = parsed.UTC()
		}
		items = append(items, &model.ReservationItem{
			ID:            uuid.NewString(),
			ReservationID: reservationID,
			BoardGameID:   r.BoardGameID,
			ExpiresOn:     expiresOn,
			State:         model.ItemStateReserved,
			BoardGameName: game.Name,
		})
	}
	return items, nil
}

func (s *ReservationService) appendCreatedEvents(ctx context.Context, items []*model.ReservationItem, actorID string, madeOn time.Time) error {
	for _, item := range items {
		actor := actorID
		expiry := item.ExpiresOn
		event := &model.ReservationItemEvent{
			ReservationItemID: item.ID,
			MadeOn:            madeOn,
			MadeByID:          &actor,
			Type:              model.ItemEventCreated,
			NewState:          model.ItemStateReserved,
			NewExpiresOn:      &expiry,
		}
		if err := s.appendEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReservationService) appendEvent(ctx context.Context, event *model.ReservationItemEvent) error {
	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to append item event: %w", err)
	}
	return nil
}

func (s *ReservationService) attachItems(ctx context.Context, reservations []*model.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	ids := make([]string, 0, len(reservations))
	for _, res := range reservations {
		ids = append(ids, res.ID)
	}
	itemsByRes, err := s.repo.ListItemsByReservationIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to list reservation items: %w", err)
	}
	for _, res := range reservations {
		res.Items = itemsByRes[res.ID]
	}
	return nil
}
