package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
)

const (
	reservationSelect = `
	SELECT id, made_by_id, made_on, note_user, note_internal
	FROM reservations`

	itemSelect = `
	SELECT id, reservation_id, board_game_id, expires_on, state
	FROM reservation_items`

	activeItemCountsQuery = `
	SELECT board_game_id, COUNT(*)
	FROM reservation_items
	WHERE board_game_id = ANY($1) AND state IN ('reserved', 'current')
	GROUP BY board_game_id`

	activeItemCountByUserQuery = `
	SELECT COUNT(*)
	FROM reservation_items i
	JOIN reservations r ON r.id = i.reservation_id
	WHERE r.made_by_id = $1 AND i.state IN ('reserved', 'current')`

	dueExpiryQuery = `
	SELECT id FROM reservation_items
	WHERE state = 'reserved' AND expires_on <= $1
	ORDER BY expires_on
	LIMIT $2`
)

// ReservationRepository handles reservations, their items and the item event log
type ReservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.MadeByID, &res.MadeOn, &res.NoteUser, &res.NoteInternal)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func scanItem(row pgx.Row) (*model.ReservationItem, error) {
	var item model.ReservationItem
	err := row.Scan(&item.ID, &item.ReservationID, &item.BoardGameID, &item.ExpiresOn, &item.State)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Reservation CRUD

// Create inserts a new reservation head row
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	sql, args, err := dialect.Insert("reservations").Prepared(true).Rows(goqu.Record{
		"id":            res.ID,
		"made_by_id":    res.MadeByID,
		"made_on":       res.MadeOn,
		"note_user":     res.NoteUser,
		"note_internal": res.NoteInternal,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build reservation insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create reservation: %w", database.MapError(err))
	}
	return nil
}

// GetByID retrieves a reservation head row by ID, without items
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := scanReservation(database.From(ctx, r.pool).QueryRow(ctx, reservationSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", database.MapError(err))
	}
	return res, nil
}

// ListByUser retrieves a member's reservations, newest first
func (r *ReservationRepository) ListByUser(ctx context.Context, userID string) ([]*model.Reservation, error) {
	rows, err := database.From(ctx, r.pool).Query(ctx, reservationSelect+` WHERE made_by_id = $1 ORDER BY made_on DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", database.MapError(err))
	}
	defer rows.Close()

	return collectReservations(rows)
}

// ListAll retrieves every reservation, newest first
func (r *ReservationRepository) ListAll(ctx context.Context) ([]*model.Reservation, error) {
	rows, err := database.From(ctx, r.pool).Query(ctx, reservationSelect+` ORDER BY made_on DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", database.MapError(err))
	}
	defer rows.Close()

	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	var reservations []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reservations: %w", err)
	}
	return reservations, nil
}

// UpdateNote sets the member-visible note
func (r *ReservationRepository) UpdateNote(ctx context.Context, id, noteUser string) error {
	return r.updateNote(ctx, id, "note_user", noteUser)
}

// UpdateNoteInternal sets the manager-only note
func (r *ReservationRepository) UpdateNoteInternal(ctx context.Context, id, noteInternal string) error {
	return r.updateNote(ctx, id, "note_internal", noteInternal)
}

func (r *ReservationRepository) updateNote(ctx context.Context, id, column, value string) error {
	sql, args, err := dialect.Update("reservations").Prepared(true).
		Set(goqu.Record{column: value}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build note update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update reservation note: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Item operations

// InsertItems inserts reservation items in one statement
func (r *ReservationRepository) InsertItems(ctx context.Context, items []*model.ReservationItem) error {
	if len(items) == 0 {
		return nil
	}

	records := make([]any, 0, len(items))
	for _, item := range items {
		records = append(records, goqu.Record{
			"id":             item.ID,
			"reservation_id": item.ReservationID,
			"board_game_id":  item.BoardGameID,
			"expires_on":     item.ExpiresOn,
			"state":          item.State,
		})
	}

	sql, args, err := dialect.Insert("reservation_items").Prepared(true).Rows(records...).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build item insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert reservation items: %w", database.MapError(err))
	}
	return nil
}

// GetItem retrieves a reservation item by ID
func (r *ReservationRepository) GetItem(ctx context.Context, itemID string) (*model.ReservationItem, error) {
	item, err := scanItem(database.From(ctx, r.pool).QueryRow(ctx, itemSelect+` WHERE id = $1`, itemID))
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation item: %w", database.MapError(err))
	}
	return item, nil
}

// GetItemForUpdate loads an item and locks its row until the surrounding
// transaction ends. Every state transition re-reads the item behind this
// lock before deciding whether it is still legal.
func (r *ReservationRepository) GetItemForUpdate(ctx context.Context, itemID string) (*model.ReservationItem, error) {
	item, err := scanItem(database.From(ctx, r.pool).QueryRow(ctx, itemSelect+` WHERE id = $1 FOR UPDATE`, itemID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock reservation item: %w", database.MapError(err))
	}
	return item, nil
}

// SetItemState moves an item to a new state
func (r *ReservationRepository) SetItemState(ctx context.Context, itemID string, state model.ItemState) error {
	sql, args, err := dialect.Update("reservation_items").Prepared(true).
		Set(goqu.Record{"state": state}).
		Where(goqu.Ex{"id": itemID}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build item state update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update item state: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// SetItemExpiry moves an item's expiry forward
func (r *ReservationRepository) SetItemExpiry(ctx context.Context, itemID string, expiresOn time.Time) error {
	sql, args, err := dialect.Update("reservation_items").Prepared(true).
		Set(goqu.Record{"expires_on": expiresOn}).
		Where(goqu.Ex{"id": itemID}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build item expiry update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update item expiry: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ListItemsByReservationIDs retrieves the items of many reservations in one
// query, keyed by reservation ID. Board game names come along via a join so
// listings need no per-item lookup.
func (r *ReservationRepository) ListItemsByReservationIDs(ctx context.Context, reservationIDs []string) (map[string][]model.ReservationItem, error) {
	itemsByReservation := make(map[string][]model.ReservationItem, len(reservationIDs))
	if len(reservationIDs) == 0 {
		return itemsByReservation, nil
	}

	sql, args, err := dialect.From(goqu.T("reservation_items").As("i")).Prepared(true).
		Join(goqu.T("board_games").As("g"), goqu.On(goqu.I("g.id").Eq(goqu.I("i.board_game_id")))).
		Select(
			goqu.I("i.id"), goqu.I("i.reservation_id"), goqu.I("i.board_game_id"),
			goqu.I("i.expires_on"), goqu.I("i.state"), goqu.I("g.name"),
		).
		Where(goqu.I("i.reservation_id").In(reservationIDs)).
		Order(goqu.I("i.reservation_id").Asc(), goqu.I("i.expires_on").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build item listing: %w", err)
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservation items: %w", database.MapError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var item model.ReservationItem
		err := rows.Scan(&item.ID, &item.ReservationID, &item.BoardGameID, &item.ExpiresOn, &item.State, &item.BoardGameName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation item: %w", err)
		}
		itemsByReservation[item.ReservationID] = append(itemsByReservation[item.ReservationID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reservation items: %w", err)
	}
	return itemsByReservation, nil
}

// Event log

// AppendEvent writes one audit row for an item. Rows are append-only.
func (r *ReservationRepository) AppendEvent(ctx context.Context, event *model.ReservationItemEvent) error {
	sql, args, err := dialect.Insert("reservation_item_events").Prepared(true).Rows(goqu.Record{
		"reservation_item_id": event.ReservationItemID,
		"made_on":             event.MadeOn,
		"made_by_id":          event.MadeByID,
		"type":                event.Type,
		"new_state":           event.NewState,
		"new_expires_on":      event.NewExpiresOn,
		"note_internal":       event.NoteInternal,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build event insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to append item event: %w", database.MapError(err))
	}
	return nil
}

// ListItemEvents retrieves an item's audit trail, oldest first
func (r *ReservationRepository) ListItemEvents(ctx context.Context, itemID string) ([]*model.ReservationItemEvent, error) {
	sql, args, err := dialect.From("reservation_item_events").Prepared(true).
		Select("reservation_item_id", "made_on", "made_by_id", "type", "new_state", "new_expires_on", "note_internal").
		Where(goqu.Ex{"reservation_item_id": itemID}).
		Order(goqu.C("made_on").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build event listing: %w", err)
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list item events: %w", database.MapError(err))
	}
	defer rows.Close()

	var events []*model.ReservationItemEvent
	for rows.Next() {
		var ev model.ReservationItemEvent
		err := rows.Scan(&ev.ReservationItemID, &ev.MadeOn, &ev.MadeByID, &ev.Type, &ev.NewState, &ev.NewExpiresOn, &ev.NoteInternal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item event: %w", err)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read item events: %w", err)
	}
	return events, nil
}

// Counters

// ActiveItemCounts returns the number of reserved or handed-over items per
// board game, for every requested game in one query. Games with no active
// items are absent from the map.
func (r *ReservationRepository) ActiveItemCounts(ctx context.Context, boardGameIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(boardGameIDs))
	if len(boardGameIDs) == 0 {
		return counts, nil
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, activeItemCountsQuery, boardGameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count active items: %w", database.MapError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var gameID string
		var count int
		if err := rows.Scan(&gameID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan active item count: %w", err)
		}
		counts[gameID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active item counts: %w", err)
	}
	return counts, nil
}

// ActiveItemCount returns the number of reserved or handed-over items for one board game
func (r *ReservationRepository) ActiveItemCount(ctx context.Context, boardGameID string) (int, error) {
	counts, err := r.ActiveItemCounts(ctx, []string{boardGameID})
	if err != nil {
		return 0, err
	}
	return counts[boardGameID], nil
}

// ActiveItemCountByUser returns how many active items a member holds across
// all their reservations
func (r *ReservationRepository) ActiveItemCountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := database.From(ctx, r.pool).QueryRow(ctx, activeItemCountByUserQuery, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count member's active items: %w", database.MapError(err))
	}
	return count, nil
}

// ListDueExpiry returns the IDs of reserved items whose pickup window has
// passed (expires_on <= now)
func (r *ReservationRepository) ListDueExpiry(ctx context.Context, now time.Time, limit int) ([]string, error) {
	rows, err := database.From(ctx, r.pool).Query(ctx, dueExpiryQuery, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due items: %w", database.MapError(err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan due item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read due items: %w", err)
	}
	return ids, nil
}
