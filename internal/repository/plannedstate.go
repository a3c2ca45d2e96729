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
	plannedStateSelect = `
	SELECT id, kind, start_on, planned_end, ended, started_on, made_by_id,
	       note_public, note_internal, next_planned_state_id,
	       repeating_state_id, associated_event_id
	FROM planned_states`

	// dueStartQuery locks pending states whose window has opened. States
	// whose whole window already passed are left for the end pass.
	dueStartQuery = plannedStateSelect + `
	WHERE started_on IS NULL AND ended IS NULL
	  AND start_on <= $1 AND planned_end > $1
	ORDER BY start_on
	FOR UPDATE`

	// dueEndQuery locks running or overdue states whose planned end has
	// passed, including states that never got a start action.
	dueEndQuery = plannedStateSelect + `
	WHERE ended IS NULL AND planned_end <= $1
	ORDER BY planned_end
	FOR UPDATE`
)

// plannedStateCols is the select list every planned state scan expects, in order
var plannedStateCols = []any{
	"id", "kind", "start_on", "planned_end", "ended", "started_on", "made_by_id",
	"note_public", "note_internal", "next_planned_state_id",
	"repeating_state_id", "associated_event_id",
}

// PlannedStateRepository handles the club's concrete schedule entries
type PlannedStateRepository struct {
	pool *pgxpool.Pool
}

// NewPlannedStateRepository creates a new planned state repository
func NewPlannedStateRepository(pool *pgxpool.Pool) *PlannedStateRepository {
	return &PlannedStateRepository{pool: pool}
}

func scanPlannedState(row pgx.Row) (*model.PlannedState, error) {
	var s model.PlannedState
	err := row.Scan(
		&s.ID, &s.Kind, &s.Start, &s.PlannedEnd, &s.Ended, &s.StartedOn, &s.MadeByID,
		&s.NotePublic, &s.NoteInternal, &s.NextPlannedStateID,
		&s.RepeatingStateID, &s.AssociatedEventID,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func plannedStateRecord(s *model.PlannedState) goqu.Record {
	return goqu.Record{
		"id":                    s.ID,
		"kind":                  s.Kind,
		"start_on":              s.Start,
		"planned_end":           s.PlannedEnd,
		"ended":                 s.Ended,
		"started_on":            s.StartedOn,
		"made_by_id":            s.MadeByID,
		"note_public":           s.NotePublic,
		"note_internal":         s.NoteInternal,
		"next_planned_state_id": s.NextPlannedStateID,
		"repeating_state_id":    s.RepeatingStateID,
		"associated_event_id":   s.AssociatedEventID,
	}
}

// Create inserts a new planned state
func (r *PlannedStateRepository) Create(ctx context.Context, state *model.PlannedState) error {
	sql, args, err := dialect.Insert("planned_states").Prepared(true).
		Rows(plannedStateRecord(state)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build planned state insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create planned state: %w", database.MapError(err))
	}
	return nil
}

// InsertBatch inserts many planned states in one statement. Used by the
// repeating template generator.
func (r *PlannedStateRepository) InsertBatch(ctx context.Context, states []*model.PlannedState) error {
	if len(states) == 0 {
		return nil
	}

	records := make([]any, 0, len(states))
	for _, s := range states {
		records = append(records, plannedStateRecord(s))
	}

	sql, args, err := dialect.Insert("planned_states").Prepared(true).Rows(records...).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build planned state batch insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert planned states: %w", database.MapError(err))
	}
	return nil
}

// GetByID retrieves a planned state by ID
func (r *PlannedStateRepository) GetByID(ctx context.Context, id string) (*model.PlannedState, error) {
	sql, args, err := dialect.From("planned_states").Prepared(true).
		Select(plannedStateCols...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build planned state query: %w", err)
	}

	state, err := scanPlannedState(database.From(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get planned state: %w", database.MapError(err))
	}
	return state, nil
}

// GetForUpdate loads a planned state and locks its row until the
// surrounding transaction ends
func (r *PlannedStateRepository) GetForUpdate(ctx context.Context, id string) (*model.PlannedState, error) {
	state, err := scanPlannedState(database.From(ctx, r.pool).QueryRow(ctx, plannedStateSelect+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock planned state: %w", database.MapError(err))
	}
	return state, nil
}

// List retrieves planned states overlapping [from, to), ordered by start
func (r *PlannedStateRepository) List(ctx context.Context, from, to time.Time) ([]*model.PlannedState, error) {
	sql, args, err := dialect.From("planned_states").Prepared(true).
		Select(plannedStateCols...).
		Where(
			goqu.C("start_on").Lt(to),
			goqu.C("planned_end").Gt(from),
		).
		Order(goqu.C("start_on").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build planned state listing: %w", err)
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list planned states: %w", database.MapError(err))
	}
	defer rows.Close()

	return collectPlannedStates(rows)
}

// GetCurrent retrieves the state the club is in right now: the latest
// started, not yet ended entry. Returns ErrNotFound when nothing is running.
func (r *PlannedStateRepository) GetCurrent(ctx context.Context, now time.Time) (*model.PlannedState, error) {
	query := plannedStateSelect + `
	WHERE start_on <= $1 AND ended IS NULL
	ORDER BY start_on DESC
	LIMIT 1`

	state, err := scanPlannedState(database.From(ctx, r.pool).QueryRow(ctx, query, now))
	if err != nil {
		return nil, fmt.Errorf("failed to get current state: %w", database.MapError(err))
	}
	return state, nil
}

// GetNextAfter retrieves the next scheduled state strictly after now.
// Returns ErrNotFound when the schedule is empty.
func (r *PlannedStateRepository) GetNextAfter(ctx context.Context, now time.Time) (*model.PlannedState, error) {
	query := plannedStateSelect + `
	WHERE start_on > $1 AND ended IS NULL
	ORDER BY start_on
	LIMIT 1`

	state, err := scanPlannedState(database.From(ctx, r.pool).QueryRow(ctx, query, now))
	if err != nil {
		return nil, fmt.Errorf("failed to get next state: %w", database.MapError(err))
	}
	return state, nil
}

// Update persists every mutable column of a planned state
func (r *PlannedStateRepository) Update(ctx context.Context, state *model.PlannedState) error {
	record := plannedStateRecord(state)
	delete(record, "id")

	sql, args, err := dialect.Update("planned_states").Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": state.ID}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build planned state update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update planned state: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a planned state
func (r *PlannedStateRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := dialect.Delete("planned_states").Prepared(true).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build planned state delete: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete planned state: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Transition engine

// ListDueStart locks and returns pending states whose window has opened
func (r *PlannedStateRepository) ListDueStart(ctx context.Context, now time.Time) ([]*model.PlannedState, error) {
	rows, err := database.From(ctx, r.pool).Query(ctx, dueStartQuery, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due starts: %w", database.MapError(err))
	}
	defer rows.Close()

	return collectPlannedStates(rows)
}

// ListDueEnd locks and returns states whose planned end has passed
func (r *PlannedStateRepository) ListDueEnd(ctx context.Context, now time.Time) ([]*model.PlannedState, error) {
	rows, err := database.From(ctx, r.pool).Query(ctx, dueEndQuery, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due ends: %w", database.MapError(err))
	}
	defer rows.Close()

	return collectPlannedStates(rows)
}

// MarkStarted records that the start action fired. The started_on guard
// makes the marker first-writer-wins.
func (r *PlannedStateRepository) MarkStarted(ctx context.Context, id string, at time.Time) error {
	tag, err := database.From(ctx, r.pool).Exec(ctx,
		`UPDATE planned_states SET started_on = $2 WHERE id = $1 AND started_on IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark state started: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// MarkEnded records that the state is over. The ended guard makes the
// marker first-writer-wins.
func (r *PlannedStateRepository) MarkEnded(ctx context.Context, id string, at time.Time) error {
	tag, err := database.From(ctx, r.pool).Exec(ctx,
		`UPDATE planned_states SET ended = $2 WHERE id = $1 AND ended IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark state ended: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Links

// FindPredecessor retrieves the state that names id as its successor.
// A unique index guarantees at most one such state exists; ErrNotFound
// means the state has no predecessor.
func (r *PlannedStateRepository) FindPredecessor(ctx context.Context, id string) (*model.PlannedState, error) {
	state, err := scanPlannedState(database.From(ctx, r.pool).QueryRow(ctx, plannedStateSelect+` WHERE next_planned_state_id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find predecessor: %w", database.MapError(err))
	}
	return state, nil
}

// ListByEvent retrieves the planned states linked to a club event
func (r *PlannedStateRepository) ListByEvent(ctx context.Context, eventID string) ([]*model.PlannedState, error) {
	rows, err := database.From(ctx, r.pool).Query(ctx, plannedStateSelect+` WHERE associated_event_id = $1 ORDER BY start_on`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list states for event: %w", database.MapError(err))
	}
	defer rows.Close()

	return collectPlannedStates(rows)
}

// ClearEventLinks detaches every planned state from a club event
func (r *PlannedStateRepository) ClearEventLinks(ctx context.Context, eventID string) error {
	_, err := database.From(ctx, r.pool).Exec(ctx,
		`UPDATE planned_states SET associated_event_id = NULL WHERE associated_event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to clear event links: %w", database.MapError(err))
	}
	return nil
}

// SetEventLinks attaches the given planned states to a club event
func (r *PlannedStateRepository) SetEventLinks(ctx context.Context, stateIDs []string, eventID string) error {
	if len(stateIDs) == 0 {
		return nil
	}

	_, err := database.From(ctx, r.pool).Exec(ctx,
		`UPDATE planned_states SET associated_event_id = $2 WHERE id = ANY($1)`, stateIDs, eventID)
	if err != nil {
		return fmt.Errorf("failed to set event links: %w", database.MapError(err))
	}
	return nil
}

// DeleteGeneratedAfter removes a template's future generated states that
// nothing has touched yet. Started or ended entries stay as history.
func (r *PlannedStateRepository) DeleteGeneratedAfter(ctx context.Context, repeatingStateID string, after time.Time) error {
	_, err := database.From(ctx, r.pool).Exec(ctx, `
	DELETE FROM planned_states
	WHERE repeating_state_id = $1 AND start_on >= $2
	  AND started_on IS NULL AND ended IS NULL`, repeatingStateID, after)
	if err != nil {
		return fmt.Errorf("failed to delete generated states: %w", database.MapError(err))
	}
	return nil
}

func collectPlannedStates(rows pgx.Rows) ([]*model.PlannedState, error) {
	var states []*model.PlannedState
	for rows.Next() {
		state, err := scanPlannedState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planned state: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read planned states: %w", err)
	}
	return states, nil
}
