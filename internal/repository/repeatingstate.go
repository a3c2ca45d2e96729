package repository

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
)

// repeatingStateCols is the select list every repeating state scan expects, in order
var repeatingStateCols = []any{
	"id", "kind", "day_of_week", "minutes_from", "minutes_to",
	"effective_from", "effective_to", "made_by_id",
	"note_public", "note_internal", "created_on",
}

// RepeatingStateRepository handles the weekly schedule templates
type RepeatingStateRepository struct {
	pool *pgxpool.Pool
}

// NewRepeatingStateRepository creates a new repeating state repository
func NewRepeatingStateRepository(pool *pgxpool.Pool) *RepeatingStateRepository {
	return &RepeatingStateRepository{pool: pool}
}

func scanRepeatingState(row pgx.Row) (*model.RepeatingState, error) {
	var s model.RepeatingState
	err := row.Scan(
		&s.ID, &s.Kind, &s.DayOfWeek, &s.MinutesFrom, &s.MinutesTo,
		&s.EffectiveFrom, &s.EffectiveTo, &s.MadeByID,
		&s.NotePublic, &s.NoteInternal, &s.CreatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new repeating state
func (r *RepeatingStateRepository) Create(ctx context.Context, state *model.RepeatingState) error {
	sql, args, err := dialect.Insert("repeating_states").Prepared(true).Rows(goqu.Record{
		"id":             state.ID,
		"kind":           state.Kind,
		"day_of_week":    state.DayOfWeek,
		"minutes_from":   state.MinutesFrom,
		"minutes_to":     state.MinutesTo,
		"effective_from": state.EffectiveFrom,
		"effective_to":   state.EffectiveTo,
		"made_by_id":     state.MadeByID,
		"note_public":    state.NotePublic,
		"note_internal":  state.NoteInternal,
		"created_on":     state.CreatedOn,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build repeating state insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create repeating state: %w", database.MapError(err))
	}
	return nil
}

// GetByID retrieves a repeating state by ID
func (r *RepeatingStateRepository) GetByID(ctx context.Context, id string) (*model.RepeatingState, error) {
	sql, args, err := dialect.From("repeating_states").Prepared(true).
		Select(repeatingStateCols...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build repeating state query: %w", err)
	}

	state, err := scanRepeatingState(database.From(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get repeating state: %w", database.MapError(err))
	}
	return state, nil
}

// List retrieves all repeating states ordered by weekday and start minute
func (r *RepeatingStateRepository) List(ctx context.Context) ([]*model.RepeatingState, error) {
	sql, args, err := dialect.From("repeating_states").Prepared(true).
		Select(repeatingStateCols...).
		Order(goqu.C("day_of_week").Asc(), goqu.C("minutes_from").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build repeating state listing: %w", err)
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repeating states: %w", database.MapError(err))
	}
	defer rows.Close()

	var states []*model.RepeatingState
	for rows.Next() {
		state, err := scanRepeatingState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repeating state: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read repeating states: %w", err)
	}
	return states, nil
}

// Update persists every mutable column of a repeating state
func (r *RepeatingStateRepository) Update(ctx context.Context, state *model.RepeatingState) error {
	sql, args, err := dialect.Update("repeating_states").Prepared(true).Set(goqu.Record{
		"kind":          state.Kind,
		"day_of_week":   state.DayOfWeek,
		"minutes_from":  state.MinutesFrom,
		"minutes_to":    state.MinutesTo,
		"effective_to":  state.EffectiveTo,
		"note_public":   state.NotePublic,
		"note_internal": state.NoteInternal,
	}).Where(goqu.Ex{"id": state.ID}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build repeating state update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update repeating state: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a repeating state. Generated planned states survive with
// their template link cleared by the SET NULL constraint.
func (r *RepeatingStateRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := dialect.Delete("repeating_states").Prepared(true).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build repeating state delete: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete repeating state: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}
