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

const eventSelect = `
	SELECT id, name, place, place_url, image_url, short_description,
	       full_description, url, starts_on, ends_on, made_by_id,
	       created_on, updated_on
	FROM club_events`

// eventCols is the select list every event scan expects, in order
var eventCols = []any{
	"id", "name", "place", "place_url", "image_url", "short_description",
	"full_description", "url", "starts_on", "ends_on", "made_by_id",
	"created_on", "updated_on",
}

// EventRepository handles club event persistence
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Name, &e.Place, &e.PlaceURL, &e.ImageURL, &e.ShortDescription,
		&e.FullDescription, &e.URL, &e.From, &e.To, &e.MadeByID,
		&e.CreatedOn, &e.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new club event
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	sql, args, err := dialect.Insert("club_events").Prepared(true).Rows(goqu.Record{
		"id":                event.ID,
		"name":              event.Name,
		"place":             event.Place,
		"place_url":         event.PlaceURL,
		"image_url":         event.ImageURL,
		"short_description": event.ShortDescription,
		"full_description":  event.FullDescription,
		"url":               event.URL,
		"starts_on":         event.From,
		"ends_on":           event.To,
		"made_by_id":        event.MadeByID,
		"created_on":        event.CreatedOn,
		"updated_on":        event.UpdatedOn,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build event insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create event: %w", database.MapError(err))
	}
	return nil
}

// GetByID retrieves a club event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	sql, args, err := dialect.From("club_events").Prepared(true).
		Select(eventCols...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}

	event, err := scanEvent(database.From(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", database.MapError(err))
	}
	return event, nil
}

// List retrieves club events overlapping [from, to), ordered by start
func (r *EventRepository) List(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	sql, args, err := dialect.From("club_events").Prepared(true).
		Select(eventCols...).
		Where(
			goqu.C("starts_on").Lt(to),
			goqu.C("ends_on").Gt(from),
		).
		Order(goqu.C("starts_on").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build event listing: %w", err)
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", database.MapError(err))
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// GetNextAfter retrieves the next event that has not finished yet.
// Running events count; ErrNotFound means nothing is coming up.
func (r *EventRepository) GetNextAfter(ctx context.Context, now time.Time) (*model.Event, error) {
	query := eventSelect + `
	WHERE ends_on > $1
	ORDER BY starts_on
	LIMIT 1`

	event, err := scanEvent(database.From(ctx, r.pool).QueryRow(ctx, query, now))
	if err != nil {
		return nil, fmt.Errorf("failed to get next event: %w", database.MapError(err))
	}
	return event, nil
}

// Update persists every mutable column of a club event
func (r *EventRepository) Update(ctx context.Context, event *model.Event) error {
	sql, args, err := dialect.Update("club_events").Prepared(true).Set(goqu.Record{
		"name":              event.Name,
		"place":             event.Place,
		"place_url":         event.PlaceURL,
		"image_url":         event.ImageURL,
		"short_description": event.ShortDescription,
		"full_description":  event.FullDescription,
		"url":               event.URL,
		"starts_on":         event.From,
		"ends_on":           event.To,
		"updated_on":        event.UpdatedOn,
	}).Where(goqu.Ex{"id": event.ID}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build event update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a club event. Linked planned states survive with their
// event link cleared by the SET NULL constraint.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := dialect.Delete("club_events").Prepared(true).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build event delete: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}
