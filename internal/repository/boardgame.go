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

// boardGameCols is the select list every board game scan expects, in order
var boardGameCols = []any{
	"id", "name", "description", "image_url", "players_min", "players_max",
	"category_id", "owner_id", "note_internal", "in_stock", "unavailable",
	"visible", "default_reservation_days", "created_on", "updated_on",
}

const boardGameSelect = `
	SELECT id, name, description, image_url, players_min, players_max,
	       category_id, owner_id, note_internal, in_stock, unavailable,
	       visible, default_reservation_days, created_on, updated_on
	FROM board_games`

// BoardGameRepository handles board game persistence
type BoardGameRepository struct {
	pool *pgxpool.Pool
}

// NewBoardGameRepository creates a new board game repository
func NewBoardGameRepository(pool *pgxpool.Pool) *BoardGameRepository {
	return &BoardGameRepository{pool: pool}
}

func scanBoardGame(row pgx.Row) (*model.BoardGame, error) {
	var g model.BoardGame
	err := row.Scan(
		&g.ID, &g.Name, &g.Description, &g.ImageURL, &g.PlayersMin, &g.PlayersMax,
		&g.CategoryID, &g.OwnerID, &g.NoteInternal, &g.InStock, &g.Unavailable,
		&g.Visible, &g.DefaultReservationDays, &g.CreatedOn, &g.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a new board game
func (r *BoardGameRepository) Create(ctx context.Context, game *model.BoardGame) error {
	sql, args, err := dialect.Insert("board_games").Prepared(true).Rows(goqu.Record{
		"id":                       game.ID,
		"name":                     game.Name,
		"description":              game.Description,
		"image_url":                game.ImageURL,
		"players_min":              game.PlayersMin,
		"players_max":              game.PlayersMax,
		"category_id":              game.CategoryID,
		"owner_id":                 game.OwnerID,
		"note_internal":            game.NoteInternal,
		"in_stock":                 game.InStock,
		"unavailable":              game.Unavailable,
		"visible":                  game.Visible,
		"default_reservation_days": game.DefaultReservationDays,
		"created_on":               game.CreatedOn,
		"updated_on":               game.UpdatedOn,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build board game insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create board game: %w", database.MapError(err))
	}
	return nil
}

// GetByID retrieves a board game by ID
func (r *BoardGameRepository) GetByID(ctx context.Context, id string) (*model.BoardGame, error) {
	sql, args, err := dialect.From("board_games").Prepared(true).
		Select(boardGameCols...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build board game query: %w", err)
	}

	game, err := scanBoardGame(database.From(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get board game: %w", database.MapError(err))
	}
	return game, nil
}

// GetForUpdate loads a board game and locks its row until the surrounding
// transaction ends. Availability checks run behind this lock so two
// reservations cannot both grab the last copy.
func (r *BoardGameRepository) GetForUpdate(ctx context.Context, id string) (*model.BoardGame, error) {
	query := boardGameSelect + ` WHERE id = $1 FOR UPDATE`

	game, err := scanBoardGame(database.From(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock board game: %w", database.MapError(err))
	}
	return game, nil
}

// List retrieves board games matching the filter, ordered by name
func (r *BoardGameRepository) List(ctx context.Context, filter model.BoardGameFilter, visibleOnly bool) ([]*model.BoardGame, error) {
	ds := dialect.From("board_games").Prepared(true).Select(boardGameCols...)

	if visibleOnly {
		ds = ds.Where(goqu.C("visible").IsTrue())
	}
	if filter.CategoryID != nil {
		ds = ds.Where(goqu.Ex{"category_id": *filter.CategoryID})
	}
	if filter.Name != nil {
		ds = ds.Where(goqu.C("name").ILike("%" + *filter.Name + "%"))
	}
	if filter.Players != nil {
		ds = ds.Where(
			goqu.C("players_min").Lte(*filter.Players),
			goqu.C("players_max").Gte(*filter.Players),
		)
	}

	sql, args, err := ds.Order(goqu.C("name").Asc()).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build board game listing: %w", err)
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list board games: %w", database.MapError(err))
	}
	defer rows.Close()

	var games []*model.BoardGame
	for rows.Next() {
		game, err := scanBoardGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read board games: %w", err)
	}
	return games, nil
}

// Update persists every mutable column of a board game
func (r *BoardGameRepository) Update(ctx context.Context, game *model.BoardGame) error {
	sql, args, err := dialect.Update("board_games").Prepared(true).Set(goqu.Record{
		"name":                     game.Name,
		"description":              game.Description,
		"image_url":                game.ImageURL,
		"players_min":              game.PlayersMin,
		"players_max":              game.PlayersMax,
		"category_id":              game.CategoryID,
		"owner_id":                 game.OwnerID,
		"note_internal":            game.NoteInternal,
		"visible":                  game.Visible,
		"default_reservation_days": game.DefaultReservationDays,
		"updated_on":               game.UpdatedOn,
	}).Where(goqu.Ex{"id": game.ID}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build board game update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update board game: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// UpdateStock sets both stock counters in one statement
func (r *BoardGameRepository) UpdateStock(ctx context.Context, id string, inStock, unavailable int, updatedOn time.Time) error {
	sql, args, err := dialect.Update("board_games").Prepared(true).Set(goqu.Record{
		"in_stock":    inStock,
		"unavailable": unavailable,
		"updated_on":  updatedOn,
	}).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build stock update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a board game. Games referenced by reservation items are
// protected by a RESTRICT constraint and surface as ErrForeignKey.
func (r *BoardGameRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := dialect.Delete("board_games").Prepared(true).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build board game delete: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete board game: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}
