package repository

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
)

// categoryListQuery counts games per category in the same pass
const categoryListQuery = `
	SELECT c.id, c.name, c.colour, COUNT(g.id)
	FROM categories c
	LEFT JOIN board_games g ON g.category_id = c.id
	GROUP BY c.id, c.name, c.colour
	ORDER BY c.name`

// CategoryRepository handles category persistence
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category
func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	sql, args, err := dialect.Insert("categories").Prepared(true).Rows(goqu.Record{
		"id":     category.ID,
		"name":   category.Name,
		"colour": category.Colour,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build category insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create category: %w", database.MapError(err))
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*model.Category, error) {
	sql, args, err := dialect.From("categories").Prepared(true).
		Select("id", "name", "colour").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build category query: %w", err)
	}

	var c model.Category
	if err := database.From(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.Colour); err != nil {
		return nil, fmt.Errorf("failed to get category: %w", database.MapError(err))
	}
	return &c, nil
}

// List retrieves all categories with their game counts, ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	rows, err := database.From(ctx, r.pool).Query(ctx, categoryListQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", database.MapError(err))
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Colour, &c.GameCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

// Update persists a category's name and colour
func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	sql, args, err := dialect.Update("categories").Prepared(true).Set(goqu.Record{
		"name":   category.Name,
		"colour": category.Colour,
	}).Where(goqu.Ex{"id": category.ID}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build category update: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a category. Categories still referenced by board games are
// protected by a RESTRICT constraint and surface as ErrForeignKey.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := dialect.Delete("categories").Prepared(true).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build category delete: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// CountGames returns how many board games reference a category
func (r *CategoryRepository) CountGames(ctx context.Context, id string) (int, error) {
	var count int
	err := database.From(ctx, r.pool).
		QueryRow(ctx, `SELECT COUNT(*) FROM board_games WHERE category_id = $1`, id).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games in category: %w", database.MapError(err))
	}
	return count, nil
}
