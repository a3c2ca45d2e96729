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

const (
	userSelect = `
	SELECT id, username, display_name, password_hash, created_on, updated_on
	FROM users`

	rolesByUserIDsQuery = `
	SELECT user_id, role
	FROM user_roles
	WHERE user_id = ANY($1)
	ORDER BY user_id, role`
)

// UserRepository handles user and role grant persistence
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Hash, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. Taken usernames surface as ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	sql, args, err := dialect.Insert("users").Prepared(true).Rows(goqu.Record{
		"id":            user.ID,
		"username":      user.Username,
		"display_name":  user.DisplayName,
		"password_hash": user.Hash,
		"created_on":    user.CreatedOn,
		"updated_on":    user.UpdatedOn,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build user insert: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create user: %w", database.MapError(err))
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(database.From(ctx, r.pool).QueryRow(ctx, userSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", database.MapError(err))
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := scanUser(database.From(ctx, r.pool).QueryRow(ctx, userSelect+` WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", database.MapError(err))
	}
	return user, nil
}

// List retrieves users ordered by username, optionally narrowed to those
// whose username or display name contains the fragment
func (r *UserRepository) List(ctx context.Context, nameFragment string) ([]*model.User, error) {
	query := dialect.From("users").Prepared(true).
		Select("id", "username", "display_name", "password_hash", "created_on", "updated_on")
	if nameFragment != "" {
		pattern := "%" + nameFragment + "%"
		query = query.Where(goqu.Or(
			goqu.C("username").ILike(pattern),
			goqu.C("display_name").ILike(pattern),
		))
	}
	sql, args, err := query.Order(goqu.C("username").Asc()).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build user list: %w", err)
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", database.MapError(err))
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

// Role grants

// ListRoles retrieves a user's roles
func (r *UserRepository) ListRoles(ctx context.Context, userID string) ([]model.Role, error) {
	byUser, err := r.ListRolesByUserIDs(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	return byUser[userID], nil
}

// ListRolesByUserIDs retrieves the roles of many users in one query,
// keyed by user ID. Users without grants are absent from the map.
func (r *UserRepository) ListRolesByUserIDs(ctx context.Context, userIDs []string) (map[string][]model.Role, error) {
	rolesByUser := make(map[string][]model.Role, len(userIDs))
	if len(userIDs) == 0 {
		return rolesByUser, nil
	}

	rows, err := database.From(ctx, r.pool).Query(ctx, rolesByUserIDsQuery, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", database.MapError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var role model.Role
		if err := rows.Scan(&userID, &role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		rolesByUser[userID] = append(rolesByUser[userID], role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roles: %w", err)
	}
	return rolesByUser, nil
}

// AddRole grants a role. Granting an already-held role is a no-op, keeping
// the original grant's audit trail.
func (r *UserRepository) AddRole(ctx context.Context, grant *model.UserRole) error {
	sql, args, err := dialect.Insert("user_roles").Prepared(true).Rows(goqu.Record{
		"user_id":        grant.UserID,
		"role":           grant.Role,
		"assigned_by_id": grant.AssignedByID,
		"assigned_on":    grant.AssignedOn,
	}).OnConflict(goqu.DoNothing()).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build role grant: %w", err)
	}

	if _, err := database.From(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to grant role: %w", database.MapError(err))
	}
	return nil
}

// RemoveRole revokes a role. ErrNotFound means the user did not hold it.
func (r *UserRepository) RemoveRole(ctx context.Context, userID string, role model.Role) error {
	sql, args, err := dialect.Delete("user_roles").Prepared(true).
		Where(goqu.Ex{"user_id": userID, "role": role}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build role revoke: %w", err)
	}

	tag, err := database.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", database.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}
