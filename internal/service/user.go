package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ludobar/gamekeeper/api/internal/clock"
	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
)

// AdminUserRepository defines the user repo interface the admin surface needs
type AdminUserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, nameFragment string) ([]*model.User, error)
	ListRoles(ctx context.Context, userID string) ([]model.Role, error)
	ListRolesByUserIDs(ctx context.Context, userIDs []string) (map[string][]model.Role, error)
	AddRole(ctx context.Context, grant *model.UserRole) error
	RemoveRole(ctx context.Context, userID string, role model.Role) error
}

// UserService handles member administration, admins only
type UserService struct {
	repo  AdminUserRepository
	clock clock.Clock
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	UserRepo AdminUserRepository
	Clock    clock.Clock
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &UserService{
		repo:  cfg.UserRepo,
		clock: clk,
	}
}

// GetUsers retrieves members with their roles, optionally narrowed by a
// name fragment
func (s *UserService) GetUsers(ctx context.Context, access model.Access, nameFragment string) ([]*model.User, error) {
	if !access.IsAdmin() {
		return nil, ErrNotAnAdmin
	}

	users, err := s.repo.List(ctx, nameFragment)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	rolesByUser, err := s.repo.ListRolesByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	for _, user := range users {
		user.Roles = rolesByUser[user.ID]
	}
	return users, nil
}

// GetUser retrieves one member with their roles
func (s *UserService) GetUser(ctx context.Context, access model.Access, id string) (*model.User, error) {
	if !access.IsAdmin() {
		return nil, ErrNotAnAdmin
	}
	return s.getWithRoles(ctx, id)
}

// AssignRole grants a role to a member. Granting a role they already hold
// changes nothing.
func (s *UserService) AssignRole(ctx context.Context, access model.Access, userID string, role model.Role) (*model.User, error) {
	if !access.IsAdmin() {
		return nil, ErrNotAnAdmin
	}
	if !role.IsValid() {
		return nil, model.NewBadRequestError("unknown role")
	}

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	grant := &model.UserRole{
		UserID:       userID,
		Role:         role,
		AssignedByID: access.UserID,
		AssignedOn:   s.clock.Now(),
	}
	if err := s.repo.AddRole(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to grant role: %w", err)
	}
	return s.getWithRoles(ctx, userID)
}

// RevokeRole removes a role from a member. Admins cannot revoke their own
// admin role; another admin has to do it.
func (s *UserService) RevokeRole(ctx context.Context, access model.Access, userID string, role model.Role) (*model.User, error) {
	if !access.IsAdmin() {
		return nil, ErrNotAnAdmin
	}
	if !role.IsValid() {
		return nil, model.NewBadRequestError("unknown role")
	}
	if role == model.RoleAdmin && access.SameUser(userID) {
		return nil, ErrCannotRevokeOwnAdmin
	}

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.RemoveRole(ctx, userID, role); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrRoleNotGranted
		}
		return nil, fmt.Errorf("failed to revoke role: %w", err)
	}
	return s.getWithRoles(ctx, userID)
}

// GetRoles retrieves the role catalogue
func (s *UserService) GetRoles(ctx context.Context, access model.Access) ([]model.Role, error) {
	if !access.IsAdmin() {
		return nil, ErrNotAnAdmin
	}
	return model.AllRoles(), nil
}

func (s *UserService) getWithRoles(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := s.repo.ListRoles(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}
