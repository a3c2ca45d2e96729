package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ludobar/gamekeeper/api/internal/clock"
	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/pkg/jwt"
)

// bcrypt cost factor (10-14 recommended for production)
const bcryptCost = 12

// UserRepository defines the interface for account storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ListRoles(ctx context.Context, userID string) ([]model.Role, error)
}

// TokenSigner issues signed tokens for authenticated members
type TokenSigner interface {
	Sign(claims jwt.Claims) (string, error)
	GetExpiration() time.Duration
}

// AuthService handles registration, login and identity lookups
type AuthService struct {
	userRepo UserRepository
	signer   TokenSigner
	clock    clock.Clock
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo UserRepository
	Signer   TokenSigner
	Clock    clock.Clock
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &AuthService{
		userRepo: cfg.UserRepo,
		signer:   cfg.Signer,
		clock:    clk,
	}
}

// Register creates a member account and logs it straight in
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}

	now := s.clock.Now()
	user := &model.User{
		ID:          uuid.NewString(),
		Username:    req.Username,
		DisplayName: displayName,
		Hash:        hash,
		CreatedOn:   now,
		UpdatedOn:   now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUsernameAlreadyTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(user)
}

// Login authenticates a member with username and password
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Same answer as a wrong password; usernames are not probeable
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !checkPassword(req.Password, user.Hash) {
		return nil, ErrInvalidCredentials
	}

	roles, err := s.userRepo.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	user.Roles = roles

	return s.issueToken(user)
}

// Me retrieves the calling member with their roles
func (s *AuthService) Me(ctx context.Context, access model.Access) (*model.User, error) {
	if !access.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	user, err := s.userRepo.GetByID(ctx, access.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := s.userRepo.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}

func (s *AuthService) issueToken(user *model.User) (*model.AuthResponse, error) {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}

	token, err := s.signer.Sign(jwt.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    roles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.AuthResponse{
		Token:     token,
		ExpiresAt: s.clock.Now().Add(s.signer.GetExpiration()),
		User:      user,
	}, nil
}

// Helper functions

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
