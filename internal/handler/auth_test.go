package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ludobar/gamekeeper/api/internal/clock"
	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/internal/service"
	"github.com/ludobar/gamekeeper/api/pkg/jwt"
)

// ============================================================================
// Mock UserRepository
// ============================================================================

type mockUserRepo struct {
	createFunc        func(ctx context.Context, user *model.User) error
	getByIDFunc       func(ctx context.Context, id string) (*model.User, error)
	getByUsernameFunc func(ctx context.Context, username string) (*model.User, error)
	listRolesFunc     func(ctx context.Context, userID string) ([]model.Role, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, database.ErrNotFound
}

func (m *mockUserRepo) ListRoles(ctx context.Context, userID string) ([]model.Role, error) {
	if m.listRolesFunc != nil {
		return m.listRolesFunc(ctx, userID)
	}
	return nil, nil
}

// ============================================================================
// Mock TokenSigner
// ============================================================================

type mockSigner struct {
	signFunc func(claims jwt.Claims) (string, error)
}

func (m *mockSigner) Sign(claims jwt.Claims) (string, error) {
	if m.signFunc != nil {
		return m.signFunc(claims)
	}
	return "test-token", nil
}

func (m *mockSigner) GetExpiration() time.Duration {
	return 15 * time.Minute
}

// ============================================================================
// Test Helpers
// ============================================================================

func newAuthHandler(users *mockUserRepo, signer *mockSigner) *AuthHandler {
	if users == nil {
		users = &mockUserRepo{}
	}
	if signer == nil {
		signer = &mockSigner{}
	}
	svc := service.NewAuthService(service.AuthServiceConfig{
		UserRepo: users,
		Signer:   signer,
		Clock:    clock.NewFixed(testTime),
	})
	return NewAuthHandler(svc)
}

func newTestMember(password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.User{
		ID:          "user-member",
		Username:    "casual.carl",
		DisplayName: "Carl",
		Hash:        string(hash),
		CreatedOn:   testTime,
		UpdatedOn:   testTime,
	}
}

// ============================================================================
// Register Tests
// ============================================================================

func TestRegister_ValidInput_ReturnsCreated(t *testing.T) {
	t.Parallel()

	var created *model.User
	users := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	h := newAuthHandler(users, nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", model.RegisterRequest{
		Username: "New.Member",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if created == nil {
		t.Fatal("expected the user to be persisted")
	}
	if created.Username != "new.member" {
		t.Errorf("expected username to be lowercased, got %q", created.Username)
	}
	if created.DisplayName != "new.member" {
		t.Errorf("expected display name to default to the username, got %q", created.DisplayName)
	}
	if created.Hash == "securepassword123" {
		t.Error("password must be stored hashed")
	}

	var resp struct {
		Data model.AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Data.Token != "test-token" {
		t.Errorf("expected a signed token, got %q", resp.Data.Token)
	}
}

func TestRegister_DuplicateUsername_Conflict(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			return database.ErrDuplicate
		},
	}
	h := newAuthHandler(users, nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", model.RegisterRequest{
		Username: "casual.carl",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestRegister_ShortPassword_ValidationError(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(nil, nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", model.RegisterRequest{
		Username: "casual.carl",
		Password: "short",
	})
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
	problem := parseProblem(t, rr.Body.Bytes())
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "password" {
		t.Errorf("expected a validation error on 'password', got %+v", problem.Errors)
	}
}

func TestRegister_InvalidBody_BadRequest(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

// ============================================================================
// Login Tests
// ============================================================================

func TestLogin_ValidCredentials_ReturnsToken(t *testing.T) {
	t.Parallel()

	member := newTestMember("securepassword123")
	users := &mockUserRepo{
		getByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return member, nil
		},
		listRolesFunc: func(ctx context.Context, userID string) ([]model.Role, error) {
			return []model.Role{model.RoleBoardGamesManager}, nil
		},
	}
	var signedRoles []string
	signer := &mockSigner{
		signFunc: func(claims jwt.Claims) (string, error) {
			signedRoles = claims.Roles
			return "signed-token", nil
		},
	}
	h := newAuthHandler(users, signer)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/login", model.LoginRequest{
		Username: "casual.carl",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(signedRoles) != 1 || signedRoles[0] != "board_games_manager" {
		t.Errorf("expected roles in token claims, got %v", signedRoles)
	}

	var resp struct {
		Data model.AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Data.Token != "signed-token" {
		t.Errorf("expected the signed token, got %q", resp.Data.Token)
	}
	if resp.Data.User == nil || len(resp.Data.User.Roles) != 1 {
		t.Error("expected the user with roles in the response")
	}
}

func TestLogin_WrongPassword_Unauthorized(t *testing.T) {
	t.Parallel()

	member := newTestMember("securepassword123")
	users := &mockUserRepo{
		getByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return member, nil
		},
	}
	h := newAuthHandler(users, nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/login", model.LoginRequest{
		Username: "casual.carl",
		Password: "wrongpassword",
	})
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestLogin_UnknownUsername_Unauthorized(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(nil, nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/login", model.LoginRequest{
		Username: "nobody",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	// Unknown usernames answer exactly like wrong passwords
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

// ============================================================================
// Me Tests
// ============================================================================

func TestMe_Authenticated_ReturnsUserWithRoles(t *testing.T) {
	t.Parallel()

	member := newTestMember("securepassword123")
	users := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return member, nil
		},
		listRolesFunc: func(ctx context.Context, userID string) ([]model.Role, error) {
			return []model.Role{model.RoleAdmin}, nil
		},
	}
	h := newAuthHandler(users, nil)

	req := withAccess(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil), memberAccess())
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp struct {
		Data model.User `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Data.Username != "casual.carl" {
		t.Errorf("expected username 'casual.carl', got %q", resp.Data.Username)
	}
	if len(resp.Data.Roles) != 1 || resp.Data.Roles[0] != model.RoleAdmin {
		t.Errorf("expected admin role on the user, got %v", resp.Data.Roles)
	}
}

func TestMe_Anonymous_Unauthorized(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}
