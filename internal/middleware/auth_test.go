package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/pkg/jwt"
)

// ============================================================================
// Mock TokenValidator
// ============================================================================

type mockValidator struct {
	validateFunc func(token string) (*jwt.Claims, error)
}

func (m *mockValidator) Validate(token string) (*jwt.Claims, error) {
	return m.validateFunc(token)
}

// successValidator returns valid claims for any token
func successValidator(userID, username string, roles ...string) *mockValidator {
	return &mockValidator{
		validateFunc: func(token string) (*jwt.Claims, error) {
			return &jwt.Claims{
				UserID:   userID,
				Username: username,
				Roles:    roles,
			}, nil
		},
	}
}

// errorValidator returns the specified error
func errorValidator(err error) *mockValidator {
	return &mockValidator{
		validateFunc: func(token string) (*jwt.Claims, error) {
			return nil, err
		},
	}
}

// ============================================================================
// Test Helpers
// ============================================================================

func newTestRequest(authHeader string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return req
}

// captureHandler captures the request context for inspection
type captureHandler struct {
	called bool
	ctx    context.Context
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

// ============================================================================
// Auth() Middleware Tests
// ============================================================================

func TestAuth_MissingAuthorizationHeader_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-123", "casual.carl")
	middleware := Auth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("") // No auth header
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if handler.called {
		t.Error("handler should not have been called")
	}
}

func TestAuth_InvalidHeaderFormat_NoBearerPrefix_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-123", "casual.carl")
	middleware := Auth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Basic sometoken") // Wrong scheme
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if handler.called {
		t.Error("handler should not have been called")
	}
}

func TestAuth_InvalidHeaderFormat_OnlyBearer_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-123", "casual.carl")
	middleware := Auth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer") // No token
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if handler.called {
		t.Error("handler should not have been called")
	}
}

func TestAuth_ValidToken_SetsAccess_CallsNext(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-123", "casual.carl")
	middleware := Auth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer valid-token")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Error("handler should have been called")
	}

	access := GetAccess(handler.ctx)
	if access.UserID != "user-123" {
		t.Errorf("expected UserID 'user-123', got %q", access.UserID)
	}
	if access.Username != "casual.carl" {
		t.Errorf("expected Username 'casual.carl', got %q", access.Username)
	}
	if !access.IsAuthenticated() {
		t.Error("expected the caller to be authenticated")
	}
}

func TestAuth_ValidToken_CaseInsensitiveBearer(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-123", "casual.carl")
	middleware := Auth(tokens)
	handler := &captureHandler{}

	// Test lowercase "bearer"
	req := newTestRequest("bearer valid-token")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Error("handler should have been called")
	}
}

func TestAuth_ExpiredToken_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	tokens := errorValidator(jwt.ErrTokenExpired)
	middleware := Auth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer expired-token")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if handler.called {
		t.Error("handler should not have been called")
	}
}

func TestAuth_InvalidSignature_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	tokens := errorValidator(jwt.ErrInvalidSignature)
	middleware := Auth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer invalid-signature")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if handler.called {
		t.Error("handler should not have been called")
	}
}

func TestAuth_GenericError_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()
	tokens := errorValidator(jwt.ErrInvalidToken)
	middleware := Auth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer bad-token")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if handler.called {
		t.Error("handler should not have been called")
	}
}

func TestAuth_RolesFromClaims_LandInAccess(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-456", "shelf.sarah", "board_games_manager", "states_manager")
	middleware := Auth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer valid-token")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	access := GetAccess(handler.ctx)
	if len(access.Roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(access.Roles))
	}
	if !access.CanManageBoardGames() {
		t.Error("expected board games manager capability")
	}
	if !access.CanManageStates() {
		t.Error("expected states manager capability")
	}
	if access.IsAdmin() {
		t.Error("did not expect admin capability")
	}
}

// ============================================================================
// OptionalAuth() Middleware Tests
// ============================================================================

func TestOptionalAuth_NoHeader_ProceedsAnonymous(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-123", "casual.carl")
	middleware := OptionalAuth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("") // No auth header
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Error("handler should have been called")
	}

	if GetAccess(handler.ctx).IsAuthenticated() {
		t.Error("expected an anonymous caller")
	}
}

func TestOptionalAuth_InvalidHeaderFormat_ProceedsAnonymous(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-123", "casual.carl")
	middleware := OptionalAuth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Basic sometoken") // Wrong scheme
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Error("handler should have been called")
	}

	if GetAccess(handler.ctx).IsAuthenticated() {
		t.Error("expected an anonymous caller")
	}
}

func TestOptionalAuth_ValidToken_SetsAccess(t *testing.T) {
	t.Parallel()
	tokens := successValidator("user-123", "casual.carl")
	middleware := OptionalAuth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer valid-token")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Error("handler should have been called")
	}

	access := GetAccess(handler.ctx)
	if access.UserID != "user-123" {
		t.Errorf("expected UserID 'user-123', got %q", access.UserID)
	}
}

func TestOptionalAuth_InvalidToken_ProceedsAnonymous(t *testing.T) {
	t.Parallel()
	tokens := errorValidator(jwt.ErrInvalidToken)
	middleware := OptionalAuth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer invalid-token")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	// Should still proceed
	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Error("handler should have been called")
	}

	if GetAccess(handler.ctx).IsAuthenticated() {
		t.Error("expected an anonymous caller")
	}
}

func TestOptionalAuth_ExpiredToken_ProceedsAnonymous(t *testing.T) {
	t.Parallel()
	tokens := errorValidator(jwt.ErrTokenExpired)
	middleware := OptionalAuth(tokens)
	handler := &captureHandler{}

	req := newTestRequest("Bearer expired-token")
	rr := httptest.NewRecorder()

	middleware(handler).ServeHTTP(rr, req)

	// Should still proceed
	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Error("handler should have been called")
	}

	if GetAccess(handler.ctx).IsAuthenticated() {
		t.Error("expected an anonymous caller")
	}
}

// ============================================================================
// Context Helper Tests
// ============================================================================

func TestGetAccess_Present_ReturnsValue(t *testing.T) {
	t.Parallel()
	want := model.Access{UserID: "user-999", Username: "night.owl"}
	ctx := WithAccess(context.Background(), want)

	got := GetAccess(ctx)

	if got.UserID != want.UserID || got.Username != want.Username {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestGetAccess_Missing_ReturnsAnonymous(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	got := GetAccess(ctx)

	if got.IsAuthenticated() {
		t.Errorf("expected anonymous access, got %+v", got)
	}
}

func TestGetAccess_WrongType_ReturnsAnonymous(t *testing.T) {
	t.Parallel()
	ctx := context.WithValue(context.Background(), AccessKey, "not access") // Wrong type

	got := GetAccess(ctx)

	if got.IsAuthenticated() {
		t.Errorf("expected anonymous access for wrong type, got %+v", got)
	}
}

func TestGetUserID_DerivesFromAccess(t *testing.T) {
	t.Parallel()
	ctx := WithAccess(context.Background(), model.Access{UserID: "user-999"})

	if got := GetUserID(ctx); got != "user-999" {
		t.Errorf("expected 'user-999', got %q", got)
	}
	if got := GetUserID(context.Background()); got != "" {
		t.Errorf("expected empty string without access, got %q", got)
	}
}
