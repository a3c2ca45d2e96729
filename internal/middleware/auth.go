package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/pkg/jwt"
)

// TokenValidator defines the interface for token validation
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

// AccessKey is the context key for the caller's access
const AccessKey contextKey = "access"

// Auth returns a middleware that requires a valid bearer token.
// The verified claims become the caller's access for the rest of the request.
func Auth(tokens TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				model.NewUnauthorizedError("missing authorization header").WriteJSON(w)
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				model.NewUnauthorizedError("invalid authorization header format").WriteJSON(w)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					model.NewUnauthorizedError("token expired").WriteJSON(w)
				case errors.Is(err, jwt.ErrInvalidSignature):
					model.NewUnauthorizedError("invalid token signature").WriteJSON(w)
				default:
					model.NewUnauthorizedError("invalid token").WriteJSON(w)
				}
				return
			}

			ctx := WithAccess(r.Context(), accessFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth is like Auth but never rejects the request. A missing or
// invalid token leaves the caller anonymous; claims are attached when the
// token verifies. Used on public reads that show more to managers.
func OptionalAuth(tokens TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithAccess(r.Context(), accessFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithAccess returns a context carrying the caller's access
func WithAccess(ctx context.Context, access model.Access) context.Context {
	return context.WithValue(ctx, AccessKey, access)
}

// GetAccess extracts the caller's access from context. Requests that never
// passed an auth middleware are anonymous.
func GetAccess(ctx context.Context) model.Access {
	if access, ok := ctx.Value(AccessKey).(model.Access); ok {
		return access
	}
	return model.Anonymous()
}

// GetUserID extracts the authenticated user's id from context
func GetUserID(ctx context.Context) string {
	return GetAccess(ctx).UserID
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func accessFromClaims(claims *jwt.Claims) model.Access {
	roles := make([]model.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, model.Role(r))
	}
	return model.Access{
		UserID:   claims.UserID,
		Username: claims.Username,
		Roles:    roles,
	}
}
