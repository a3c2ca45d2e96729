// Package middleware provides HTTP middleware for the GameKeeper API.
//
// The middleware package contains reusable middleware components for
// authentication, rate limiting, and request processing.
//
// # Available Middleware
//
// Core middleware components:
//
//   - Auth: JWT token validation, builds the caller's access
//   - OptionalAuth: like Auth but anonymous on missing or bad tokens
//   - RateLimit: request rate limiting per user/IP
//   - Idempotency: replay protection for unsafe requests
//   - RequestID, Logger, Recovery, CORS, Compress: request plumbing
//
// # Authentication
//
// The auth middleware validates bearer tokens and turns the verified
// claims into a model.Access carried on the request context:
//
//	mux.Handle("GET /v1/auth/me", middleware.Chain(me, middleware.Auth(tokens)))
//
// After authentication, handlers read the caller's identity:
//
//	access := middleware.GetAccess(r.Context())
//
// Authorization stays out of the middleware layer: services check the
// access value themselves.
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetAccess(ctx): the caller's identity and roles, anonymous if unset
//   - GetUserID(ctx): shorthand for GetAccess(ctx).UserID
//   - GetRequestID(ctx): unique request identifier
package middleware
