// Package handler provides HTTP request handlers for the GameKeeper API.
//
// The handler package contains all HTTP endpoint implementations organized by domain.
// Each handler struct wraps the service it needs to serve requests for a specific
// feature area (board games, reservations, opening states, events, users).
//
// # Handler Pattern
//
// All handlers follow a consistent pattern:
//
//   - Constructor function (NewXxxHandler) accepts the backing service
//   - Methods handle specific HTTP endpoints
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses via MapServiceError
//
// # Response Format
//
// Handlers use standardized response functions:
//
//   - WriteData: Single resource with optional HATEOAS links
//   - WriteCollection: Paginated list of resources
//   - WriteJSON: Raw JSON response
//   - WriteError: RFC 9457 Problem Details error response
//
// # Authentication
//
// Most handlers require authentication via JWT tokens. The auth middleware
// extracts the caller's identity and roles and makes them available via
// middleware.GetAccess(ctx). Handlers pass the access value to services,
// which enforce authorization themselves.
//
// # Example Usage
//
//	handler := NewBoardGameHandler(boardGameService)
//	mux.HandleFunc("GET /v1/boardgames", handler.List)
//	mux.HandleFunc("POST /v1/boardgames", handler.Create)
package handler
