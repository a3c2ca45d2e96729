// Package model defines domain entities and data structures for the GameKeeper API.
//
// The model package contains all struct definitions for domain objects, request/response
// types, and error definitions. Models are used across all layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - User: Club member account with roles
//   - BoardGame, Category: The lending inventory
//   - Reservation, ReservationItem, ReservationItemEvent: Lending lifecycle with an append-only audit trail
//   - PlannedState, RepeatingState: The club's open/closed schedule
//   - Event: Club events linked to planned states
//
// # Authorization
//
// Access carries the verified caller identity for one request:
//
//	func (s *Service) GetBoardGame(ctx context.Context, access model.Access, id string) (*model.BoardGame, error)
//
// Handlers build Access from token claims; services decide with its
// capability methods (CanManageBoardGames, CanManageStates, ...).
//
// # Validation Constants
//
// The package defines validation constants:
//
//	const (
//	    MaxGameNameLength      = 200
//	    MaxItemsPerReservation = 10
//	    DefaultReservationDays = 14
//	)
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
