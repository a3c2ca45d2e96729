// Package service implements the business logic layer for the GameKeeper API.
//
// The service package contains all domain logic, validation rules, and
// orchestration of repository operations. Services are the primary
// abstraction between HTTP handlers and data access.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Methods take the caller's model.Access after the context and enforce authorization first
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own repository interfaces, allowing:
//
//   - Easy mocking for unit tests
//   - Decoupling from specific database implementations
//   - Clear contracts for data access requirements
//
// # Error Handling
//
// Services return domain-specific errors defined as package-level variables
// in errors.go:
//
//	var (
//	    ErrGameNotFound    = errors.New("board game not found")
//	    ErrGameUnavailable = errors.New("no copy of this game is available")
//	)
//
// # Example Usage
//
//	service := NewBoardGameService(BoardGameServiceConfig{
//	    BoardGameRepo: gameRepository,
//	    CategoryRepo:  categoryRepository,
//	})
//	game, err := service.Create(ctx, access, &model.CreateBoardGameRequest{
//	    Name:       "Terraforming Mars",
//	    PlayersMin: 1,
//	    PlayersMax: 5,
//	    CategoryID: categoryID,
//	    InStock:    2,
//	})
package service
