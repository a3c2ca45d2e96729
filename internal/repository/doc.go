// Package repository implements the data access layer for the GameKeeper API.
//
// The repository package contains all database operations on PostgreSQL.
// Each repository struct handles the persistence of one aggregate: board
// games, categories, reservations with their items and event log, planned
// and repeating club states, club events, and users.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a pgx connection pool
//   - Methods implement specific data operations (Create, GetByID, Update, ...)
//   - Queries resolve their executor through database.From, so a method
//     called inside database.WithTx joins the ambient transaction
//   - Rows are scanned into model structs
//
// # Query Patterns
//
// Two styles are used, depending on the query:
//
//   - goqu in Prepared mode for dynamic SQL (filtered listings, partial
//     updates, batched IN lookups)
//   - plain SQL constants for fixed queries, in particular the locking
//     reads of the reservation and club state machinery (FOR UPDATE)
//
// # Errors
//
// Lookups that match no row return database.ErrNotFound, never (nil, nil).
// Constraint violations surface as database.ErrDuplicate or
// database.ErrForeignKey via database.MapError, so services can translate
// them into domain errors without parsing SQLSTATE themselves.
//
// # Example Usage
//
//	repo := NewBoardGameRepository(pool)
//	game, err := repo.GetByID(ctx, id)
//	if err != nil {
//	    if errors.Is(err, database.ErrNotFound) {
//	        // Handle not found
//	    }
//	    return err
//	}
package repository
