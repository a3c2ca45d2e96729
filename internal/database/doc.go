// Package database provides PostgreSQL connectivity for the GameKeeper API.
//
// The database package owns the pgx connection pool, schema migrations and
// the transaction helper shared by all repositories.
//
// # Connection Management
//
// Connect builds a pool from configuration and verifies it with a ping:
//
//	pool, err := database.Connect(ctx, cfg.Database)
//	defer pool.Close()
//
// # Transactions
//
// WithTx runs a function inside a transaction. The transaction travels in the
// context, so repository calls made inside the function automatically join it:
//
//	err := database.WithTx(ctx, pool, func(ctx context.Context) error {
//	    if err := items.Insert(ctx, item); err != nil {
//	        return err
//	    }
//	    return events.Append(ctx, event)
//	})
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrForeignKey: Referenced record missing or still referenced
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
package database
