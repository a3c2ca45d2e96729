// Package jobs implements background processing for the GameKeeper API.
//
// The jobs package contains scheduled tasks that run independently of
// HTTP request handling.
//
// # Job Types
//
// Available background jobs:
//
//   - StateTransitionProcessor: Applies due opening-state transitions
//   - ReservationExpiryProcessor: Expires overdue reserved copies
//
// # Lifecycle
//
// Each processor owns its own goroutine and ticker:
//
//	transitions := jobs.NewStateTransitionProcessor(stateService, 30*time.Second)
//	transitions.Start()
//	defer transitions.Stop()
//
// Start is idempotent and Stop blocks until the loop has drained. The
// first run happens shortly after Start, then on every tick.
//
// # Manual Runs
//
// RunOnce executes a single pass synchronously, for tests and admin
// tooling:
//
//	if err := transitions.RunOnce(ctx); err != nil {
//	    log.Printf("transition sweep failed: %v", err)
//	}
//
// # Error Handling
//
// Jobs log errors but don't crash the application. A failed pass is
// simply retried on the next tick.
package jobs
