package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUsernameAlreadyTaken = errors.New("username already taken")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotAuthenticated     = errors.New("authentication required")
)

// ===== Authorization Errors =====
var (
	ErrNotABoardGamesManager   = errors.New("board games manager role required")
	ErrNotAStatesManager       = errors.New("states manager role required")
	ErrNotAnEventsManager      = errors.New("events manager role required")
	ErrNotAnAdmin              = errors.New("admin role required")
	ErrReservationAccessDenied = errors.New("not your reservation")
	ErrCannotRevokeOwnAdmin    = errors.New("cannot revoke your own admin role")
	ErrRoleNotGranted          = errors.New("the user does not hold this role")
)

// ===== Board Game Errors =====
var (
	ErrGameNotFound        = errors.New("board game not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryNameExists  = errors.New("a category with this name already exists")
	ErrCategoryHasGames    = errors.New("category still has board games")
	ErrGameHasReservations = errors.New("board game has reservation history")
)

// ===== Reservation Errors =====
var (
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrItemNotFound          = errors.New("reservation item not found")
	ErrGameUnavailable       = errors.New("no copy of this game is available")
	ErrInvalidItemTransition = errors.New("item state does not allow this transition")
	ErrExpiryNotForward      = errors.New("new expiry must be after the current one")
	ErrExpiryTooFar          = errors.New("expiry too far in the future")
	ErrTooManyActiveItems    = errors.New("too many active reservation items")
)

// ===== Club State Errors =====
var (
	ErrStateNotFound          = errors.New("planned state not found")
	ErrRepeatingStateNotFound = errors.New("repeating state not found")
	ErrNoCurrentState         = errors.New("no state is currently running")
	ErrStateAlreadyStarted    = errors.New("state has already started")
	ErrStateAlreadyEnded      = errors.New("state has already ended")
	ErrStateChainCycle        = errors.New("state chain would form a cycle")
	ErrSuccessorTaken         = errors.New("state is already the successor of another state")
)

// ===== Event Errors =====
var (
	ErrEventNotFound = errors.New("event not found")
)
