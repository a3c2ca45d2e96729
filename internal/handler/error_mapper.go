package handler

import (
	"errors"

	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// Request validation failures already arrive as ProblemDetails and pass
	// through with their status intact.
	var problem *model.ProblemDetails
	if errors.As(err, &problem) {
		return problem
	}

	// ===== Authentication Errors → 401 =====
	switch {
	case errors.Is(err, service.ErrNotAuthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotABoardGamesManager),
		errors.Is(err, service.ErrNotAStatesManager),
		errors.Is(err, service.ErrNotAnEventsManager),
		errors.Is(err, service.ErrNotAnAdmin),
		errors.Is(err, service.ErrReservationAccessDenied),
		errors.Is(err, service.ErrCannotRevokeOwnAdmin):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrGameNotFound):
		return model.NewNotFoundError("board game")
	case errors.Is(err, service.ErrCategoryNotFound):
		return model.NewNotFoundError("category")
	case errors.Is(err, service.ErrReservationNotFound):
		return model.NewNotFoundError("reservation")
	case errors.Is(err, service.ErrItemNotFound):
		return model.NewNotFoundError("reservation item")
	case errors.Is(err, service.ErrStateNotFound):
		return model.NewNotFoundError("planned state")
	case errors.Is(err, service.ErrRepeatingStateNotFound):
		return model.NewNotFoundError("repeating state")
	case errors.Is(err, service.ErrNoCurrentState):
		return model.NewNotFoundError("current state")
	case errors.Is(err, service.ErrEventNotFound):
		return model.NewNotFoundError("event")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrUsernameAlreadyTaken),
		errors.Is(err, service.ErrCategoryNameExists),
		errors.Is(err, service.ErrSuccessorTaken):
		return model.NewConflictError(err.Error())
	case errors.Is(err, service.ErrCategoryHasGames),
		errors.Is(err, service.ErrGameHasReservations):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	// Reservation items
	case errors.Is(err, service.ErrGameUnavailable):
		return model.NewValidationError([]model.FieldError{{Field: "items", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidItemTransition):
		return model.NewValidationError([]model.FieldError{{Field: "item", Message: err.Error()}})
	case errors.Is(err, service.ErrExpiryNotForward),
		errors.Is(err, service.ErrExpiryTooFar):
		return model.NewValidationError([]model.FieldError{{Field: "expires_on", Message: err.Error()}})
	case errors.Is(err, service.ErrTooManyActiveItems):
		return model.NewValidationError([]model.FieldError{{Field: "limit", Message: err.Error()}})

	// Opening schedule
	case errors.Is(err, service.ErrStateAlreadyStarted),
		errors.Is(err, service.ErrStateAlreadyEnded):
		return model.NewValidationError([]model.FieldError{{Field: "state", Message: err.Error()}})
	case errors.Is(err, service.ErrStateChainCycle):
		return model.NewValidationError([]model.FieldError{{Field: "next_planned_state_id", Message: err.Error()}})

	// Roles
	case errors.Is(err, service.ErrRoleNotGranted):
		return model.NewValidationError([]model.FieldError{{Field: "role", Message: err.Error()}})

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
