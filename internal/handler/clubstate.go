package handler

import (
	"net/http"
	"time"

	"github.com/ludobar/gamekeeper/api/internal/middleware"
	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/internal/service"
)

// ClubStateHandler handles opening schedule HTTP requests
type ClubStateHandler struct {
	svc *service.ClubStateService
}

// NewClubStateHandler creates a new club state handler
func NewClubStateHandler(svc *service.ClubStateService) *ClubStateHandler {
	return &ClubStateHandler{svc: svc}
}

// Planned State Endpoints

// GetCurrent handles GET /v1/states/current
func (h *ClubStateHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	state, err := h.svc.GetCurrentState(ctx, access)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, state, nil)
}

// GetNext handles GET /v1/states/next
func (h *ClubStateHandler) GetNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	state, err := h.svc.GetNextState(ctx, access)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, state, nil)
}

// List handles GET /v1/states
func (h *ClubStateHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	from, to, err := timeRangeParams(r)
	if err != nil {
		WriteError(w, model.NewBadRequestError(err.Error()))
		return
	}

	states, err := h.svc.GetStates(ctx, access, from, to)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, states, nil, nil)
}

// Get handles GET /v1/states/{stateId}
func (h *ClubStateHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	stateID := r.PathValue("stateId")

	state, err := h.svc.GetState(ctx, access, stateID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, state, nil)
}

// Create handles POST /v1/states
func (h *ClubStateHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	var req model.CreatePlannedStateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	state, err := h.svc.CreatePlannedState(ctx, access, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, state, nil)
}

// Update handles PATCH /v1/states/{stateId}
func (h *ClubStateHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	stateID := r.PathValue("stateId")

	var req model.UpdatePlannedStateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	state, err := h.svc.UpdatePlannedState(ctx, access, stateID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, state, nil)
}

// Delete handles DELETE /v1/states/{stateId}
func (h *ClubStateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	stateID := r.PathValue("stateId")

	if err := h.svc.DeletePlannedState(ctx, access, stateID); err != nil {
		h.handleError(w, err)
		return
	}

	WriteNoContent(w)
}

// CloseCurrent handles POST /v1/states/current/close
func (h *ClubStateHandler) CloseCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	state, err := h.svc.CloseCurrentState(ctx, access)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, state, nil)
}

// Repeating State Endpoints

// ListRepeating handles GET /v1/states/repeating
func (h *ClubStateHandler) ListRepeating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	states, err := h.svc.GetRepeatingStates(ctx, access)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, states, nil, nil)
}

// GetRepeating handles GET /v1/states/repeating/{repeatingId}
func (h *ClubStateHandler) GetRepeating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	repeatingID := r.PathValue("repeatingId")

	state, err := h.svc.GetRepeatingState(ctx, access, repeatingID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, state, nil)
}

// CreateRepeating handles POST /v1/states/repeating
func (h *ClubStateHandler) CreateRepeating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	var req model.CreateRepeatingStateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	state, err := h.svc.CreateRepeatingState(ctx, access, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, state, nil)
}

// UpdateRepeating handles PATCH /v1/states/repeating/{repeatingId}
func (h *ClubStateHandler) UpdateRepeating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	repeatingID := r.PathValue("repeatingId")

	var req model.UpdateRepeatingStateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	state, err := h.svc.UpdateRepeatingState(ctx, access, repeatingID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, state, nil)
}

// DeleteRepeating handles DELETE /v1/states/repeating/{repeatingId}
func (h *ClubStateHandler) DeleteRepeating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	repeatingID := r.PathValue("repeatingId")

	if err := h.svc.DeleteRepeatingState(ctx, access, repeatingID); err != nil {
		h.handleError(w, err)
		return
	}

	WriteNoContent(w)
}

// Event Linkage Endpoints

// GetEventStates handles GET /v1/events/{eventId}/states
func (h *ClubStateHandler) GetEventStates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	eventID := r.PathValue("eventId")

	states, err := h.svc.GetStatesForEvent(ctx, access, eventID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, states, nil, nil)
}

// SetEventStates handles PUT /v1/events/{eventId}/states
func (h *ClubStateHandler) SetEventStates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	eventID := r.PathValue("eventId")

	var req model.SetEventStatesRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	states, err := h.svc.SetStatesForEvent(ctx, access, eventID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, states, nil, nil)
}

// ClearEventStates handles DELETE /v1/events/{eventId}/states
func (h *ClubStateHandler) ClearEventStates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	eventID := r.PathValue("eventId")

	if err := h.svc.ClearStatesForEvent(ctx, access, eventID); err != nil {
		h.handleError(w, err)
		return
	}

	WriteNoContent(w)
}

// handleError converts service errors to HTTP responses
func (h *ClubStateHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(err))
}

// timeRangeParams parses optional from/to RFC3339 query parameters. Zero
// times stand for "not given"; services apply their own defaults.
func timeRangeParams(r *http.Request) (from, to time.Time, err error) {
	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
