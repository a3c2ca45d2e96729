package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/ludobar/gamekeeper/api/internal/middleware"
	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/internal/service"
)

// ReservationHandler handles reservation HTTP requests
type ReservationHandler struct {
	svc *service.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

// Reservation Endpoints

// GetMine handles GET /v1/boardgames/reservations
func (h *ReservationHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	reservations, err := h.svc.GetUserReservations(ctx, access)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, reservations, nil, nil)
}

// GetAll handles GET /v1/boardgames/reservations/all
func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	reservations, err := h.svc.GetAllReservations(ctx, access)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, reservations, nil, nil)
}

// GetForUser handles GET /v1/boardgames/reservations/madefor/{userId}
func (h *ReservationHandler) GetForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	userID := r.PathValue("userId")

	reservations, err := h.svc.GetReservationsForUser(ctx, access, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, reservations, nil, nil)
}

// Get handles GET /v1/boardgames/reservations/{reservationId}
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	reservationID := r.PathValue("reservationId")

	reservation, err := h.svc.GetReservation(ctx, access, reservationID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, reservation, nil)
}

// Create handles POST /v1/boardgames/reservations
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	var req model.CreateReservationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	reservation, err := h.svc.CreateReservation(ctx, access, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, reservation, nil)
}

// CreateFor handles POST /v1/boardgames/reservations/madefor/{userId}
func (h *ReservationHandler) CreateFor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	userID := r.PathValue("userId")

	var req model.CreateReservationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	reservation, err := h.svc.CreateReservationFor(ctx, access, userID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, reservation, nil)
}

// UpdateNote handles PUT /v1/boardgames/reservations/{reservationId}/note
func (h *ReservationHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	reservationID := r.PathValue("reservationId")

	var req model.UpdateReservationNoteRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	reservation, err := h.svc.UpdateNote(ctx, access, reservationID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, reservation, nil)
}

// UpdateNoteInternal handles PUT /v1/boardgames/reservations/{reservationId}/noteinternal
func (h *ReservationHandler) UpdateNoteInternal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	reservationID := r.PathValue("reservationId")

	var req model.UpdateReservationNoteInternalRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	reservation, err := h.svc.UpdateNoteInternal(ctx, access, reservationID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, reservation, nil)
}

// Item Endpoints

// AddItems handles POST /v1/boardgames/reservations/{reservationId}/items
func (h *ReservationHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	reservationID := r.PathValue("reservationId")

	var req model.AddReservationItemsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	reservation, err := h.svc.AddReservationItems(ctx, access, reservationID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, reservation, nil)
}

// GetItems handles GET /v1/boardgames/reservations/{reservationId}/items
func (h *ReservationHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	reservationID := r.PathValue("reservationId")

	items, err := h.svc.GetReservationItems(ctx, access, reservationID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, items, nil, nil)
}

// GetItemEvents handles GET /v1/boardgames/reservations/items/{itemId}/events
func (h *ReservationHandler) GetItemEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	itemID := r.PathValue("itemId")

	events, err := h.svc.GetReservationItemEvents(ctx, access, itemID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, events, nil, nil)
}

// HandOverItem handles POST /v1/boardgames/reservations/items/{itemId}/handover
func (h *ReservationHandler) HandOverItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	itemID := r.PathValue("itemId")

	var req model.TransitionItemRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	item, err := h.svc.HandOverItem(ctx, access, itemID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, item, nil)
}

// ReturnItem handles POST /v1/boardgames/reservations/items/{itemId}/return
func (h *ReservationHandler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	itemID := r.PathValue("itemId")

	var req model.TransitionItemRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	item, err := h.svc.ReturnItem(ctx, access, itemID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, item, nil)
}

// CancelItem handles POST /v1/boardgames/reservations/items/{itemId}/cancel
func (h *ReservationHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	itemID := r.PathValue("itemId")

	var req model.TransitionItemRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	item, err := h.svc.CancelItem(ctx, access, itemID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, item, nil)
}

// ExtendItem handles POST /v1/boardgames/reservations/items/{itemId}/extend
func (h *ReservationHandler) ExtendItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	itemID := r.PathValue("itemId")

	var req model.ExtendItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	item, err := h.svc.ExtendItem(ctx, access, itemID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, item, nil)
}

// handleError converts service errors to HTTP responses
func (h *ReservationHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(err))
}

// decodeOptionalJSON decodes a request body when there is one. Transition
// endpoints accept an empty body; the note is optional.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	err := DecodeJSON(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
