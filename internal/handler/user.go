package handler

import (
	"net/http"

	"github.com/ludobar/gamekeeper/api/internal/middleware"
	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/internal/service"
)

// UserHandler handles member administration HTTP requests
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List handles GET /v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	nameFragment := r.URL.Query().Get("name")

	users, err := h.svc.GetUsers(ctx, access, nameFragment)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, users, nil, nil)
}

// Get handles GET /v1/users/{userId}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	userID := r.PathValue("userId")

	user, err := h.svc.GetUser(ctx, access, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// AssignRole handles POST /v1/users/{userId}/roles/{role}
func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	userID := r.PathValue("userId")
	role := model.Role(r.PathValue("role"))

	user, err := h.svc.AssignRole(ctx, access, userID, role)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// RevokeRole handles DELETE /v1/users/{userId}/roles/{role}
func (h *UserHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	userID := r.PathValue("userId")
	role := model.Role(r.PathValue("role"))

	user, err := h.svc.RevokeRole(ctx, access, userID, role)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// GetRoles handles GET /v1/roles
func (h *UserHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	roles, err := h.svc.GetRoles(ctx, access)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, roles, nil, nil)
}

// handleError converts service errors to HTTP responses
func (h *UserHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(err))
}
