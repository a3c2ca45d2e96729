package handler

import (
	"net/http"

	"github.com/ludobar/gamekeeper/api/internal/middleware"
	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	auth, err := h.svc.Register(ctx, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, auth, map[string]string{
		"self": "/v1/auth/me",
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	auth, err := h.svc.Login(ctx, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, auth, map[string]string{
		"self": "/v1/auth/me",
	})
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	user, err := h.svc.Me(ctx, access)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, user, map[string]string{
		"self": "/v1/auth/me",
	})
}

// handleError converts service errors to HTTP responses
func (h *AuthHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(err))
}
