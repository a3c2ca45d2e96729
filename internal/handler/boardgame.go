package handler

import (
	"net/http"
	"strconv"

	"github.com/ludobar/gamekeeper/api/internal/middleware"
	"github.com/ludobar/gamekeeper/api/internal/model"
	"github.com/ludobar/gamekeeper/api/internal/service"
)

// BoardGameHandler handles board game and category HTTP requests
type BoardGameHandler struct {
	svc *service.BoardGameService
}

// NewBoardGameHandler creates a new board game handler
func NewBoardGameHandler(svc *service.BoardGameService) *BoardGameHandler {
	return &BoardGameHandler{svc: svc}
}

// Game Endpoints

// List handles GET /v1/boardgames
func (h *BoardGameHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	games, err := h.svc.List(ctx, access, gameFilterParams(r))
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, games, nil, nil)
}

// Get handles GET /v1/boardgames/{gameId}
func (h *BoardGameHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	gameID := r.PathValue("gameId")

	game, err := h.svc.Get(ctx, access, gameID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, game, nil)
}

// Create handles POST /v1/boardgames
func (h *BoardGameHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	var req model.CreateBoardGameRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	game, err := h.svc.Create(ctx, access, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, game, nil)
}

// Update handles PATCH /v1/boardgames/{gameId}
func (h *BoardGameHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	gameID := r.PathValue("gameId")

	var req model.UpdateBoardGameRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	game, err := h.svc.Update(ctx, access, gameID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, game, nil)
}

// UpdateStock handles PUT /v1/boardgames/{gameId}/stock
func (h *BoardGameHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	gameID := r.PathValue("gameId")

	var req model.UpdateStockRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	game, err := h.svc.UpdateStock(ctx, access, gameID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, game, nil)
}

// Delete handles DELETE /v1/boardgames/{gameId}
func (h *BoardGameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	gameID := r.PathValue("gameId")

	if err := h.svc.Delete(ctx, access, gameID); err != nil {
		h.handleError(w, err)
		return
	}

	WriteNoContent(w)
}

// Category Endpoints

// GetCategories handles GET /v1/boardgames/categories
func (h *BoardGameHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.svc.GetCategories(ctx)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteCollection(w, http.StatusOK, categories, nil, nil)
}

// CreateCategory handles POST /v1/boardgames/categories
func (h *BoardGameHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)

	var req model.CreateCategoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	category, err := h.svc.CreateCategory(ctx, access, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, category, nil)
}

// UpdateCategory handles PATCH /v1/boardgames/categories/{categoryId}
func (h *BoardGameHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	categoryID := r.PathValue("categoryId")

	var req model.UpdateCategoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	category, err := h.svc.UpdateCategory(ctx, access, categoryID, &req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteData(w, http.StatusOK, category, nil)
}

// DeleteCategory handles DELETE /v1/boardgames/categories/{categoryId}
func (h *BoardGameHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := middleware.GetAccess(ctx)
	categoryID := r.PathValue("categoryId")

	if err := h.svc.DeleteCategory(ctx, access, categoryID); err != nil {
		h.handleError(w, err)
		return
	}

	WriteNoContent(w)
}

// handleError converts service errors to HTTP responses
func (h *BoardGameHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(err))
}

// gameFilterParams extracts catalogue filters from the query string
func gameFilterParams(r *http.Request) model.BoardGameFilter {
	var filter model.BoardGameFilter

	if v := r.URL.Query().Get("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := r.URL.Query().Get("name"); v != "" {
		filter.Name = &v
	}
	if v := r.URL.Query().Get("players"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			filter.Players = &parsed
		}
	}

	return filter
}
