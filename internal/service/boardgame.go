package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ludobar/gamekeeper/api/internal/clock"
	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/model"
)

// BoardGameRepository defines the interface for board game storage
type BoardGameRepository interface {
	Create(ctx context.Context, game *model.BoardGame) error
	GetByID(ctx context.Context, id string) (*model.BoardGame, error)
	List(ctx context.Context, filter model.BoardGameFilter, visibleOnly bool) ([]*model.BoardGame, error)
	Update(ctx context.Context, game *model.BoardGame) error
	UpdateStock(ctx context.Context, id string, inStock, unavailable int, updatedOn time.Time) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category storage
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
	CountGames(ctx context.Context, id string) (int, error)
}

// ActiveItemCounter reports how many copies per game active reservation
// items currently consume
type ActiveItemCounter interface {
	ActiveItemCounts(ctx context.Context, boardGameIDs []string) (map[string]int, error)
}

// BoardGameService handles the lending inventory and its categories
type BoardGameService struct {
	repo         BoardGameRepository
	categoryRepo CategoryRepository
	itemCounter  ActiveItemCounter
	clock        clock.Clock
}

// BoardGameServiceConfig holds configuration for the board game service
type BoardGameServiceConfig struct {
	BoardGameRepo BoardGameRepository
	CategoryRepo  CategoryRepository
	ItemCounter   ActiveItemCounter
	Clock         clock.Clock
}

// NewBoardGameService creates a new board game service
func NewBoardGameService(cfg BoardGameServiceConfig) *BoardGameService {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &BoardGameService{
		repo:         cfg.BoardGameRepo,
		categoryRepo: cfg.CategoryRepo,
		itemCounter:  cfg.ItemCounter,
		clock:        clk,
	}
}

// List retrieves the catalogue with per-game availability. Non-managers see
// only visible games and no internal notes.
func (s *BoardGameService) List(ctx context.Context, access model.Access, filter model.BoardGameFilter) ([]*model.BoardGame, error) {
	manager := access.CanManageBoardGames()

	games, err := s.repo.List(ctx, filter, !manager)
	if err != nil {
		return nil, fmt.Errorf("failed to list board games: %w", err)
	}

	if err := s.attachAvailability(ctx, games); err != nil {
		return nil, err
	}
	if !manager {
		for _, game := range games {
			game.NoteInternal = nil
		}
	}
	return games, nil
}

// Get retrieves one game. Invisible games are manager-only: anonymous
// callers are asked to authenticate, authenticated non-managers are denied.
func (s *BoardGameService) Get(ctx context.Context, access model.Access, id string) (*model.BoardGame, error) {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get board game: %w", err)
	}

	manager := access.CanManageBoardGames()
	if !game.Visible && !manager {
		if !access.IsAuthenticated() {
			return nil, ErrNotAuthenticated
		}
		return nil, ErrNotABoardGamesManager
	}

	if err := s.attachAvailability(ctx, []*model.BoardGame{game}); err != nil {
		return nil, err
	}
	if !manager {
		game.NoteInternal = nil
	}
	return game, nil
}

// Create adds a game to the inventory
func (s *BoardGameService) Create(ctx context.Context, access model.Access, req *model.CreateBoardGameRequest) (*model.BoardGame, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to check category: %w", err)
	}

	now := s.clock.Now()
	game := &model.BoardGame{
		ID:                     uuid.NewString(),
		Name:                   req.Name,
		Description:            req.Description,
		ImageURL:               req.ImageURL,
		PlayersMin:             req.PlayersMin,
		PlayersMax:             req.PlayersMax,
		CategoryID:             req.CategoryID,
		OwnerID:                req.OwnerID,
		NoteInternal:           req.NoteInternal,
		InStock:                req.InStock,
		Unavailable:            req.Unavailable,
		Visible:                true,
		DefaultReservationDays: model.DefaultReservationDays,
		CreatedOn:              now,
		UpdatedOn:              now,
	}
	if req.Visible != nil {
		game.Visible = *req.Visible
	}
	if req.DefaultReservationDays != nil {
		game.DefaultReservationDays = *req.DefaultReservationDays
	}

	if err := s.repo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create board game: %w", err)
	}
	return game, nil
}

// Update applies a partial update to a game
func (s *BoardGameService) Update(ctx context.Context, access model.Access, id string, req *model.UpdateBoardGameRequest) (*model.BoardGame, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get board game: %w", err)
	}

	if req.CategoryID != nil && *req.CategoryID != game.CategoryID {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		game.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		game.Name = *req.Name
	}
	if req.Description != nil {
		game.Description = req.Description
	}
	if req.ImageURL != nil {
		game.ImageURL = req.ImageURL
	}
	if req.PlayersMin != nil {
		game.PlayersMin = *req.PlayersMin
	}
	if req.PlayersMax != nil {
		game.PlayersMax = *req.PlayersMax
	}
	if req.OwnerID != nil {
		// Empty string clears the owner link
		if *req.OwnerID == "" {
			game.OwnerID = nil
		} else {
			game.OwnerID = req.OwnerID
		}
	}
	if req.NoteInternal != nil {
		game.NoteInternal = req.NoteInternal
	}
	if req.Visible != nil {
		game.Visible = *req.Visible
	}
	if req.DefaultReservationDays != nil {
		game.DefaultReservationDays = *req.DefaultReservationDays
	}
	if game.PlayersMax < game.PlayersMin {
		return nil, model.NewBadRequestError("players_max must be greater than or equal to players_min")
	}
	game.UpdatedOn = s.clock.Now()

	if err := s.repo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update board game: %w", err)
	}
	return game, nil
}

// UpdateStock sets both stock counters atomically
func (s *BoardGameService) UpdateStock(ctx context.Context, access model.Access, id string, req *model.UpdateStockRequest) (*model.BoardGame, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	if err := s.repo.UpdateStock(ctx, id, req.InStock, req.Unavailable, s.clock.Now()); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	return s.Get(ctx, access, id)
}

// Delete removes a game from the inventory. Games with reservation history
// are kept for the audit trail; hide them instead.
func (s *BoardGameService) Delete(ctx context.Context, access model.Access, id string) error {
	if !access.CanManageBoardGames() {
		return ErrNotABoardGamesManager
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return ErrGameNotFound
		case errors.Is(err, database.ErrForeignKey):
			return ErrGameHasReservations
		}
		return fmt.Errorf("failed to delete board game: %w", err)
	}
	return nil
}

// Categories

// GetCategories retrieves all categories with game counts
func (s *BoardGameService) GetCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a catalogue category
func (s *BoardGameService) CreateCategory(ctx context.Context, access model.Access, req *model.CreateCategoryRequest) (*model.Category, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	category := &model.Category{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Colour: req.Colour,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrCategoryNameExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory applies a partial update to a category
func (s *BoardGameService) UpdateCategory(ctx context.Context, access model.Access, id string, req *model.UpdateCategoryRequest) (*model.Category, error) {
	if !access.CanManageBoardGames() {
		return nil, ErrNotABoardGamesManager
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Colour != nil {
		category.Colour = *req.Colour
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrCategoryNameExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category that no game references
func (s *BoardGameService) DeleteCategory(ctx context.Context, access model.Access, id string) error {
	if !access.CanManageBoardGames() {
		return ErrNotABoardGamesManager
	}

	count, err := s.categoryRepo.CountGames(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count games in category: %w", err)
	}
	if count > 0 {
		return ErrCategoryHasGames
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, database.ErrForeignKey):
			// Raced with a game creation since the count
			return ErrCategoryHasGames
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *BoardGameService) attachAvailability(ctx context.Context, games []*model.BoardGame) error {
	if len(games) == 0 {
		return nil
	}

	ids := make([]string, 0, len(games))
	for _, game := range games {
		ids = append(ids, game.ID)
	}
	counts, err := s.itemCounter.ActiveItemCounts(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to count active items: %w", err)
	}

	for _, game := range games {
		available := game.InStock - game.Unavailable - counts[game.ID]
		if available < 0 {
			available = 0
		}
		game.Available = &available
	}
	return nil
}
