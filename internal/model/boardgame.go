package model

import "time"

// BoardGame represents a game in the club's lending inventory
type BoardGame struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Description            *string   `json:"description,omitempty"`
	ImageURL               *string   `json:"image_url,omitempty"`
	PlayersMin             int       `json:"players_min"`
	PlayersMax             int       `json:"players_max"`
	CategoryID             string    `json:"category_id"`
	OwnerID                *string   `json:"owner_id,omitempty"`      // Member who lent the copy to the club
	NoteInternal           *string   `json:"note_internal,omitempty"` // Managers only
	InStock                int       `json:"in_stock"`
	Unavailable            int       `json:"unavailable"` // Broken or lost copies still counted in stock
	Visible                bool      `json:"visible"`
	DefaultReservationDays int       `json:"default_reservation_days"`
	CreatedOn              time.Time `json:"created_on"`
	UpdatedOn              time.Time `json:"updated_on"`
	// Computed fields
	Available *int `json:"available,omitempty"` // in_stock - unavailable - active reservation items
}

// Category groups board games in the catalogue
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Colour string `json:"colour"` // Hex colour for the catalogue UI, e.g. "#1d7a4f"
	// Computed fields
	GameCount int `json:"game_count,omitempty"`
}

// BoardGameFilter narrows a catalogue listing
type BoardGameFilter struct {
	CategoryID *string
	Name       *string // Case-insensitive fragment
	Players    *int    // Games playable with this many players
}

// Constraints
const (
	MaxGameNameLength        = 200
	MaxGameDescriptionLength = 5000
	MaxNoteLength            = 2000
	MaxCategoryNameLength    = 100
	MaxStockPerGame          = 500
	DefaultReservationDays   = 14
	MaxReservationDays       = 120
)

// CreateBoardGameRequest represents a request to add a game to the inventory
type CreateBoardGameRequest struct {
	Name                   string  `json:"name"`
	Description            *string `json:"description,omitempty"`
	ImageURL               *string `json:"image_url,omitempty"`
	PlayersMin             int     `json:"players_min"`
	PlayersMax             int     `json:"players_max"`
	CategoryID             string  `json:"category_id"`
	OwnerID                *string `json:"owner_id,omitempty"`
	NoteInternal           *string `json:"note_internal,omitempty"`
	InStock                int     `json:"in_stock"`
	Unavailable            int     `json:"unavailable,omitempty"`
	Visible                *bool   `json:"visible,omitempty"`                  // Defaults to true
	DefaultReservationDays *int    `json:"default_reservation_days,omitempty"` // Defaults to 14
}

// Validate checks if the create request is valid
func (r *CreateBoardGameRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name == "" {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > MaxGameNameLength {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 200 characters or less"})
	}
	if r.Description != nil && len(*r.Description) > MaxGameDescriptionLength {
		errors = append(errors, FieldError{Field: "description", Message: "description must be 5000 characters or less"})
	}
	if r.CategoryID == "" {
		errors = append(errors, FieldError{Field: "category_id", Message: "category_id is required"})
	}
	if r.PlayersMin < 1 {
		errors = append(errors, FieldError{Field: "players_min", Message: "players_min must be at least 1"})
	}
	if r.PlayersMax < r.PlayersMin {
		errors = append(errors, FieldError{Field: "players_max", Message: "players_max must be greater than or equal to players_min"})
	}
	if r.InStock < 0 || r.InStock > MaxStockPerGame {
		errors = append(errors, FieldError{Field: "in_stock", Message: "in_stock must be between 0 and 500"})
	}
	if r.Unavailable < 0 || r.Unavailable > r.InStock {
		errors = append(errors, FieldError{Field: "unavailable", Message: "unavailable must be between 0 and in_stock"})
	}
	if r.NoteInternal != nil && len(*r.NoteInternal) > MaxNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 2000 characters or less"})
	}
	if r.DefaultReservationDays != nil && (*r.DefaultReservationDays < 1 || *r.DefaultReservationDays > MaxReservationDays) {
		errors = append(errors, FieldError{Field: "default_reservation_days", Message: "default_reservation_days must be between 1 and 120"})
	}

	return errors
}

// UpdateBoardGameRequest represents a partial update to a game
type UpdateBoardGameRequest struct {
	Name                   *string `json:"name,omitempty"`
	Description            *string `json:"description,omitempty"`
	ImageURL               *string `json:"image_url,omitempty"`
	PlayersMin             *int    `json:"players_min,omitempty"`
	PlayersMax             *int    `json:"players_max,omitempty"`
	CategoryID             *string `json:"category_id,omitempty"`
	OwnerID                *string `json:"owner_id,omitempty"`
	NoteInternal           *string `json:"note_internal,omitempty"`
	Visible                *bool   `json:"visible,omitempty"`
	DefaultReservationDays *int    `json:"default_reservation_days,omitempty"`
}

// Validate checks if the update request is valid
func (r *UpdateBoardGameRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name != nil {
		if *r.Name == "" {
			errors = append(errors, FieldError{Field: "name", Message: "name cannot be empty"})
		} else if len(*r.Name) > MaxGameNameLength {
			errors = append(errors, FieldError{Field: "name", Message: "name must be 200 characters or less"})
		}
	}
	if r.Description != nil && len(*r.Description) > MaxGameDescriptionLength {
		errors = append(errors, FieldError{Field: "description", Message: "description must be 5000 characters or less"})
	}
	if r.CategoryID != nil && *r.CategoryID == "" {
		errors = append(errors, FieldError{Field: "category_id", Message: "category_id cannot be empty"})
	}
	if r.PlayersMin != nil && *r.PlayersMin < 1 {
		errors = append(errors, FieldError{Field: "players_min", Message: "players_min must be at least 1"})
	}
	if r.PlayersMin != nil && r.PlayersMax != nil && *r.PlayersMax < *r.PlayersMin {
		errors = append(errors, FieldError{Field: "players_max", Message: "players_max must be greater than or equal to players_min"})
	}
	if r.NoteInternal != nil && len(*r.NoteInternal) > MaxNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 2000 characters or less"})
	}
	if r.DefaultReservationDays != nil && (*r.DefaultReservationDays < 1 || *r.DefaultReservationDays > MaxReservationDays) {
		errors = append(errors, FieldError{Field: "default_reservation_days", Message: "default_reservation_days must be between 1 and 120"})
	}

	return errors
}

// UpdateStockRequest sets both stock counters atomically
type UpdateStockRequest struct {
	InStock     int `json:"in_stock"`
	Unavailable int `json:"unavailable"`
}

// Validate checks if the stock update is valid
func (r *UpdateStockRequest) Validate() []FieldError {
	var errors []FieldError

	if r.InStock < 0 || r.InStock > MaxStockPerGame {
		errors = append(errors, FieldError{Field: "in_stock", Message: "in_stock must be between 0 and 500"})
	}
	if r.Unavailable < 0 || r.Unavailable > r.InStock {
		errors = append(errors, FieldError{Field: "unavailable", Message: "unavailable must be between 0 and in_stock"})
	}

	return errors
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name   string `json:"name"`
	Colour string `json:"colour"`
}

// Validate checks if the create request is valid
func (r *CreateCategoryRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name == "" {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > MaxCategoryNameLength {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 100 characters or less"})
	}
	if r.Colour != "" && !isHexColour(r.Colour) {
		errors = append(errors, FieldError{Field: "colour", Message: "colour must be a hex colour like #1d7a4f"})
	}

	return errors
}

// UpdateCategoryRequest represents a partial update to a category
type UpdateCategoryRequest struct {
	Name   *string `json:"name,omitempty"`
	Colour *string `json:"colour,omitempty"`
}

// Validate checks if the update request is valid
func (r *UpdateCategoryRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name != nil {
		if *r.Name == "" {
			errors = append(errors, FieldError{Field: "name", Message: "name cannot be empty"})
		} else if len(*r.Name) > MaxCategoryNameLength {
			errors = append(errors, FieldError{Field: "name", Message: "name must be 100 characters or less"})
		}
	}
	if r.Colour != nil && *r.Colour != "" && !isHexColour(*r.Colour) {
		errors = append(errors, FieldError{Field: "colour", Message: "colour must be a hex colour like #1d7a4f"})
	}

	return errors
}

func isHexColour(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		ok := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !ok {
			return false
		}
	}
	return true
}
