package model

import "time"

// Role represents a capability grant in the club
type Role string

const (
	RoleBoardGamesManager Role = "board_games_manager" // Inventory, categories, reservations
	RoleStatesManager     Role = "states_manager"      // Opening schedule and repeating templates
	RoleEventsManager     Role = "events_manager"      // Club events
	RoleAdmin             Role = "admin"               // Everything, including user management
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleBoardGamesManager, RoleStatesManager, RoleEventsManager, RoleAdmin:
		return true
	}
	return false
}

// AllRoles lists the assignable roles
func AllRoles() []Role {
	return []Role{RoleBoardGamesManager, RoleStatesManager, RoleEventsManager, RoleAdmin}
}

// User represents a club member account
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Hash        string    `json:"-"` // Never expose password hash
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
	// Computed fields
	Roles []Role `json:"roles,omitempty"`
}

// UserRole is one role grant with its audit trail
type UserRole struct {
	UserID       string    `json:"user_id"`
	Role         Role      `json:"role"`
	AssignedByID string    `json:"assigned_by_id"`
	AssignedOn   time.Time `json:"assigned_on"`
}

// Constraints
const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 50
	MinPasswordLength    = 8
	MaxPasswordLength    = 128
	MaxDisplayNameLength = 100
)

// RegisterRequest creates a new member account
type RegisterRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Password    string `json:"password"`
}

// Validate checks if the register request is valid
func (r *RegisterRequest) Validate() []FieldError {
	var errors []FieldError

	if len(r.Username) < MinUsernameLength || len(r.Username) > MaxUsernameLength {
		errors = append(errors, FieldError{Field: "username", Message: "username must be between 3 and 50 characters"})
	} else if !isValidUsername(r.Username) {
		errors = append(errors, FieldError{Field: "username", Message: "username may only contain lowercase letters, digits, '.', '_' and '-'"})
	}
	if len(r.Password) < MinPasswordLength {
		errors = append(errors, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	} else if len(r.Password) > MaxPasswordLength {
		errors = append(errors, FieldError{Field: "password", Message: "password must be 128 characters or less"})
	}
	if len(r.DisplayName) > MaxDisplayNameLength {
		errors = append(errors, FieldError{Field: "display_name", Message: "display_name must be 100 characters or less"})
	}

	return errors
}

// LoginRequest authenticates a member
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid
func (r *LoginRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Username == "" {
		errors = append(errors, FieldError{Field: "username", Message: "username is required"})
	}
	if r.Password == "" {
		errors = append(errors, FieldError{Field: "password", Message: "password is required"})
	}

	return errors
}

// AuthResponse carries a fresh token and the authenticated user
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

func isValidUsername(s string) bool {
	for _, c := range s {
		ok := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '.' || c == '_' || c == '-'
		if !ok {
			return false
		}
	}
	return true
}
