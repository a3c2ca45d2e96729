package model

import "time"

// ItemState represents the lifecycle stage of a reserved game copy
type ItemState string

const (
	ItemStateReserved  ItemState = "reserved"  // Waiting for pickup
	ItemStateCurrent   ItemState = "current"   // Handed over to the member
	ItemStateDone      ItemState = "done"      // Returned to the shelf
	ItemStateCancelled ItemState = "cancelled" // Cancelled before pickup
	ItemStateExpired   ItemState = "expired"   // Pickup window passed
)

// IsValid checks if the state is a known value
func (s ItemState) IsValid() bool {
	switch s {
	case ItemStateReserved, ItemStateCurrent, ItemStateDone, ItemStateCancelled, ItemStateExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave the state
func (s ItemState) IsTerminal() bool {
	switch s {
	case ItemStateDone, ItemStateCancelled, ItemStateExpired:
		return true
	}
	return false
}

// IsActive reports whether the item still consumes a game copy
func (s ItemState) IsActive() bool {
	return s == ItemStateReserved || s == ItemStateCurrent
}

// ItemEventType identifies what happened to a reserved item
type ItemEventType string

const (
	ItemEventCreated    ItemEventType = "created"
	ItemEventHandedOver ItemEventType = "handed_over"
	ItemEventReturned   ItemEventType = "returned"
	ItemEventCancelled  ItemEventType = "cancelled"
	ItemEventExtended   ItemEventType = "extended"
	ItemEventExpired    ItemEventType = "expired"
)

// Reservation represents one member's reservation of game copies
type Reservation struct {
	ID           string            `json:"id"`
	MadeByID     string            `json:"made_by_id"`
	MadeOn       time.Time         `json:"made_on"`
	NoteUser     *string           `json:"note_user,omitempty"`     // Written by the member
	NoteInternal *string           `json:"note_internal,omitempty"` // Managers only
	Items        []ReservationItem `json:"items,omitempty"`
}

// ReservationItem represents a single game copy inside a reservation
type ReservationItem struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	BoardGameID   string    `json:"board_game_id"`
	ExpiresOn     time.Time `json:"expires_on"`
	State         ItemState `json:"state"`
	// Computed fields
	BoardGameName string `json:"board_game_name,omitempty"`
}

// ReservationItemEvent is one append-only audit row for an item.
// Rows are keyed by (ReservationItemID, MadeOn) and never change once written.
type ReservationItemEvent struct {
	ReservationItemID string        `json:"reservation_item_id"`
	MadeOn            time.Time     `json:"made_on"`
	MadeByID          *string       `json:"made_by_id,omitempty"` // Nil for automatic transitions
	Type              ItemEventType `json:"type"`
	NewState          ItemState     `json:"new_state"`
	NewExpiresOn      *time.Time    `json:"new_expires_on,omitempty"`
	NoteInternal      *string       `json:"note_internal,omitempty"`
}

// Constraints
const (
	MaxItemsPerReservation     = 10
	MaxActiveItemsPerUser      = 20
	MaxReservationNoteLength   = 1000
	MaxExtensionDaysPerRequest = 60
)

// ReservationItemRequest asks for one game copy inside a reservation
type ReservationItemRequest struct {
	BoardGameID string  `json:"board_game_id"`
	ExpiresOn   *string `json:"expires_on,omitempty"` // RFC3339; defaults from the game's default_reservation_days
}

// CreateReservationRequest represents a request to reserve game copies
type CreateReservationRequest struct {
	Items    []ReservationItemRequest `json:"items"`
	NoteUser *string                  `json:"note_user,omitempty"`
}

// Validate checks if the create request is valid
func (r *CreateReservationRequest) Validate() []FieldError {
	var errors []FieldError

	if len(r.Items) == 0 {
		errors = append(errors, FieldError{Field: "items", Message: "at least one item is required"})
	} else if len(r.Items) > MaxItemsPerReservation {
		errors = append(errors, FieldError{Field: "items", Message: "a reservation can hold at most 10 items"})
	}
	for _, item := range r.Items {
		if item.BoardGameID == "" {
			errors = append(errors, FieldError{Field: "items", Message: "board_game_id is required on every item"})
			break
		}
		if item.ExpiresOn != nil {
			if _, err := time.Parse(time.RFC3339, *item.ExpiresOn); err != nil {
				errors = append(errors, FieldError{Field: "items", Message: "expires_on must be an RFC3339 datetime"})
				break
			}
		}
	}
	if r.NoteUser != nil && len(*r.NoteUser) > MaxReservationNoteLength {
		errors = append(errors, FieldError{Field: "note_user", Message: "note_user must be 1000 characters or less"})
	}

	return errors
}

// AddReservationItemsRequest appends items to an existing reservation
type AddReservationItemsRequest struct {
	Items []ReservationItemRequest `json:"items"`
}

// Validate checks if the add request is valid
func (r *AddReservationItemsRequest) Validate() []FieldError {
	var errors []FieldError

	if len(r.Items) == 0 {
		errors = append(errors, FieldError{Field: "items", Message: "at least one item is required"})
	} else if len(r.Items) > MaxItemsPerReservation {
		errors = append(errors, FieldError{Field: "items", Message: "at most 10 items can be added at once"})
	}
	for _, item := range r.Items {
		if item.BoardGameID == "" {
			errors = append(errors, FieldError{Field: "items", Message: "board_game_id is required on every item"})
			break
		}
		if item.ExpiresOn != nil {
			if _, err := time.Parse(time.RFC3339, *item.ExpiresOn); err != nil {
				errors = append(errors, FieldError{Field: "items", Message: "expires_on must be an RFC3339 datetime"})
				break
			}
		}
	}

	return errors
}

// UpdateReservationNoteRequest edits the member-visible note
type UpdateReservationNoteRequest struct {
	NoteUser string `json:"note_user"`
}

// Validate checks if the note update is valid
func (r *UpdateReservationNoteRequest) Validate() []FieldError {
	var errors []FieldError

	if len(r.NoteUser) > MaxReservationNoteLength {
		errors = append(errors, FieldError{Field: "note_user", Message: "note_user must be 1000 characters or less"})
	}

	return errors
}

// UpdateReservationNoteInternalRequest edits the manager-only note
type UpdateReservationNoteInternalRequest struct {
	NoteInternal string `json:"note_internal"`
}

// Validate checks if the internal note update is valid
func (r *UpdateReservationNoteInternalRequest) Validate() []FieldError {
	var errors []FieldError

	if len(r.NoteInternal) > MaxReservationNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 1000 characters or less"})
	}

	return errors
}

// ExtendItemRequest moves an item's expiry forward
type ExtendItemRequest struct {
	NewExpiresOn string  `json:"new_expires_on"` // RFC3339
	NoteInternal *string `json:"note_internal,omitempty"`
}

// Validate checks if the extension request is valid
func (r *ExtendItemRequest) Validate() []FieldError {
	var errors []FieldError

	if r.NewExpiresOn == "" {
		errors = append(errors, FieldError{Field: "new_expires_on", Message: "new_expires_on is required"})
	} else if _, err := time.Parse(time.RFC3339, r.NewExpiresOn); err != nil {
		errors = append(errors, FieldError{Field: "new_expires_on", Message: "new_expires_on must be an RFC3339 datetime"})
	}
	if r.NoteInternal != nil && len(*r.NoteInternal) > MaxReservationNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 1000 characters or less"})
	}

	return errors
}

// TransitionItemRequest carries the optional note for handover, return and cancel
type TransitionItemRequest struct {
	NoteInternal *string `json:"note_internal,omitempty"`
}

// Validate checks if the transition request is valid
func (r *TransitionItemRequest) Validate() []FieldError {
	var errors []FieldError

	if r.NoteInternal != nil && len(*r.NoteInternal) > MaxReservationNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 1000 characters or less"})
	}

	return errors
}
