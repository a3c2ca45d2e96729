package model

import "time"

// StateKind says whether the club is open or closed during a planned state
type StateKind string

const (
	StateKindOpen   StateKind = "open"
	StateKindClosed StateKind = "closed"
)

// IsValid checks if the kind is a known value
func (k StateKind) IsValid() bool {
	return k == StateKindOpen || k == StateKindClosed
}

// PlannedState is one concrete entry in the club's schedule.
//
// StartedOn and Ended double as action markers: the transition engine sets
// StartedOn when it fires the start action and Ended when the state ends
// (scheduled or manual), so each action fires at most once per state.
type PlannedState struct {
	ID                 string     `json:"id"`
	Kind               StateKind  `json:"kind"`
	Start              time.Time  `json:"start"`
	PlannedEnd         time.Time  `json:"planned_end"`
	Ended              *time.Time `json:"ended,omitempty"`      // Actual end; nil while running or pending
	StartedOn          *time.Time `json:"started_on,omitempty"` // When the start action fired
	MadeByID           string     `json:"made_by_id"`
	NotePublic         *string    `json:"note_public,omitempty"`
	NoteInternal       *string    `json:"note_internal,omitempty"` // Managers only
	NextPlannedStateID *string    `json:"next_planned_state_id,omitempty"`
	RepeatingStateID   *string    `json:"repeating_state_id,omitempty"` // Template that generated this state
	AssociatedEventID  *string    `json:"associated_event_id,omitempty"`
}

// HasStarted reports whether the start action has fired
func (s *PlannedState) HasStarted() bool {
	return s.StartedOn != nil
}

// HasEnded reports whether the state is over
func (s *PlannedState) HasEnded() bool {
	return s.Ended != nil
}

// RepeatingState is a weekly template that generates planned states ahead of time
type RepeatingState struct {
	ID            string     `json:"id"`
	Kind          StateKind  `json:"kind"`
	DayOfWeek     int        `json:"day_of_week"`  // 0 = Sunday, matching time.Weekday
	MinutesFrom   int        `json:"minutes_from"` // Minutes since midnight, club-local time
	MinutesTo     int        `json:"minutes_to"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"` // Nil means open-ended
	MadeByID      string     `json:"made_by_id"`
	NotePublic    *string    `json:"note_public,omitempty"`
	NoteInternal  *string    `json:"note_internal,omitempty"`
	CreatedOn     time.Time  `json:"created_on"`
}

// Constraints
const (
	MaxStateNoteLength        = 1000
	MaxPlannedStateRangeDays  = 120
	RepeatingGenerationWeeks  = 8
	MinutesPerDay             = 24 * 60
	MaxPlannedStateChainDepth = 50
)

// CreatePlannedStateRequest represents a request to schedule a state
type CreatePlannedStateRequest struct {
	Kind               string  `json:"kind"`
	Start              string  `json:"start"`       // RFC3339
	PlannedEnd         string  `json:"planned_end"` // RFC3339
	NotePublic         *string `json:"note_public,omitempty"`
	NoteInternal       *string `json:"note_internal,omitempty"`
	NextPlannedStateID *string `json:"next_planned_state_id,omitempty"`
	AssociatedEventID  *string `json:"associated_event_id,omitempty"`
}

// Validate checks if the create request is valid
func (r *CreatePlannedStateRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Kind == "" {
		errors = append(errors, FieldError{Field: "kind", Message: "kind is required"})
	} else if !StateKind(r.Kind).IsValid() {
		errors = append(errors, FieldError{Field: "kind", Message: "kind must be 'open' or 'closed'"})
	}
	start, startErr := time.Parse(time.RFC3339, r.Start)
	if r.Start == "" {
		errors = append(errors, FieldError{Field: "start", Message: "start is required"})
	} else if startErr != nil {
		errors = append(errors, FieldError{Field: "start", Message: "start must be an RFC3339 datetime"})
	}
	end, endErr := time.Parse(time.RFC3339, r.PlannedEnd)
	if r.PlannedEnd == "" {
		errors = append(errors, FieldError{Field: "planned_end", Message: "planned_end is required"})
	} else if endErr != nil {
		errors = append(errors, FieldError{Field: "planned_end", Message: "planned_end must be an RFC3339 datetime"})
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		errors = append(errors, FieldError{Field: "planned_end", Message: "planned_end must be after start"})
	}
	if r.NotePublic != nil && len(*r.NotePublic) > MaxStateNoteLength {
		errors = append(errors, FieldError{Field: "note_public", Message: "note_public must be 1000 characters or less"})
	}
	if r.NoteInternal != nil && len(*r.NoteInternal) > MaxStateNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 1000 characters or less"})
	}

	return errors
}

// UpdatePlannedStateRequest represents a partial update to a planned state
type UpdatePlannedStateRequest struct {
	Kind               *string `json:"kind,omitempty"`
	Start              *string `json:"start,omitempty"`
	PlannedEnd         *string `json:"planned_end,omitempty"`
	NotePublic         *string `json:"note_public,omitempty"`
	NoteInternal       *string `json:"note_internal,omitempty"`
	NextPlannedStateID *string `json:"next_planned_state_id,omitempty"` // Empty string clears the link
	AssociatedEventID  *string `json:"associated_event_id,omitempty"`   // Empty string clears the link
}

// Validate checks if the update request is valid
func (r *UpdatePlannedStateRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Kind != nil && !StateKind(*r.Kind).IsValid() {
		errors = append(errors, FieldError{Field: "kind", Message: "kind must be 'open' or 'closed'"})
	}
	if r.Start != nil {
		if _, err := time.Parse(time.RFC3339, *r.Start); err != nil {
			errors = append(errors, FieldError{Field: "start", Message: "start must be an RFC3339 datetime"})
		}
	}
	if r.PlannedEnd != nil {
		if _, err := time.Parse(time.RFC3339, *r.PlannedEnd); err != nil {
			errors = append(errors, FieldError{Field: "planned_end", Message: "planned_end must be an RFC3339 datetime"})
		}
	}
	if r.NotePublic != nil && len(*r.NotePublic) > MaxStateNoteLength {
		errors = append(errors, FieldError{Field: "note_public", Message: "note_public must be 1000 characters or less"})
	}
	if r.NoteInternal != nil && len(*r.NoteInternal) > MaxStateNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 1000 characters or less"})
	}

	return errors
}

// CreateRepeatingStateRequest represents a request to create a weekly template
type CreateRepeatingStateRequest struct {
	Kind          string  `json:"kind"`
	DayOfWeek     int     `json:"day_of_week"`
	MinutesFrom   int     `json:"minutes_from"`
	MinutesTo     int     `json:"minutes_to"`
	EffectiveFrom string  `json:"effective_from"`         // RFC3339
	EffectiveTo   *string `json:"effective_to,omitempty"` // RFC3339
	NotePublic    *string `json:"note_public,omitempty"`
	NoteInternal  *string `json:"note_internal,omitempty"`
}

// Validate checks if the create request is valid
func (r *CreateRepeatingStateRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Kind == "" {
		errors = append(errors, FieldError{Field: "kind", Message: "kind is required"})
	} else if !StateKind(r.Kind).IsValid() {
		errors = append(errors, FieldError{Field: "kind", Message: "kind must be 'open' or 'closed'"})
	}
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		errors = append(errors, FieldError{Field: "day_of_week", Message: "day_of_week must be between 0 (Sunday) and 6 (Saturday)"})
	}
	if r.MinutesFrom < 0 || r.MinutesFrom >= MinutesPerDay {
		errors = append(errors, FieldError{Field: "minutes_from", Message: "minutes_from must be between 0 and 1439"})
	}
	if r.MinutesTo <= r.MinutesFrom || r.MinutesTo > MinutesPerDay {
		errors = append(errors, FieldError{Field: "minutes_to", Message: "minutes_to must be after minutes_from and at most 1440"})
	}
	if r.EffectiveFrom == "" {
		errors = append(errors, FieldError{Field: "effective_from", Message: "effective_from is required"})
	} else if _, err := time.Parse(time.RFC3339, r.EffectiveFrom); err != nil {
		errors = append(errors, FieldError{Field: "effective_from", Message: "effective_from must be an RFC3339 datetime"})
	}
	if r.EffectiveTo != nil {
		if _, err := time.Parse(time.RFC3339, *r.EffectiveTo); err != nil {
			errors = append(errors, FieldError{Field: "effective_to", Message: "effective_to must be an RFC3339 datetime"})
		}
	}
	if r.NotePublic != nil && len(*r.NotePublic) > MaxStateNoteLength {
		errors = append(errors, FieldError{Field: "note_public", Message: "note_public must be 1000 characters or less"})
	}
	if r.NoteInternal != nil && len(*r.NoteInternal) > MaxStateNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 1000 characters or less"})
	}

	return errors
}

// UpdateRepeatingStateRequest represents a partial update to a weekly template
type UpdateRepeatingStateRequest struct {
	Kind         *string `json:"kind,omitempty"`
	DayOfWeek    *int    `json:"day_of_week,omitempty"`
	MinutesFrom  *int    `json:"minutes_from,omitempty"`
	MinutesTo    *int    `json:"minutes_to,omitempty"`
	EffectiveTo  *string `json:"effective_to,omitempty"` // Empty string clears the end date
	NotePublic   *string `json:"note_public,omitempty"`
	NoteInternal *string `json:"note_internal,omitempty"`
}

// Validate checks if the update request is valid
func (r *UpdateRepeatingStateRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Kind != nil && !StateKind(*r.Kind).IsValid() {
		errors = append(errors, FieldError{Field: "kind", Message: "kind must be 'open' or 'closed'"})
	}
	if r.DayOfWeek != nil && (*r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
		errors = append(errors, FieldError{Field: "day_of_week", Message: "day_of_week must be between 0 (Sunday) and 6 (Saturday)"})
	}
	if r.MinutesFrom != nil && (*r.MinutesFrom < 0 || *r.MinutesFrom >= MinutesPerDay) {
		errors = append(errors, FieldError{Field: "minutes_from", Message: "minutes_from must be between 0 and 1439"})
	}
	if r.MinutesTo != nil && (*r.MinutesTo < 1 || *r.MinutesTo > MinutesPerDay) {
		errors = append(errors, FieldError{Field: "minutes_to", Message: "minutes_to must be between 1 and 1440"})
	}
	if r.MinutesFrom != nil && r.MinutesTo != nil && *r.MinutesTo <= *r.MinutesFrom {
		errors = append(errors, FieldError{Field: "minutes_to", Message: "minutes_to must be after minutes_from"})
	}
	if r.EffectiveTo != nil && *r.EffectiveTo != "" {
		if _, err := time.Parse(time.RFC3339, *r.EffectiveTo); err != nil {
			errors = append(errors, FieldError{Field: "effective_to", Message: "effective_to must be an RFC3339 datetime"})
		}
	}
	if r.NotePublic != nil && len(*r.NotePublic) > MaxStateNoteLength {
		errors = append(errors, FieldError{Field: "note_public", Message: "note_public must be 1000 characters or less"})
	}
	if r.NoteInternal != nil && len(*r.NoteInternal) > MaxStateNoteLength {
		errors = append(errors, FieldError{Field: "note_internal", Message: "note_internal must be 1000 characters or less"})
	}

	return errors
}

// SetEventStatesRequest replaces the set of planned states linked to an event
type SetEventStatesRequest struct {
	StateIDs []string `json:"state_ids"`
}

// Validate checks if the linkage request is valid
func (r *SetEventStatesRequest) Validate() []FieldError {
	var errors []FieldError

	for _, id := range r.StateIDs {
		if id == "" {
			errors = append(errors, FieldError{Field: "state_ids", Message: "state_ids cannot contain empty ids"})
			break
		}
	}

	return errors
}
