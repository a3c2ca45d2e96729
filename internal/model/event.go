package model

import "time"

// Event represents a club event (game night, tournament, open day)
type Event struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Place            *string   `json:"place,omitempty"`
	PlaceURL         *string   `json:"place_url,omitempty"` // Map link
	ImageURL         *string   `json:"image_url,omitempty"`
	ShortDescription *string   `json:"short_description,omitempty"`
	FullDescription  *string   `json:"full_description,omitempty"`
	URL              *string   `json:"url,omitempty"` // External page for the event
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	MadeByID         string    `json:"made_by_id"`
	CreatedOn        time.Time `json:"created_on"`
	UpdatedOn        time.Time `json:"updated_on"`
}

// Constraints
const (
	MaxEventNameLength      = 200
	MaxEventPlaceLength     = 200
	MaxEventShortDescLength = 500
	MaxEventFullDescLength  = 10000
	MaxEventURLLength       = 500
)

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Name             string  `json:"name"`
	Place            *string `json:"place,omitempty"`
	PlaceURL         *string `json:"place_url,omitempty"`
	ImageURL         *string `json:"image_url,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	FullDescription  *string `json:"full_description,omitempty"`
	URL              *string `json:"url,omitempty"`
	From             string  `json:"from"` // RFC3339
	To               string  `json:"to"`   // RFC3339
}

// Validate checks if the create request is valid
func (r *CreateEventRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name == "" {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > MaxEventNameLength {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 200 characters or less"})
	}
	if r.Place != nil && len(*r.Place) > MaxEventPlaceLength {
		errors = append(errors, FieldError{Field: "place", Message: "place must be 200 characters or less"})
	}
	if r.ShortDescription != nil && len(*r.ShortDescription) > MaxEventShortDescLength {
		errors = append(errors, FieldError{Field: "short_description", Message: "short_description must be 500 characters or less"})
	}
	if r.FullDescription != nil && len(*r.FullDescription) > MaxEventFullDescLength {
		errors = append(errors, FieldError{Field: "full_description", Message: "full_description must be 10000 characters or less"})
	}
	from, fromErr := time.Parse(time.RFC3339, r.From)
	if r.From == "" {
		errors = append(errors, FieldError{Field: "from", Message: "from is required"})
	} else if fromErr != nil {
		errors = append(errors, FieldError{Field: "from", Message: "from must be an RFC3339 datetime"})
	}
	to, toErr := time.Parse(time.RFC3339, r.To)
	if r.To == "" {
		errors = append(errors, FieldError{Field: "to", Message: "to is required"})
	} else if toErr != nil {
		errors = append(errors, FieldError{Field: "to", Message: "to must be an RFC3339 datetime"})
	}
	if fromErr == nil && toErr == nil && !to.After(from) {
		errors = append(errors, FieldError{Field: "to", Message: "to must be after from"})
	}

	return errors
}

// UpdateEventRequest represents a partial update to an event
type UpdateEventRequest struct {
	Name             *string `json:"name,omitempty"`
	Place            *string `json:"place,omitempty"`
	PlaceURL         *string `json:"place_url,omitempty"`
	ImageURL         *string `json:"image_url,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	FullDescription  *string `json:"full_description,omitempty"`
	URL              *string `json:"url,omitempty"`
	From             *string `json:"from,omitempty"`
	To               *string `json:"to,omitempty"`
}

// Validate checks if the update request is valid
func (r *UpdateEventRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name != nil {
		if *r.Name == "" {
			errors = append(errors, FieldError{Field: "name", Message: "name cannot be empty"})
		} else if len(*r.Name) > MaxEventNameLength {
			errors = append(errors, FieldError{Field: "name", Message: "name must be 200 characters or less"})
		}
	}
	if r.Place != nil && len(*r.Place) > MaxEventPlaceLength {
		errors = append(errors, FieldError{Field: "place", Message: "place must be 200 characters or less"})
	}
	if r.ShortDescription != nil && len(*r.ShortDescription) > MaxEventShortDescLength {
		errors = append(errors, FieldError{Field: "short_description", Message: "short_description must be 500 characters or less"})
	}
	if r.FullDescription != nil && len(*r.FullDescription) > MaxEventFullDescLength {
		errors = append(errors, FieldError{Field: "full_description", Message: "full_description must be 10000 characters or less"})
	}
	if r.From != nil {
		if _, err := time.Parse(time.RFC3339, *r.From); err != nil {
			errors = append(errors, FieldError{Field: "from", Message: "from must be an RFC3339 datetime"})
		}
	}
	if r.To != nil {
		if _, err := time.Parse(time.RFC3339, *r.To); err != nil {
			errors = append(errors, FieldError{Field: "to", Message: "to must be an RFC3339 datetime"})
		}
	}

	return errors
}
