package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// DueDateLayout is the input format accepted for due dates, matching what
// instructors type into the gateway's form.
const DueDateLayout = "01/02/2006 15:04"

// Assignment is a gradable unit of work within a guild. PeerReview marks it
// as eligible for team peer review.
type Assignment struct {
	ID            int       `json:"id"`
	GuildID       int64     `json:"guild_id"`
	Name          string    `json:"name"`
	NameLowercase string    `json:"name_lowercase"`
	Points        int       `json:"points"`
	DueDate       time.Time `json:"due_date"` // UTC
	Instructions  string    `json:"instructions"`
	PeerReview    bool      `json:"peer_review"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (a *Assignment) IsOpen(now time.Time) bool {
	return a.DueDate.After(now)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Name         string `json:"name" validate:"required,max=100"`
	Points       int    `json:"points" validate:"min=0"`
	DueDate      string `json:"due_date" validate:"required"`
	Instructions string `json:"instructions" validate:"required"`
	PeerReview   bool   `json:"peer_review"`
}

func (na *NewAssignment) Validate(validate *validator.Validate, svc *Service, guildID int64) (time.Time, error) {
	na.Name = core.CleanString(na.Name)
	na.Instructions = core.CleanString(na.Instructions)

	if err := validate.Struct(na); err != nil {
		return time.Time{}, err
	}
	due, err := ParseDueDate(na.DueDate)
	if err != nil {
		return time.Time{}, err
	}
	return due, svc.checkUniqueness(guildID, na.Name)
}

// UpdateAssignment defines what information may be provided to modify an
// existing Assignment. Empty fields keep their current value.
type UpdateAssignment struct {
	Name         string `json:"name" validate:"omitempty,max=100"`
	Points       *int   `json:"points" validate:"omitempty"`
	DueDate      string `json:"due_date"`
	Instructions string `json:"instructions"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) (time.Time, error) {
	ua.Name = core.CleanString(ua.Name)
	ua.Instructions = core.CleanString(ua.Instructions)

	if err := validate.Struct(ua); err != nil {
		return time.Time{}, err
	}
	if ua.Points != nil && *ua.Points < 0 {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: "points", Error: "points cannot be a negative value"})
	}
	if ua.DueDate != "" {
		return ParseDueDate(ua.DueDate)
	}
	return time.Time{}, nil
}

// ParseDueDate parses the strict MM/DD/YYYY HH:mm input format.
func ParseDueDate(s string) (time.Time, error) {
	due, err := time.Parse(DueDateLayout, core.CleanString(s))
	if err != nil {
		return time.Time{}, core.NewValidationError(
			ErrInvalidDueDate,
			core.FieldError{Field: "due_date", Error: ErrInvalidDueDate.Error()},
		)
	}
	return due.UTC(), nil
}
