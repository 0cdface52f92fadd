package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Course holds the course information an instructor associates with a guild.
type Course struct {
	ID           int       `json:"id"`
	GuildID      int64     `json:"guild_id"`
	UserID       int64     `json:"user_id"`
	Name         string    `json:"course_name"`
	Abbreviation string    `json:"course_abbreviation"`
	Section      string    `json:"course_section"`
	Semester     string    `json:"semester"`
	CRN          string    `json:"crn"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name         string `json:"course_name" validate:"required,max=100"`
	Abbreviation string `json:"course_abbreviation" validate:"required,max=20"`
	Section      string `json:"course_section" validate:"required,max=20"`
	Semester     string `json:"semester" validate:"required,max=50"`
	CRN          string `json:"crn" validate:"required,max=20"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Abbreviation = core.CleanString(nc.Abbreviation)
	nc.Section = core.CleanString(nc.Section)
	nc.Semester = core.CleanString(nc.Semester)
	nc.CRN = core.CleanString(nc.CRN)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an
// existing Course. Empty fields keep their current value.
type UpdateCourse struct {
	Name         string `json:"course_name" validate:"omitempty,max=100"`
	Abbreviation string `json:"course_abbreviation" validate:"omitempty,max=20"`
	Section      string `json:"course_section" validate:"omitempty,max=20"`
	Semester     string `json:"semester" validate:"omitempty,max=50"`
	CRN          string `json:"crn" validate:"omitempty,max=20"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Abbreviation = core.CleanString(uc.Abbreviation)
	uc.Section = core.CleanString(uc.Section)
	uc.Semester = core.CleanString(uc.Semester)
	uc.CRN = core.CleanString(uc.CRN)
	return validate.Struct(uc)
}
