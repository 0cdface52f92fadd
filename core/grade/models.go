package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Grade is a score given by a reviewing team to a reviewed team for one
// assignment. Resubmitting overwrites the previous score.
type Grade struct {
	ID         int       `json:"id"`
	GuildID    int64     `json:"guild_id"`
	Assignment string    `json:"assignment"`
	Reviewer   string    `json:"reviewer"`
	Team       string    `json:"team"`
	Points     int       `json:"points"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewGrade contains information needed to record a grade. Reviewer is only
// honored for instructors; everyone else grades as their own team.
type NewGrade struct {
	Assignment string `json:"assignment" validate:"required"`
	Team       string `json:"team" validate:"required"`
	Reviewer   string `json:"reviewer"`
	Points     int    `json:"points" validate:"min=0"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Assignment = core.CleanString(ng.Assignment)
	ng.Team = core.CleanString(ng.Team)
	ng.Reviewer = core.CleanString(ng.Reviewer)
	return validate.Struct(ng)
}
