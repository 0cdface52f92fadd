package settings

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Settings is the per-guild configuration.
type Settings struct {
	ID             int       `json:"id"`
	GuildID        int64     `json:"guild_id"`
	RoleID         int64     `json:"role_id"`
	TeamSize       int       `json:"team_size"`
	PeerReviewSize int       `json:"peer_review_size"`
	TeamsLocked    bool      `json:"teams_locked"`
	ContactEmail   string    `json:"contact_email"`
	APIKeyHash     []byte    `json:"-"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// UpdateSettings defines what information may be provided to configure a guild.
type UpdateSettings struct {
	RoleID         int64  `json:"role_id" validate:"required,snowflake"`
	TeamSize       int    `json:"team_size" validate:"min=1"`
	PeerReviewSize int    `json:"peer_review_size" validate:"min=1"`
	TeamsLocked    *bool  `json:"teams_locked"`
	ContactEmail   string `json:"contact_email" validate:"omitempty,email"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	us.ContactEmail = core.CleanString(us.ContactEmail, true /* lower */)
	return validate.Struct(us)
}
