package team

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Team is a group of guild members collaborating on assignments.
// PeerReview is nil until a peer review distribution has been applied;
// it then holds the names of the teams this team must review.
type Team struct {
	ID            int       `json:"id"`
	GuildID       int64     `json:"guild_id"`
	Name          string    `json:"name"`
	NameLowercase string    `json:"name_lowercase"`
	ChannelID     int64     `json:"channel_id"`
	Members       []int64   `json:"members"`
	PeerReview    []string  `json:"peer_review"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (t *Team) HasMember(userID int64) bool {
	for _, id := range t.Members {
		if id == userID {
			return true
		}
	}
	return false
}

func (t *Team) Reviews(name string) bool {
	for _, n := range t.PeerReview {
		if n == name {
			return true
		}
	}
	return false
}

// NewTeam contains information needed to create a new Team.
type NewTeam struct {
	Name      string `json:"name" validate:"required,max=100,alphanum_"`
	ChannelID int64  `json:"channel_id"`
}

func (nt *NewTeam) Validate(validate *validator.Validate, svc *Service, guildID int64) error {
	nt.Name = core.CleanString(nt.Name)

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return svc.checkUniqueness(guildID, nt.Name)
}

// RenameTeam defines what information may be provided to rename an existing Team.
type RenameTeam struct {
	Name string `json:"name" validate:"required,max=100,alphanum_"`
}

func (rt *RenameTeam) Validate(validate *validator.Validate, svc *Service, guildID int64) error {
	rt.Name = core.CleanString(rt.Name)

	if err := validate.Struct(rt); err != nil {
		return err
	}
	return svc.checkUniqueness(guildID, rt.Name)
}
