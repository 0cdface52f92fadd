package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
)

type (
	// TokenRequest is the gateway's credential exchange payload.
	TokenRequest struct {
		GuildID    int64    `json:"guild_id" validate:"required,snowflake"`
		UserID     int64    `json:"user_id" validate:"required,snowflake"`
		APIKey     string   `json:"api_key" validate:"required"`
		Instructor bool     `json:"instructor"`
		Roles      []string `json:"roles"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	// DistributionResponse is returned when a distribution is computed; the
	// token must be echoed back to confirm or cancel it.
	DistributionResponse struct {
		Token   uuid.UUID `json:"token"`
		Preview string    `json:"preview"`
	}

	// DistributionTokenRequest references a pending distribution.
	DistributionTokenRequest struct {
		Token string `json:"token" validate:"required,uuid4"`
	}

	ConfirmDistributionResponse struct {
		Applied int    `json:"applied"`
		Preview string `json:"preview"`
	}

	// PeerReviewToggleRequest switches an assignment's peer review
	// eligibility on or off.
	PeerReviewToggleRequest struct {
		PeerReview *bool `json:"peer_review" validate:"required"`
	}
)

func (tr *TokenRequest) Validate(validate *validator.Validate) error {
	tr.APIKey = core.CleanString(tr.APIKey)
	return validate.Struct(tr)
}

func (dr *DistributionTokenRequest) Validate(validate *validator.Validate) error {
	dr.Token = core.CleanString(dr.Token, true /* lower */)
	return validate.Struct(dr)
}

func (pr *PeerReviewToggleRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(pr)
}
