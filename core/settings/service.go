package settings

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// errors
	ErrNotFound      = errors.New("no instructor role was found; assign a role with the instructor permission first")
	ErrInvalidAPIKey = errors.New("invalid API key")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetSettings(guildID int64) (Settings, error)
		UpsertSettings(s Settings) (Settings, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(guildID int64) (Settings, error) {
	return svc.repo.GetSettings(guildID)
}

func (svc *Service) Update(guildID int64, us UpdateSettings) (Settings, error) {
	s, err := svc.repo.GetSettings(guildID)
	if err != nil && err != ErrNotFound {
		return Settings{}, err
	}

	now := nowFunc().UTC()
	if err == ErrNotFound {
		s = Settings{GuildID: guildID, CreatedAt: now}
	}
	s.RoleID = us.RoleID
	s.TeamSize = us.TeamSize
	s.PeerReviewSize = us.PeerReviewSize
	if us.TeamsLocked != nil {
		s.TeamsLocked = *us.TeamsLocked
	}
	s.ContactEmail = us.ContactEmail
	s.UpdatedAt = now
	return svc.repo.UpsertSettings(s)
}

// SetAPIKey stores a bcrypt hash of the guild's gateway API key, creating
// the guild's settings when they do not exist yet.
func (svc *Service) SetAPIKey(guildID int64, key string) error {
	s, err := svc.repo.GetSettings(guildID)
	if err != nil && err != ErrNotFound {
		return err
	}
	if err == ErrNotFound {
		s = Settings{GuildID: guildID, CreatedAt: nowFunc().UTC()}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.APIKeyHash = hash
	s.UpdatedAt = nowFunc().UTC()
	_, err = svc.repo.UpsertSettings(s)
	return err
}

// CheckAPIKey verifies the given key against the guild's stored hash.
func (svc *Service) CheckAPIKey(guildID int64, key string) error {
	s, err := svc.repo.GetSettings(guildID)
	if err != nil {
		return err
	}
	if len(s.APIKeyHash) == 0 {
		return ErrInvalidAPIKey
	}
	if err = bcrypt.CompareHashAndPassword(s.APIKeyHash, []byte(key)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}
