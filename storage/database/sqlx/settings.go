package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/settings"
)

type settingsRow struct {
	ID             int       `db:"id"`
	GuildID        int64     `db:"guild_id"`
	RoleID         int64     `db:"role_id"`
	TeamSize       int       `db:"team_size"`
	PeerReviewSize int       `db:"peer_review_size"`
	TeamsLocked    bool      `db:"teams_locked"`
	ContactEmail   string    `db:"contact_email"`
	APIKeyHash     []byte    `db:"api_key_hash"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (row settingsRow) toSettings() settings.Settings {
	return settings.Settings{
		ID:             row.ID,
		GuildID:        row.GuildID,
		RoleID:         row.RoleID,
		TeamSize:       row.TeamSize,
		PeerReviewSize: row.PeerReviewSize,
		TeamsLocked:    row.TeamsLocked,
		ContactEmail:   row.ContactEmail,
		APIKeyHash:     row.APIKeyHash,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

type settingsRepository struct {
	db *sqlx.DB
}

var _ settings.Repository = (*settingsRepository)(nil)

func NewSettingsRepository(db *sqlx.DB) *settingsRepository {
	return &settingsRepository{db: db}
}

func (repo settingsRepository) GetSettings(guildID int64) (settings.Settings, error) {
	var row settingsRow
	err := repo.db.Get(&row, "SELECT * FROM settings WHERE guild_id = $1", guildID)
	if err != nil {
		if err == sql.ErrNoRows {
			return settings.Settings{}, settings.ErrNotFound
		}
		return settings.Settings{}, err
	}
	return row.toSettings(), nil
}

func (repo settingsRepository) UpsertSettings(s settings.Settings) (settings.Settings, error) {
	apiKeyHash := s.APIKeyHash
	if apiKeyHash == nil {
		apiKeyHash = []byte{}
	}
	err := repo.db.QueryRowx(
		`INSERT INTO settings (guild_id, role_id, team_size, peer_review_size, teams_locked, contact_email, api_key_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (guild_id) DO UPDATE
		 SET role_id = EXCLUDED.role_id, team_size = EXCLUDED.team_size, peer_review_size = EXCLUDED.peer_review_size,
		     teams_locked = EXCLUDED.teams_locked, contact_email = EXCLUDED.contact_email,
		     api_key_hash = EXCLUDED.api_key_hash, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		s.GuildID, s.RoleID, s.TeamSize, s.PeerReviewSize, s.TeamsLocked, s.ContactEmail, apiKeyHash, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}
