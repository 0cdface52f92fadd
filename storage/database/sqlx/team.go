package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/darasa/core/team"
)

type teamRow struct {
	ID            int            `db:"id"`
	GuildID       int64          `db:"guild_id"`
	Name          string         `db:"name"`
	NameLowercase string         `db:"name_lowercase"`
	ChannelID     int64          `db:"channel_id"`
	Members       pq.Int64Array  `db:"members"`
	PeerReview    pq.StringArray `db:"peer_review"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (row teamRow) toTeam() team.Team {
	return team.Team{
		ID:            row.ID,
		GuildID:       row.GuildID,
		Name:          row.Name,
		NameLowercase: row.NameLowercase,
		ChannelID:     row.ChannelID,
		Members:       row.Members,
		PeerReview:    row.PeerReview,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

type teamRepository struct {
	db *sqlx.DB
}

var _ team.Repository = (*teamRepository)(nil)

func NewTeamRepository(db *sqlx.DB) *teamRepository {
	return &teamRepository{db: db}
}

func (repo teamRepository) CheckNameUniqueness(guildID int64, nameLowercase string) error {
	var exists bool
	err := repo.db.Get(
		&exists,
		"SELECT EXISTS(SELECT 1 FROM teams WHERE guild_id = $1 AND name_lowercase = $2)",
		guildID, nameLowercase,
	)
	if err != nil {
		return err
	}
	if exists {
		return team.ErrTeamExists
	}
	return nil
}

func (repo teamRepository) CreateTeam(t team.Team) (team.Team, error) {
	err := repo.db.QueryRowx(
		`INSERT INTO teams (guild_id, name, name_lowercase, channel_id, members, peer_review, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		t.GuildID, t.Name, t.NameLowercase, t.ChannelID,
		pq.Array(t.Members), pq.Array(t.PeerReview), t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return team.Team{}, err
	}
	return t, nil
}

func (repo teamRepository) QueryAllTeams(guildID int64) ([]team.Team, error) {
	var rows []teamRow
	err := repo.db.Select(&rows, "SELECT * FROM teams WHERE guild_id = $1 ORDER BY id", guildID)
	if err != nil {
		return nil, err
	}
	teams := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, row.toTeam())
	}
	return teams, nil
}

func (repo teamRepository) GetTeamByName(guildID int64, nameLowercase string) (team.Team, error) {
	var row teamRow
	err := repo.db.Get(&row, "SELECT * FROM teams WHERE guild_id = $1 AND name_lowercase = $2", guildID, nameLowercase)
	if err != nil {
		if err == sql.ErrNoRows {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, err
	}
	return row.toTeam(), nil
}

func (repo teamRepository) GetTeamByMember(guildID, userID int64) (team.Team, error) {
	var row teamRow
	err := repo.db.Get(&row, "SELECT * FROM teams WHERE guild_id = $1 AND $2 = ANY(members)", guildID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, err
	}
	return row.toTeam(), nil
}

func (repo teamRepository) UpdateTeam(t team.Team) (team.Team, error) {
	res, err := repo.db.Exec(
		`UPDATE teams
		 SET name = $1, name_lowercase = $2, channel_id = $3, members = $4, peer_review = $5, updated_at = $6
		 WHERE id = $7`,
		t.Name, t.NameLowercase, t.ChannelID, pq.Array(t.Members), pq.Array(t.PeerReview), t.UpdatedAt, t.ID,
	)
	if err != nil {
		return team.Team{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return team.Team{}, team.ErrNotFound
	}
	return t, nil
}

func (repo teamRepository) SetPeerReview(guildID int64, nameLowercase string, reviews []string) error {
	res, err := repo.db.Exec(
		"UPDATE teams SET peer_review = $1, updated_at = NOW() WHERE guild_id = $2 AND name_lowercase = $3",
		pq.Array(reviews), guildID, nameLowercase,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return team.ErrNotFound
	}
	return nil
}

func (repo teamRepository) RenamePeerReviewRefs(guildID int64, oldName, newName string) error {
	_, err := repo.db.Exec(
		`UPDATE teams
		 SET peer_review = ARRAY_REPLACE(peer_review, $1, $2), updated_at = NOW()
		 WHERE guild_id = $3 AND $1 = ANY(peer_review)`,
		oldName, newName, guildID,
	)
	return err
}

func (repo teamRepository) RemovePeerReviewRefs(guildID int64, name string) error {
	_, err := repo.db.Exec(
		`UPDATE teams
		 SET peer_review = ARRAY_REMOVE(peer_review, $1), updated_at = NOW()
		 WHERE guild_id = $2 AND $1 = ANY(peer_review)`,
		name, guildID,
	)
	return err
}

func (repo teamRepository) DeleteTeam(guildID int64, nameLowercase string) error {
	_, err := repo.db.Exec("DELETE FROM teams WHERE guild_id = $1 AND name_lowercase = $2", guildID, nameLowercase)
	return err
}
