package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/grade"
)

type gradeRow struct {
	ID         int       `db:"id"`
	GuildID    int64     `db:"guild_id"`
	Assignment string    `db:"assignment"`
	Reviewer   string    `db:"reviewer"`
	Team       string    `db:"team"`
	Points     int       `db:"points"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row gradeRow) toGrade() grade.Grade {
	return grade.Grade{
		ID:         row.ID,
		GuildID:    row.GuildID,
		Assignment: row.Assignment,
		Reviewer:   row.Reviewer,
		Team:       row.Team,
		Points:     row.Points,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) UpsertGrade(g grade.Grade) (grade.Grade, error) {
	err := repo.db.QueryRowx(
		`INSERT INTO grades (guild_id, assignment, reviewer, team, points, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (guild_id, assignment, reviewer, team) DO UPDATE
		 SET points = EXCLUDED.points, updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at`,
		g.GuildID, g.Assignment, g.Reviewer, g.Team, g.Points, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo gradeRepository) GetGrade(guildID int64, assignmentName, reviewer, teamName string) (grade.Grade, error) {
	var row gradeRow
	err := repo.db.Get(
		&row,
		"SELECT * FROM grades WHERE guild_id = $1 AND assignment = $2 AND reviewer = $3 AND team = $4",
		guildID, assignmentName, reviewer, teamName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, err
	}
	return row.toGrade(), nil
}

func (repo gradeRepository) QueryGradesByAssignment(guildID int64, assignmentName string) ([]grade.Grade, error) {
	var rows []gradeRow
	err := repo.db.Select(
		&rows,
		"SELECT * FROM grades WHERE guild_id = $1 AND assignment = $2 ORDER BY team, reviewer",
		guildID, assignmentName,
	)
	if err != nil {
		return nil, err
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.toGrade())
	}
	return grades, nil
}
