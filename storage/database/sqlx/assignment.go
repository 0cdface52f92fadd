package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRow struct {
	ID            int       `db:"id"`
	GuildID       int64     `db:"guild_id"`
	Name          string    `db:"name"`
	NameLowercase string    `db:"name_lowercase"`
	Points        int       `db:"points"`
	DueDate       time.Time `db:"due_date"`
	Instructions  string    `db:"instructions"`
	PeerReview    bool      `db:"peer_review"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:            row.ID,
		GuildID:       row.GuildID,
		Name:          row.Name,
		NameLowercase: row.NameLowercase,
		Points:        row.Points,
		DueDate:       row.DueDate,
		Instructions:  row.Instructions,
		PeerReview:    row.PeerReview,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) CheckNameUniqueness(guildID int64, nameLowercase string) error {
	var exists bool
	err := repo.db.Get(
		&exists,
		"SELECT EXISTS(SELECT 1 FROM assignments WHERE guild_id = $1 AND name_lowercase = $2)",
		guildID, nameLowercase,
	)
	if err != nil {
		return err
	}
	if exists {
		return assignment.ErrAssignmentExists
	}
	return nil
}

func (repo assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	err := repo.db.QueryRowx(
		`INSERT INTO assignments (guild_id, name, name_lowercase, points, due_date, instructions, peer_review, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.GuildID, a.Name, a.NameLowercase, a.Points, a.DueDate, a.Instructions, a.PeerReview, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return assignment.Assignment{}, err
	}
	return a, nil
}

func (repo assignmentRepository) QueryAllAssignments(guildID int64) ([]assignment.Assignment, error) {
	var rows []assignmentRow
	err := repo.db.Select(&rows, "SELECT * FROM assignments WHERE guild_id = $1 ORDER BY name_lowercase", guildID)
	if err != nil {
		return nil, err
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.toAssignment())
	}
	return assignments, nil
}

func (repo assignmentRepository) GetAssignmentByName(guildID int64, nameLowercase string) (assignment.Assignment, error) {
	var row assignmentRow
	err := repo.db.Get(&row, "SELECT * FROM assignments WHERE guild_id = $1 AND name_lowercase = $2", guildID, nameLowercase)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, err
	}
	return row.toAssignment(), nil
}

func (repo assignmentRepository) UpdateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	res, err := repo.db.Exec(
		`UPDATE assignments
		 SET name = $1, name_lowercase = $2, points = $3, due_date = $4, instructions = $5, peer_review = $6, updated_at = $7
		 WHERE id = $8`,
		a.Name, a.NameLowercase, a.Points, a.DueDate, a.Instructions, a.PeerReview, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return assignment.Assignment{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return a, nil
}

func (repo assignmentRepository) DeleteAssignment(guildID int64, nameLowercase string) error {
	_, err := repo.db.Exec("DELETE FROM assignments WHERE guild_id = $1 AND name_lowercase = $2", guildID, nameLowercase)
	return err
}
