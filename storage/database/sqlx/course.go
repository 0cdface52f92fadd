package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/course"
)

type courseRow struct {
	ID           int       `db:"id"`
	GuildID      int64     `db:"guild_id"`
	UserID       int64     `db:"user_id"`
	Name         string    `db:"course_name"`
	Abbreviation string    `db:"course_abbreviation"`
	Section      string    `db:"course_section"`
	Semester     string    `db:"semester"`
	CRN          string    `db:"crn"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:           row.ID,
		GuildID:      row.GuildID,
		UserID:       row.UserID,
		Name:         row.Name,
		Abbreviation: row.Abbreviation,
		Section:      row.Section,
		Semester:     row.Semester,
		CRN:          row.CRN,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) GetCourse(guildID, userID int64) (course.Course, error) {
	var row courseRow
	err := repo.db.Get(&row, "SELECT * FROM courses WHERE guild_id = $1 AND user_id = $2", guildID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	return row.toCourse(), nil
}

func (repo courseRepository) CreateCourse(c course.Course) (course.Course, error) {
	err := repo.db.QueryRowx(
		`INSERT INTO courses (guild_id, user_id, course_name, course_abbreviation, course_section, semester, crn, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		c.GuildID, c.UserID, c.Name, c.Abbreviation, c.Section, c.Semester, c.CRN, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (repo courseRepository) UpdateCourse(c course.Course) (course.Course, error) {
	res, err := repo.db.Exec(
		`UPDATE courses
		 SET course_name = $1, course_abbreviation = $2, course_section = $3, semester = $4, crn = $5, updated_at = $6
		 WHERE id = $7`,
		c.Name, c.Abbreviation, c.Section, c.Semester, c.CRN, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return course.Course{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (repo courseRepository) DeleteCourse(guildID, userID int64) error {
	_, err := repo.db.Exec("DELETE FROM courses WHERE guild_id = $1 AND user_id = $2", guildID, userID)
	return err
}
