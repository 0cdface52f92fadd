package inmemdb

import (
	"sort"

	"github.com/trezcool/darasa/core/grade"
)

type gradeRepository struct {
	db *DB
}

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) find(guildID int64, assignmentName, reviewer, teamName string) *grade.Grade {
	for _, g := range repo.db.grades {
		if g.GuildID == guildID && g.Assignment == assignmentName && g.Reviewer == reviewer && g.Team == teamName {
			return g
		}
	}
	return nil
}

func (repo *gradeRepository) UpsertGrade(g grade.Grade) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing := repo.find(g.GuildID, g.Assignment, g.Reviewer, g.Team); existing != nil {
		g.ID = existing.ID
		g.CreatedAt = existing.CreatedAt
	} else {
		g.ID = repo.db.nextPK()
	}
	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) GetGrade(guildID int64, assignmentName, reviewer, teamName string) (grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g := repo.find(guildID, assignmentName, reviewer, teamName); g != nil {
		return *g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) QueryGradesByAssignment(guildID int64, assignmentName string) ([]grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := make([]grade.Grade, 0)
	for _, g := range repo.db.grades {
		if g.GuildID == guildID && g.Assignment == assignmentName {
			grades = append(grades, *g)
		}
	}
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].Team != grades[j].Team {
			return grades[i].Team < grades[j].Team
		}
		return grades[i].Reviewer < grades[j].Reviewer
	})
	return grades, nil
}
