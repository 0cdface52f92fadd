package inmemdb

import (
	"sort"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) query(guildID int64) []*assignment.Assignment {
	assignments := make([]*assignment.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if a.GuildID == guildID {
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].NameLowercase < assignments[j].NameLowercase
	})
	return assignments
}

func (repo *assignmentRepository) CheckNameUniqueness(guildID int64, nameLowercase string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.query(guildID) {
		if a.NameLowercase == nameLowercase {
			return assignment.ErrAssignmentExists
		}
	}
	return nil
}

func (repo *assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = repo.db.nextPK()
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) QueryAllAssignments(guildID int64) ([]assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assignments := make([]assignment.Assignment, 0)
	for _, a := range repo.query(guildID) {
		assignments = append(assignments, *a)
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignmentByName(guildID int64, nameLowercase string) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.query(guildID) {
		if a.NameLowercase == nameLowercase {
			return *a, nil
		}
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) UpdateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(guildID int64, nameLowercase string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, a := range repo.query(guildID) {
		if a.NameLowercase == nameLowercase {
			delete(repo.db.assignments, a.ID)
			return nil
		}
	}
	return nil
}
