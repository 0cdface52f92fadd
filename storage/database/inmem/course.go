package inmemdb

import (
	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) find(guildID, userID int64) *course.Course {
	for _, c := range repo.db.courses {
		if c.GuildID == guildID && c.UserID == userID {
			return c
		}
	}
	return nil
}

func (repo *courseRepository) GetCourse(guildID, userID int64) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c := repo.find(guildID, userID); c != nil {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CreateCourse(c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) UpdateCourse(c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) DeleteCourse(guildID, userID int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if c := repo.find(guildID, userID); c != nil {
		delete(repo.db.courses, c.ID)
	}
	return nil
}
