package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/settings"
	"github.com/trezcool/darasa/core/team"
)

// DB is an in-memory database for tests and local hacking.
type DB struct {
	mutex   sync.RWMutex
	pkCount int

	teams       map[int]*team.Team
	settings    map[int64]*settings.Settings
	assignments map[int]*assignment.Assignment
	grades      map[int]*grade.Grade
	courses     map[int]*course.Course
}

func NewDB() *DB {
	return &DB{
		teams:       make(map[int]*team.Team),
		settings:    make(map[int64]*settings.Settings),
		assignments: make(map[int]*assignment.Assignment),
		grades:      make(map[int]*grade.Grade),
		courses:     make(map[int]*course.Course),
	}
}

func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}
