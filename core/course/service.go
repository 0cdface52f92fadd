package course

import (
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound     = errors.New("this server is not associated with any courses yet")
	ErrCourseExists = errors.New("a course is already associated with this server")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetCourse(guildID, userID int64) (Course, error)
		CreateCourse(c Course) (Course, error)
		UpdateCourse(c Course) (Course, error)
		DeleteCourse(guildID, userID int64) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(guildID, userID int64) (Course, error) {
	return svc.repo.GetCourse(guildID, userID)
}

func (svc *Service) Create(guildID, userID int64, nc NewCourse) (Course, error) {
	if _, err := svc.repo.GetCourse(guildID, userID); err == nil {
		return Course{}, ErrCourseExists
	} else if err != ErrNotFound {
		return Course{}, err
	}

	now := nowFunc().UTC()
	c := Course{
		GuildID:      guildID,
		UserID:       userID,
		Name:         nc.Name,
		Abbreviation: nc.Abbreviation,
		Section:      nc.Section,
		Semester:     nc.Semester,
		CRN:          nc.CRN,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateCourse(c)
}

func (svc *Service) Update(guildID, userID int64, uc UpdateCourse) (Course, error) {
	c, err := svc.repo.GetCourse(guildID, userID)
	if err != nil {
		return Course{}, err
	}

	if uc.Name != "" {
		c.Name = uc.Name
	}
	if uc.Abbreviation != "" {
		c.Abbreviation = uc.Abbreviation
	}
	if uc.Section != "" {
		c.Section = uc.Section
	}
	if uc.Semester != "" {
		c.Semester = uc.Semester
	}
	if uc.CRN != "" {
		c.CRN = uc.CRN
	}
	c.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateCourse(c)
}

func (svc *Service) Delete(guildID, userID int64) error {
	if _, err := svc.repo.GetCourse(guildID, userID); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(guildID, userID)
}
