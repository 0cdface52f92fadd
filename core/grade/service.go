package grade

import (
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/team"
)

var (
	// errors
	ErrNotFound        = errors.New("grade not found")
	ErrNotAssigned     = errors.New("your team is not assigned to review this team")
	ErrNotReviewable   = errors.New("this assignment is not eligible for peer review")
	ErrMissingReviewer = errors.New("a reviewer team is required")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// UpsertGrade inserts or overwrites the grade keyed by
		// (guild, assignment, reviewer, team).
		UpsertGrade(g Grade) (Grade, error)
		GetGrade(guildID int64, assignmentName, reviewer, teamName string) (Grade, error)
		QueryGradesByAssignment(guildID int64, assignmentName string) ([]Grade, error)
	}

	Service struct {
		repo      Repository
		teamRepo  team.Repository
		assignSvc *assignment.Service
	}
)

func NewService(repo Repository, teamRepo team.Repository, assignSvc *assignment.Service) *Service {
	return &Service{repo: repo, teamRepo: teamRepo, assignSvc: assignSvc}
}

// Upsert records a grade. Non-instructors grade as their own team and only
// for teams their peer review list assigns them; instructors name the
// reviewer explicitly and bypass the assignment gate.
func (svc *Service) Upsert(guildID, userID int64, instructor bool, ng NewGrade) (Grade, error) {
	a, err := svc.assignSvc.GetByName(guildID, ng.Assignment)
	if err != nil {
		return Grade{}, err
	}
	if !a.PeerReview {
		return Grade{}, ErrNotReviewable
	}
	if ng.Points > a.Points {
		return Grade{}, core.NewValidationError(nil, core.FieldError{
			Field: "points",
			Error: "points cannot exceed the assignment's points possible",
		})
	}

	// the reviewed team must currently exist; stale peer review entries are
	// not gradable.
	reviewed, err := svc.teamRepo.GetTeamByName(guildID, core.CleanString(ng.Team, true /* lower */))
	if err != nil {
		return Grade{}, err
	}

	reviewer := ng.Reviewer
	if instructor {
		if reviewer == "" {
			return Grade{}, ErrMissingReviewer
		}
	} else {
		own, err := svc.teamRepo.GetTeamByMember(guildID, userID)
		if err != nil {
			if err == team.ErrNotFound {
				return Grade{}, team.ErrNotInTeam
			}
			return Grade{}, err
		}
		if !own.Reviews(reviewed.Name) {
			return Grade{}, ErrNotAssigned
		}
		reviewer = own.Name
	}

	now := nowFunc().UTC()
	g := Grade{
		GuildID:    guildID,
		Assignment: a.Name,
		Reviewer:   reviewer,
		Team:       reviewed.Name,
		Points:     ng.Points,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.UpsertGrade(g)
}

func (svc *Service) Get(guildID int64, assignmentName, reviewer, teamName string) (Grade, error) {
	return svc.repo.GetGrade(guildID, assignmentName, reviewer, teamName)
}

func (svc *Service) QueryByAssignment(guildID int64, assignmentName string) ([]Grade, error) {
	a, err := svc.assignSvc.GetByName(guildID, assignmentName)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryGradesByAssignment(guildID, a.Name)
}
