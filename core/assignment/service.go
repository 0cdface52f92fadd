package assignment

import (
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound         = errors.New("assignment not found")
	ErrAssignmentExists = errors.New("an assignment with this name already exists")
	ErrInvalidDueDate   = errors.New("due date must strictly follow the format MM/DD/YYYY HH:mm")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckNameUniqueness(guildID int64, nameLowercase string) error
		CreateAssignment(a Assignment) (Assignment, error)
		// QueryAllAssignments returns the guild's assignments sorted by name.
		QueryAllAssignments(guildID int64) ([]Assignment, error)
		GetAssignmentByName(guildID int64, nameLowercase string) (Assignment, error)
		UpdateAssignment(a Assignment) (Assignment, error)
		DeleteAssignment(guildID int64, nameLowercase string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(guildID int64, name string) error {
	if err := svc.repo.CheckNameUniqueness(guildID, core.CleanString(name, true /* lower */)); err != nil {
		if err == ErrAssignmentExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(guildID int64, na NewAssignment, due time.Time) (Assignment, error) {
	now := nowFunc().UTC()
	a := Assignment{
		GuildID:       guildID,
		Name:          na.Name,
		NameLowercase: core.CleanString(na.Name, true /* lower */),
		Points:        na.Points,
		DueDate:       due,
		Instructions:  na.Instructions,
		PeerReview:    na.PeerReview,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateAssignment(a)
}

func (svc *Service) QueryAll(guildID int64) ([]Assignment, error) {
	return svc.repo.QueryAllAssignments(guildID)
}

func (svc *Service) GetByName(guildID int64, name string) (Assignment, error) {
	return svc.repo.GetAssignmentByName(guildID, core.CleanString(name, true /* lower */))
}

func (svc *Service) Update(guildID int64, name string, ua UpdateAssignment, due time.Time) (Assignment, error) {
	a, err := svc.GetByName(guildID, name)
	if err != nil {
		return Assignment{}, err
	}

	if ua.Name != "" && core.CleanString(ua.Name, true /* lower */) != a.NameLowercase {
		if err = svc.checkUniqueness(guildID, ua.Name); err != nil {
			return Assignment{}, err
		}
		a.Name = ua.Name
		a.NameLowercase = core.CleanString(ua.Name, true /* lower */)
	}
	if ua.Points != nil {
		a.Points = *ua.Points
	}
	if !due.IsZero() {
		a.DueDate = due
	}
	if ua.Instructions != "" {
		a.Instructions = ua.Instructions
	}
	a.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateAssignment(a)
}

// SetPeerReview toggles whether the assignment is eligible for peer review.
func (svc *Service) SetPeerReview(guildID int64, name string, peerReview bool) (Assignment, error) {
	a, err := svc.GetByName(guildID, name)
	if err != nil {
		return Assignment{}, err
	}
	a.PeerReview = peerReview
	a.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateAssignment(a)
}

func (svc *Service) Delete(guildID int64, name string) error {
	a, err := svc.GetByName(guildID, name)
	if err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(guildID, a.NameLowercase)
}
