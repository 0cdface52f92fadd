package testutil

import (
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/settings"
	"github.com/trezcool/darasa/core/team"
)

// CreateTeam inserts a team directly via the repository.
func CreateTeam(t *testing.T, repo team.Repository, guildID int64, name string, members ...int64) team.Team {
	t.Helper()

	now := time.Now().UTC()
	if members == nil {
		members = []int64{}
	}
	tm, err := repo.CreateTeam(team.Team{
		GuildID:       guildID,
		Name:          name,
		NameLowercase: core.CleanString(name, true /* lower */),
		Members:       members,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateTeam(): %v", err)
	}
	return tm
}

// CreateAssignment inserts an assignment directly via the repository.
func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	guildID int64,
	name string,
	points int,
	due time.Time,
	peerReview bool,
) assignment.Assignment {
	t.Helper()

	now := time.Now().UTC()
	a, err := repo.CreateAssignment(assignment.Assignment{
		GuildID:       guildID,
		Name:          name,
		NameLowercase: core.CleanString(name, true /* lower */),
		Points:        points,
		DueDate:       due,
		Instructions:  "see course page",
		PeerReview:    peerReview,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateAssignment(): %v", err)
	}
	return a
}

// CreateSettings upserts the guild's settings directly via the repository.
func CreateSettings(t *testing.T, repo settings.Repository, guildID int64, teamSize, peerReviewSize int) settings.Settings {
	t.Helper()

	now := time.Now().UTC()
	s, err := repo.UpsertSettings(settings.Settings{
		GuildID:        guildID,
		RoleID:         1,
		TeamSize:       teamSize,
		PeerReviewSize: peerReviewSize,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateSettings(): %v", err)
	}
	return s
}
