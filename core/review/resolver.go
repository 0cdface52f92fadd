// Package review resolves what a user may currently grade: their team's
// assigned reviewees crossed with the assignments open for peer review.
package review

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/team"
)

var nowFunc = time.Now // mockable

type State string

const (
	// StateNotYetDistributed means the caller's team exists but peer review
	// distribution has not been performed yet.
	StateNotYetDistributed State = "not_yet_distributed"
	// StateUnavailable means grading is not currently possible for the
	// reason carried alongside.
	StateUnavailable State = "unavailable"
	// StateAvailable means the session carries at least one gradable pair.
	StateAvailable State = "available"
)

const (
	reasonNoTeam        = "you are not in any teams yet"
	reasonNoAssignments = "no assignments are available for grading at the moment"
	reasonNoTeams       = "no teams are available for grading at the moment"
)

type (
	// Pair is one gradable (assignment, reviewed team) combination.
	Pair struct {
		Assignment assignment.Assignment `json:"assignment"`
		Team       string                `json:"team"`
	}

	Session struct {
		State  State  `json:"state"`
		Reason string `json:"reason,omitempty"`
		Team   string `json:"team,omitempty"`
		Pairs  []Pair `json:"pairs,omitempty"`
	}

	Resolver struct {
		teamRepo   team.Repository
		assignRepo assignment.Repository
	}
)

func NewResolver(teamRepo team.Repository, assignRepo assignment.Repository) *Resolver {
	return &Resolver{teamRepo: teamRepo, assignRepo: assignRepo}
}

// Resolve determines which (assignment, team) pairs the user may grade.
// Instructors see every peer-reviewable assignment; everyone else only sees
// the ones still open. Peer review entries naming teams that no longer
// exist are skipped.
func (r *Resolver) Resolve(guildID, userID int64, instructor bool) (Session, error) {
	tm, err := r.teamRepo.GetTeamByMember(guildID, userID)
	if err != nil {
		if err == team.ErrNotFound {
			return Session{State: StateUnavailable, Reason: reasonNoTeam}, nil
		}
		return Session{}, errors.Wrap(err, "finding the user's team")
	}
	if len(tm.PeerReview) == 0 {
		return Session{State: StateNotYetDistributed, Team: tm.Name}, nil
	}

	assignments, err := r.assignRepo.QueryAllAssignments(guildID)
	if err != nil {
		return Session{}, errors.Wrap(err, "listing assignments")
	}
	now := nowFunc().UTC()
	eligible := make([]assignment.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if !a.PeerReview {
			continue
		}
		if !instructor && !a.IsOpen(now) {
			continue
		}
		eligible = append(eligible, a)
	}
	if len(eligible) == 0 {
		return Session{State: StateUnavailable, Reason: reasonNoAssignments, Team: tm.Name}, nil
	}

	teams, err := r.teamRepo.QueryAllTeams(guildID)
	if err != nil {
		return Session{}, errors.Wrap(err, "listing teams")
	}
	existing := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		existing[t.Name] = struct{}{}
	}
	targets := make([]string, 0, len(tm.PeerReview))
	for _, name := range tm.PeerReview {
		if _, ok := existing[name]; ok {
			targets = append(targets, name)
		}
	}
	if len(targets) == 0 {
		return Session{State: StateUnavailable, Reason: reasonNoTeams, Team: tm.Name}, nil
	}

	pairs := make([]Pair, 0, len(eligible)*len(targets))
	for _, a := range eligible {
		for _, name := range targets {
			pairs = append(pairs, Pair{Assignment: a, Team: name})
		}
	}
	return Session{State: StateAvailable, Team: tm.Name, Pairs: pairs}, nil
}
