package team

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrInvalidConfiguration is returned when a peer review distribution is
// requested with fewer than 2 teams or with a group size that is not
// smaller than the number of teams.
var ErrInvalidConfiguration = errors.New("peer review size must be smaller than the current number of teams")

type (
	// Distribution maps each team to the teams it must review.
	// Entry order follows the shuffled team order the mapping was built
	// from, so previews are stable for a given computation.
	Distribution struct {
		entries []DistributionEntry
	}

	DistributionEntry struct {
		Team    string   `json:"team"`
		Reviews []string `json:"reviews"`
	}
)

// ComputeDistribution assigns each team `groupSize` distinct teams to review.
//
// The team list is uniformly shuffled with rng, then each team reviews the
// `groupSize` teams cyclically ahead of it in the shuffled order (closest
// first). Since groupSize < len(teamNames), the window can never wrap back
// onto the team itself: no team reviews itself, and every team both reviews
// and is reviewed by exactly groupSize teams.
//
// The result is fully deterministic for a fixed rng.
func ComputeDistribution(teamNames []string, groupSize int, rng *rand.Rand) (Distribution, error) {
	if len(teamNames) < 2 || groupSize < 1 || groupSize >= len(teamNames) {
		return Distribution{}, ErrInvalidConfiguration
	}

	shuffled := make([]string, len(teamNames))
	copy(shuffled, teamNames)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	entries := make([]DistributionEntry, len(shuffled))
	for i, name := range shuffled {
		reviews := make([]string, 0, groupSize)
		for offset := 1; offset <= groupSize; offset++ {
			reviews = append(reviews, shuffled[(i+offset)%len(shuffled)])
		}
		entries[i] = DistributionEntry{Team: name, Reviews: reviews}
	}
	return Distribution{entries: entries}, nil
}

func (d Distribution) Len() int { return len(d.entries) }

func (d Distribution) Entries() []DistributionEntry { return d.entries }

// Reviews returns the review targets assigned to the given team.
func (d Distribution) Reviews(team string) ([]string, bool) {
	for _, e := range d.entries {
		if e.Team == team {
			return e.Reviews, true
		}
	}
	return nil, false
}

// Preview renders the numbered, human-readable form shown to the
// instructor before confirmation:
//
//	1. TeamA: TeamB, TeamC
//	2. TeamB: TeamC, TeamA
//	...
func (d Distribution) Preview() string {
	var b strings.Builder
	for i, e := range d.entries {
		_, _ = fmt.Fprintf(&b, "%d. %s: %s\n", i+1, e.Team, strings.Join(e.Reviews, ", "))
	}
	return b.String()
}
