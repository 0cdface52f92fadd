package team

import (
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func testRand() *rand.Rand { return rand.New(rand.NewSource(42)) }

func TestComputeDistribution_invalidConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		teams     []string
		groupSize int
	}{
		{name: "no teams", teams: nil, groupSize: 1},
		{name: "one team", teams: []string{"A"}, groupSize: 1},
		{name: "group size zero", teams: []string{"A", "B", "C"}, groupSize: 0},
		{name: "group size equals team count", teams: []string{"A", "B"}, groupSize: 2},
		{name: "group size exceeds team count", teams: []string{"A", "B", "C"}, groupSize: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeDistribution(tt.teams, tt.groupSize, testRand()); err != ErrInvalidConfiguration {
				t.Errorf("ComputeDistribution() error = %v, want %v", err, ErrInvalidConfiguration)
			}
		})
	}
}

func TestComputeDistribution_properties(t *testing.T) {
	for n := 2; n <= 8; n++ {
		teams := make([]string, 0, n)
		for i := 0; i < n; i++ {
			teams = append(teams, fmt.Sprintf("Team%d", i))
		}

		for groupSize := 1; groupSize < n; groupSize++ {
			t.Run(fmt.Sprintf("%d teams, group size %d", n, groupSize), func(t *testing.T) {
				dist, err := ComputeDistribution(teams, groupSize, testRand())
				if err != nil {
					t.Fatalf("ComputeDistribution(): %v", err)
				}
				if dist.Len() != n {
					t.Fatalf("Len() = %d, want %d", dist.Len(), n)
				}

				reviewedCount := make(map[string]int, n)
				for _, e := range dist.Entries() {
					if len(e.Reviews) != groupSize {
						t.Errorf("%s reviews %d teams, want %d", e.Team, len(e.Reviews), groupSize)
					}
					seen := make(map[string]bool, groupSize)
					for _, target := range e.Reviews {
						if target == e.Team {
							t.Errorf("%s reviews itself", e.Team)
						}
						if seen[target] {
							t.Errorf("%s reviews %s twice", e.Team, target)
						}
						seen[target] = true
						reviewedCount[target]++
					}
				}
				for _, name := range teams {
					if reviewedCount[name] != groupSize {
						t.Errorf("%s is reviewed %d times, want %d", name, reviewedCount[name], groupSize)
					}
				}
			})
		}
	}
}

func TestComputeDistribution_deterministic(t *testing.T) {
	teams := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}

	d1, err := ComputeDistribution(teams, 2, testRand())
	if err != nil {
		t.Fatalf("ComputeDistribution(): %v", err)
	}
	d2, err := ComputeDistribution(teams, 2, testRand())
	if err != nil {
		t.Fatalf("ComputeDistribution(): %v", err)
	}
	if !reflect.DeepEqual(d1.Entries(), d2.Entries()) {
		t.Errorf("same seed produced different distributions:\n%v\n%v", d1.Entries(), d2.Entries())
	}
}

// With a group size of 1, following each team to its single target must walk
// a cycle through every team.
func TestComputeDistribution_singleCycle(t *testing.T) {
	teams := []string{"A", "B", "C", "D"}
	dist, err := ComputeDistribution(teams, 1, testRand())
	if err != nil {
		t.Fatalf("ComputeDistribution(): %v", err)
	}

	next := make(map[string]string, len(teams))
	for _, e := range dist.Entries() {
		next[e.Team] = e.Reviews[0]
	}

	visited := make(map[string]bool, len(teams))
	current := teams[0]
	for i := 0; i < len(teams); i++ {
		if visited[current] {
			t.Fatalf("cycle closed early after %d teams", i)
		}
		visited[current] = true
		current = next[current]
	}
	if current != teams[0] {
		t.Errorf("cycle did not return to the start; ended at %s", current)
	}
}

// With a group size of n-1, every team must review all the others.
func TestComputeDistribution_completeGraph(t *testing.T) {
	teams := []string{"A", "B", "C", "D"}
	dist, err := ComputeDistribution(teams, len(teams)-1, testRand())
	if err != nil {
		t.Fatalf("ComputeDistribution(): %v", err)
	}
	for _, e := range dist.Entries() {
		for _, other := range teams {
			if other == e.Team {
				continue
			}
			found := false
			for _, target := range e.Reviews {
				if target == other {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%s does not review %s", e.Team, other)
			}
		}
	}
}

func TestDistribution_Preview(t *testing.T) {
	dist, err := ComputeDistribution([]string{"Alpha", "Beta", "Gamma"}, 2, testRand())
	if err != nil {
		t.Fatalf("ComputeDistribution(): %v", err)
	}

	preview := dist.Preview()
	lines := strings.Split(strings.TrimRight(preview, "\n"), "\n")
	if len(lines) != dist.Len() {
		t.Fatalf("Preview() has %d lines, want %d", len(lines), dist.Len())
	}
	for i, e := range dist.Entries() {
		want := fmt.Sprintf("%d. %s: %s", i+1, e.Team, strings.Join(e.Reviews, ", "))
		if lines[i] != want {
			t.Errorf("Preview() line %d = %q, want %q", i+1, lines[i], want)
		}
	}
}

func TestDistribution_Reviews(t *testing.T) {
	dist, err := ComputeDistribution([]string{"Alpha", "Beta", "Gamma"}, 1, testRand())
	if err != nil {
		t.Fatalf("ComputeDistribution(): %v", err)
	}
	if _, ok := dist.Reviews("Alpha"); !ok {
		t.Error("Reviews(Alpha) not found")
	}
	if _, ok := dist.Reviews("Nope"); ok {
		t.Error("Reviews(Nope) unexpectedly found")
	}
}
