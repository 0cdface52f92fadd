package inmemdb

import (
	"sort"

	"github.com/trezcool/darasa/core/team"
)

type teamRepository struct {
	db *DB
}

func NewTeamRepository(db *DB) team.Repository {
	return &teamRepository{db: db}
}

func (repo *teamRepository) query(guildID int64) []*team.Team {
	teams := make([]*team.Team, 0, len(repo.db.teams))
	for _, t := range repo.db.teams {
		if t.GuildID == guildID {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams
}

func copyTeam(t team.Team) team.Team {
	if t.Members != nil {
		members := make([]int64, len(t.Members))
		copy(members, t.Members)
		t.Members = members
	}
	if t.PeerReview != nil {
		reviews := make([]string, len(t.PeerReview))
		copy(reviews, t.PeerReview)
		t.PeerReview = reviews
	}
	return t
}

func (repo *teamRepository) CheckNameUniqueness(guildID int64, nameLowercase string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.query(guildID) {
		if t.NameLowercase == nameLowercase {
			return team.ErrTeamExists
		}
	}
	return nil
}

func (repo *teamRepository) CreateTeam(t team.Team) (team.Team, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = repo.db.nextPK()
	t = copyTeam(t)
	repo.db.teams[t.ID] = &t
	return copyTeam(t), nil
}

func (repo *teamRepository) QueryAllTeams(guildID int64) ([]team.Team, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teams := make([]team.Team, 0)
	for _, t := range repo.query(guildID) {
		teams = append(teams, copyTeam(*t))
	}
	return teams, nil
}

func (repo *teamRepository) GetTeamByName(guildID int64, nameLowercase string) (team.Team, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.query(guildID) {
		if t.NameLowercase == nameLowercase {
			return copyTeam(*t), nil
		}
	}
	return team.Team{}, team.ErrNotFound
}

func (repo *teamRepository) GetTeamByMember(guildID, userID int64) (team.Team, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.query(guildID) {
		if t.HasMember(userID) {
			return copyTeam(*t), nil
		}
	}
	return team.Team{}, team.ErrNotFound
}

func (repo *teamRepository) UpdateTeam(t team.Team) (team.Team, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teams[t.ID]; !ok {
		return team.Team{}, team.ErrNotFound
	}
	t = copyTeam(t)
	repo.db.teams[t.ID] = &t
	return copyTeam(t), nil
}

func (repo *teamRepository) SetPeerReview(guildID int64, nameLowercase string, reviews []string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, t := range repo.query(guildID) {
		if t.NameLowercase == nameLowercase {
			t.PeerReview = make([]string, len(reviews))
			copy(t.PeerReview, reviews)
			return nil
		}
	}
	return team.ErrNotFound
}

func (repo *teamRepository) RenamePeerReviewRefs(guildID int64, oldName, newName string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, t := range repo.query(guildID) {
		for i, name := range t.PeerReview {
			if name == oldName {
				t.PeerReview[i] = newName
			}
		}
	}
	return nil
}

func (repo *teamRepository) RemovePeerReviewRefs(guildID int64, name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, t := range repo.query(guildID) {
		if !t.Reviews(name) {
			continue
		}
		reviews := make([]string, 0, len(t.PeerReview))
		for _, n := range t.PeerReview {
			if n != name {
				reviews = append(reviews, n)
			}
		}
		t.PeerReview = reviews
	}
	return nil
}

func (repo *teamRepository) DeleteTeam(guildID int64, nameLowercase string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, t := range repo.query(guildID) {
		if t.NameLowercase == nameLowercase {
			delete(repo.db.teams, t.ID)
			return nil
		}
	}
	return nil
}
