package team

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/settings"
)

// fakeRepo is a minimal in-memory Repository for service tests.
type fakeRepo struct {
	mu    sync.Mutex
	pk    int
	teams map[int]*Team
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{teams: make(map[int]*Team)}
}

func (r *fakeRepo) all(guildID int64) []*Team {
	teams := make([]*Team, 0, len(r.teams))
	for pk := 1; pk <= r.pk; pk++ {
		if t, ok := r.teams[pk]; ok && t.GuildID == guildID {
			teams = append(teams, t)
		}
	}
	return teams
}

func (r *fakeRepo) CheckNameUniqueness(guildID int64, nameLowercase string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.all(guildID) {
		if t.NameLowercase == nameLowercase {
			return ErrTeamExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateTeam(t Team) (Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pk++
	t.ID = r.pk
	r.teams[t.ID] = &t
	return t, nil
}

func (r *fakeRepo) QueryAllTeams(guildID int64) ([]Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	teams := make([]Team, 0)
	for _, t := range r.all(guildID) {
		teams = append(teams, *t)
	}
	return teams, nil
}

func (r *fakeRepo) GetTeamByName(guildID int64, nameLowercase string) (Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.all(guildID) {
		if t.NameLowercase == nameLowercase {
			return *t, nil
		}
	}
	return Team{}, ErrNotFound
}

func (r *fakeRepo) GetTeamByMember(guildID, userID int64) (Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.all(guildID) {
		if t.HasMember(userID) {
			return *t, nil
		}
	}
	return Team{}, ErrNotFound
}

func (r *fakeRepo) UpdateTeam(t Team) (Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[t.ID]; !ok {
		return Team{}, ErrNotFound
	}
	r.teams[t.ID] = &t
	return t, nil
}

func (r *fakeRepo) SetPeerReview(guildID int64, nameLowercase string, reviews []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.all(guildID) {
		if t.NameLowercase == nameLowercase {
			t.PeerReview = reviews
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepo) RenamePeerReviewRefs(guildID int64, oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.all(guildID) {
		for i, name := range t.PeerReview {
			if name == oldName {
				t.PeerReview[i] = newName
			}
		}
	}
	return nil
}

func (r *fakeRepo) RemovePeerReviewRefs(guildID int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.all(guildID) {
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

func (r *fakeRepo) DeleteTeam(guildID int64, nameLowercase string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.all(guildID) {
		if t.NameLowercase == nameLowercase {
			delete(r.teams, t.ID)
			return nil
		}
	}
	return nil
}

type fakeSettingsRepo struct {
	settings map[int64]settings.Settings
}

func (r *fakeSettingsRepo) GetSettings(guildID int64) (settings.Settings, error) {
	s, ok := r.settings[guildID]
	if !ok {
		return settings.Settings{}, settings.ErrNotFound
	}
	return s, nil
}

func (r *fakeSettingsRepo) UpsertSettings(s settings.Settings) (settings.Settings, error) {
	r.settings[s.GuildID] = s
	return s, nil
}

type mailMock struct {
	mu       sync.Mutex
	messages []core.EmailMessage
}

func (m *mailMock) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.messages = append(m.messages, *msg)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	repo    *fakeRepo
	setRepo *fakeSettingsRepo
	mail    *mailMock
	svc     *Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	origNewRand := newRand
	newRand = func() *rand.Rand { return rand.New(rand.NewSource(42)) }
	t.Cleanup(func() { newRand = origNewRand })

	repo := newFakeRepo()
	setRepo := &fakeSettingsRepo{settings: make(map[int64]settings.Settings)}
	mail := &mailMock{}
	conf := &core.Config{PendingDistributionTTL: 15 * time.Minute}
	svc := NewService(repo, settings.NewService(setRepo), mail, nopLogger{}, conf)
	return &testEnv{repo: repo, setRepo: setRepo, mail: mail, svc: svc}
}

func (env *testEnv) seedSettings(guildID int64, teamSize, peerReviewSize int, locked bool, contactEmail string) {
	env.setRepo.settings[guildID] = settings.Settings{
		GuildID:        guildID,
		RoleID:         1,
		TeamSize:       teamSize,
		PeerReviewSize: peerReviewSize,
		TeamsLocked:    locked,
		ContactEmail:   contactEmail,
	}
}

func (env *testEnv) seedTeam(t *testing.T, guildID int64, name string, members ...int64) Team {
	t.Helper()
	if members == nil {
		members = []int64{}
	}
	tm, err := env.repo.CreateTeam(Team{
		GuildID:       guildID,
		Name:          name,
		NameLowercase: core.CleanString(name, true /* lower */),
		Members:       members,
	})
	if err != nil {
		t.Fatalf("seedTeam(): %v", err)
	}
	return tm
}

const guild int64 = 101

func TestService_Create(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 4, 2, false, "")

	tm, err := env.svc.Create(guild, NewTeam{Name: "Rocket"}, 1, false)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if tm.NameLowercase != "rocket" {
		t.Errorf("NameLowercase = %q, want %q", tm.NameLowercase, "rocket")
	}

	// creator already in a team
	env.seedTeam(t, guild, "Existing", 2)
	if _, err = env.svc.Create(guild, NewTeam{Name: "Another"}, 2, false); err != ErrAlreadyInTeam {
		t.Errorf("Create() error = %v, want %v", err, ErrAlreadyInTeam)
	}

	// locked guild blocks students but not instructors
	env.seedSettings(guild, 4, 2, true, "")
	if _, err = env.svc.Create(guild, NewTeam{Name: "Late"}, 3, false); err != ErrTeamsLocked {
		t.Errorf("Create() error = %v, want %v", err, ErrTeamsLocked)
	}
	if _, err = env.svc.Create(guild, NewTeam{Name: "Late"}, 3, true); err != nil {
		t.Errorf("Create() as instructor: %v", err)
	}
}

func TestService_JoinAndLeave(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 2, 1, false, "")
	env.seedTeam(t, guild, "Rocket", 1)

	tm, err := env.svc.Join(guild, "rocket", 2, false)
	if err != nil {
		t.Fatalf("Join(): %v", err)
	}
	if !tm.HasMember(2) {
		t.Error("Join() did not add the member")
	}

	// team full
	if _, err = env.svc.Join(guild, "Rocket", 3, false); err != ErrTeamFull {
		t.Errorf("Join() error = %v, want %v", err, ErrTeamFull)
	}

	// already in a team
	env.seedTeam(t, guild, "Comet")
	if _, err = env.svc.Join(guild, "Comet", 2, false); err != ErrAlreadyInTeam {
		t.Errorf("Join() error = %v, want %v", err, ErrAlreadyInTeam)
	}

	tm, err = env.svc.Leave(guild, 2, false)
	if err != nil {
		t.Fatalf("Leave(): %v", err)
	}
	if tm.HasMember(2) {
		t.Error("Leave() did not remove the member")
	}
	if _, err = env.svc.Leave(guild, 99, false); err != ErrNotInTeam {
		t.Errorf("Leave() error = %v, want %v", err, ErrNotInTeam)
	}
}

func TestService_Rename_rewritesReferences(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 4, 1, false, "")
	env.seedTeam(t, guild, "Alpha")
	beta := env.seedTeam(t, guild, "Beta")
	env.repo.teams[beta.ID].PeerReview = []string{"Alpha"}

	if _, err := env.svc.Rename(guild, "Alpha", RenameTeam{Name: "Omega"}); err != nil {
		t.Fatalf("Rename(): %v", err)
	}

	refreshed, err := env.repo.GetTeamByName(guild, "beta")
	if err != nil {
		t.Fatalf("GetTeamByName(): %v", err)
	}
	if !refreshed.Reviews("Omega") {
		t.Errorf("peer review refs not rewritten; got %v", refreshed.PeerReview)
	}
	if refreshed.Reviews("Alpha") {
		t.Errorf("stale peer review ref kept; got %v", refreshed.PeerReview)
	}
}

func TestService_Delete_removesReferences(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 4, 1, false, "")
	env.seedTeam(t, guild, "Alpha")
	beta := env.seedTeam(t, guild, "Beta")
	env.repo.teams[beta.ID].PeerReview = []string{"Alpha", "Gamma"}

	if err := env.svc.Delete(guild, "Alpha"); err != nil {
		t.Fatalf("Delete(): %v", err)
	}

	refreshed, err := env.repo.GetTeamByName(guild, "beta")
	if err != nil {
		t.Fatalf("GetTeamByName(): %v", err)
	}
	if refreshed.Reviews("Alpha") {
		t.Errorf("deleted team still referenced; got %v", refreshed.PeerReview)
	}
	if !refreshed.Reviews("Gamma") {
		t.Errorf("unrelated ref dropped; got %v", refreshed.PeerReview)
	}
}

func TestService_ClosestTeamName(t *testing.T) {
	env := setup(t)
	env.seedTeam(t, guild, "Rocket")
	env.seedTeam(t, guild, "Comet")

	suggestion, ok := env.svc.ClosestTeamName(guild, "rockat")
	if !ok || suggestion != "Rocket" {
		t.Errorf("ClosestTeamName() = %q, %v; want %q, true", suggestion, ok, "Rocket")
	}
	if _, ok = env.svc.ClosestTeamName(guild, "zzzzzzzzzz"); ok {
		t.Error("ClosestTeamName() unexpectedly found a suggestion")
	}
}

func TestService_distributionLifecycle(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 4, 2, false, "prof@test.cd")
	names := []string{"Alpha", "Beta", "Gamma", "Delta"}
	for _, name := range names {
		env.seedTeam(t, guild, name)
	}

	pd, err := env.svc.StartDistribution(guild)
	if err != nil {
		t.Fatalf("StartDistribution(): %v", err)
	}
	if pd.Preview == "" {
		t.Error("StartDistribution() returned an empty preview")
	}

	// nothing persisted before confirmation
	for _, name := range names {
		tm, _ := env.repo.GetTeamByName(guild, core.CleanString(name, true))
		if len(tm.PeerReview) != 0 {
			t.Fatalf("distribution applied before confirmation: %v", tm.PeerReview)
		}
	}

	applied, preview, err := env.svc.ConfirmDistribution(guild, pd.Token)
	if err != nil {
		t.Fatalf("ConfirmDistribution(): %v", err)
	}
	if applied != len(names) {
		t.Errorf("applied = %d, want %d", applied, len(names))
	}
	if preview != pd.Preview {
		t.Error("confirmation preview does not match the computed one")
	}

	for _, name := range names {
		tm, _ := env.repo.GetTeamByName(guild, core.CleanString(name, true))
		if len(tm.PeerReview) != 2 {
			t.Errorf("%s has %d review targets, want 2", name, len(tm.PeerReview))
		}
		if tm.Reviews(tm.Name) {
			t.Errorf("%s reviews itself", name)
		}
	}

	// notification sent to the configured contact email
	if len(env.mail.messages) != 1 {
		t.Fatalf("sent %d emails, want 1", len(env.mail.messages))
	}
	if to := env.mail.messages[0].To[0].Address; to != "prof@test.cd" {
		t.Errorf("email sent to %q, want %q", to, "prof@test.cd")
	}

	// the token is single-use
	if _, _, err = env.svc.ConfirmDistribution(guild, pd.Token); err != ErrPendingNotFound {
		t.Errorf("ConfirmDistribution() error = %v, want %v", err, ErrPendingNotFound)
	}
}

func TestService_StartDistribution_concurrent(t *testing.T) {
	env := setup(t)
	guilds := []int64{guild, guild + 1}
	for _, g := range guilds {
		env.seedSettings(g, 4, 1, false, "")
		env.seedTeam(t, g, "Alpha")
		env.seedTeam(t, g, "Beta")
		env.seedTeam(t, g, "Gamma")
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		g := guilds[i%len(guilds)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.svc.StartDistribution(g); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("StartDistribution(): %v", err)
	}
}

// flakyRepo fails SetPeerReview a given number of times, from the second
// call on, then behaves normally.
type flakyRepo struct {
	*fakeRepo
	failuresLeft int
	calls        int
}

func (r *flakyRepo) SetPeerReview(guildID int64, nameLowercase string, reviews []string) error {
	r.calls++
	if r.calls > 1 && r.failuresLeft > 0 {
		r.failuresLeft--
		return errors.New("connection reset")
	}
	return r.fakeRepo.SetPeerReview(guildID, nameLowercase, reviews)
}

func TestService_ConfirmDistribution_retryAfterPartialFailure(t *testing.T) {
	origNewRand := newRand
	newRand = func() *rand.Rand { return rand.New(rand.NewSource(42)) }
	t.Cleanup(func() { newRand = origNewRand })

	repo := &flakyRepo{fakeRepo: newFakeRepo(), failuresLeft: 1}
	setRepo := &fakeSettingsRepo{settings: make(map[int64]settings.Settings)}
	conf := &core.Config{PendingDistributionTTL: 15 * time.Minute}
	svc := NewService(repo, settings.NewService(setRepo), &mailMock{}, nopLogger{}, conf)
	env := &testEnv{repo: repo.fakeRepo, setRepo: setRepo, svc: svc}

	env.seedSettings(guild, 4, 1, false, "")
	names := []string{"Alpha", "Beta", "Gamma"}
	for _, name := range names {
		env.seedTeam(t, guild, name)
	}

	pd, err := svc.StartDistribution(guild)
	if err != nil {
		t.Fatalf("StartDistribution(): %v", err)
	}

	// the batch fails partway; the failure is surfaced and the token kept
	applied, _, err := svc.ConfirmDistribution(guild, pd.Token)
	if err == nil {
		t.Fatal("ConfirmDistribution() expected an error")
	}
	if _, ok := err.(*core.PersistenceError); !ok {
		t.Fatalf("ConfirmDistribution() error type = %T, want *core.PersistenceError", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}

	// retrying with the same token completes the whole batch
	applied, preview, err := svc.ConfirmDistribution(guild, pd.Token)
	if err != nil {
		t.Fatalf("ConfirmDistribution() retry: %v", err)
	}
	if applied != len(names) {
		t.Errorf("applied = %d, want %d", applied, len(names))
	}
	if preview != pd.Preview {
		t.Error("retry preview does not match the computed one")
	}

	// the end state matches a clean single apply
	for _, name := range names {
		tm, err := env.repo.GetTeamByName(guild, core.CleanString(name, true))
		if err != nil {
			t.Fatalf("GetTeamByName(): %v", err)
		}
		want, ok := pd.Distribution.Reviews(tm.Name)
		if !ok {
			t.Fatalf("%s missing from the distribution", tm.Name)
		}
		if len(tm.PeerReview) != len(want) || !tm.Reviews(want[0]) {
			t.Errorf("%s reviews %v, want %v", tm.Name, tm.PeerReview, want)
		}
	}

	// success consumed the token
	if _, _, err = svc.ConfirmDistribution(guild, pd.Token); err != ErrPendingNotFound {
		t.Errorf("ConfirmDistribution() error = %v, want %v", err, ErrPendingNotFound)
	}
}

func TestService_StartDistribution_errors(t *testing.T) {
	env := setup(t)

	// settings missing
	if _, err := env.svc.StartDistribution(guild); err != settings.ErrNotFound {
		t.Errorf("StartDistribution() error = %v, want %v", err, settings.ErrNotFound)
	}

	// no teams
	env.seedSettings(guild, 4, 2, false, "")
	if _, err := env.svc.StartDistribution(guild); err != ErrNoTeams {
		t.Errorf("StartDistribution() error = %v, want %v", err, ErrNoTeams)
	}

	// group size not smaller than team count
	env.seedTeam(t, guild, "Alpha")
	env.seedTeam(t, guild, "Beta")
	if _, err := env.svc.StartDistribution(guild); err != ErrInvalidConfiguration {
		t.Errorf("StartDistribution() error = %v, want %v", err, ErrInvalidConfiguration)
	}
}

func TestService_CancelDistribution(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 4, 1, false, "")
	env.seedTeam(t, guild, "Alpha")
	env.seedTeam(t, guild, "Beta")

	pd, err := env.svc.StartDistribution(guild)
	if err != nil {
		t.Fatalf("StartDistribution(): %v", err)
	}
	if err = env.svc.CancelDistribution(guild, pd.Token); err != nil {
		t.Fatalf("CancelDistribution(): %v", err)
	}
	if _, _, err = env.svc.ConfirmDistribution(guild, pd.Token); err != ErrPendingNotFound {
		t.Errorf("ConfirmDistribution() after cancel error = %v, want %v", err, ErrPendingNotFound)
	}
	if err = env.svc.CancelDistribution(guild, uuid.New()); err != ErrPendingNotFound {
		t.Errorf("CancelDistribution() error = %v, want %v", err, ErrPendingNotFound)
	}
}

func TestService_ConfirmDistribution_expiredToken(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 4, 1, false, "")
	env.seedTeam(t, guild, "Alpha")
	env.seedTeam(t, guild, "Beta")

	pd, err := env.svc.StartDistribution(guild)
	if err != nil {
		t.Fatalf("StartDistribution(): %v", err)
	}

	origNow := nowFunc
	nowFunc = func() time.Time { return origNow().Add(16 * time.Minute) }
	defer func() { nowFunc = origNow }()

	if _, _, err = env.svc.ConfirmDistribution(guild, pd.Token); err != ErrPendingNotFound {
		t.Errorf("ConfirmDistribution() error = %v, want %v", err, ErrPendingNotFound)
	}
}

func TestService_ConfirmDistribution_skipsDeletedTeams(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 4, 1, false, "")
	env.seedTeam(t, guild, "Alpha")
	env.seedTeam(t, guild, "Beta")
	env.seedTeam(t, guild, "Gamma")

	pd, err := env.svc.StartDistribution(guild)
	if err != nil {
		t.Fatalf("StartDistribution(): %v", err)
	}
	if err = env.svc.Delete(guild, "Gamma"); err != nil {
		t.Fatalf("Delete(): %v", err)
	}

	applied, _, err := env.svc.ConfirmDistribution(guild, pd.Token)
	if err != nil {
		t.Fatalf("ConfirmDistribution(): %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
}

func TestService_ConfirmDistribution_wrongGuild(t *testing.T) {
	env := setup(t)
	env.seedSettings(guild, 4, 1, false, "")
	env.seedTeam(t, guild, "Alpha")
	env.seedTeam(t, guild, "Beta")

	pd, err := env.svc.StartDistribution(guild)
	if err != nil {
		t.Fatalf("StartDistribution(): %v", err)
	}
	if _, _, err = env.svc.ConfirmDistribution(guild+1, pd.Token); err != ErrPendingNotFound {
		t.Errorf("ConfirmDistribution() error = %v, want %v", err, ErrPendingNotFound)
	}
}
