package team

import (
	"errors"
	"fmt"
	"math/rand"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/settings"
)

var (
	// errors
	ErrNotFound        = errors.New("team not found")
	ErrTeamExists      = errors.New("a team with this name already exists")
	ErrAlreadyInTeam   = errors.New("you are already in a team")
	ErrNotInTeam       = errors.New("you are not in any teams yet")
	ErrTeamFull        = errors.New("this team is already full")
	ErrTeamsLocked     = errors.New("teams can no longer be created, joined, left, or updated")
	ErrNoTeams         = errors.New("no teams are created yet")
	ErrPendingNotFound = errors.New("no pending distribution matches this token; it may have expired")

	// mockable
	nowFunc = time.Now
	newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }

	suggestionCutoff = 0.6
)

type (
	Repository interface {
		CheckNameUniqueness(guildID int64, nameLowercase string) error
		CreateTeam(t Team) (Team, error)
		QueryAllTeams(guildID int64) ([]Team, error)
		GetTeamByName(guildID int64, nameLowercase string) (Team, error)
		GetTeamByMember(guildID, userID int64) (Team, error)
		UpdateTeam(t Team) (Team, error)
		// SetPeerReview overwrites the team's peer review list.
		SetPeerReview(guildID int64, nameLowercase string, reviews []string) error
		// RenamePeerReviewRefs replaces oldName with newName in every team's
		// peer review list within the guild.
		RenamePeerReviewRefs(guildID int64, oldName, newName string) error
		// RemovePeerReviewRefs removes name from every team's peer review
		// list within the guild.
		RemovePeerReviewRefs(guildID int64, name string) error
		DeleteTeam(guildID int64, nameLowercase string) error
	}

	// PendingDistribution is a computed distribution awaiting instructor
	// confirmation, referenced by an opaque token.
	PendingDistribution struct {
		Token        uuid.UUID    `json:"token"`
		GuildID      int64        `json:"guild_id"`
		Distribution Distribution `json:"-"`
		Preview      string       `json:"preview"`
		CreatedAt    time.Time    `json:"created_at"`
	}

	Service struct {
		repo        Repository
		settingsSvc *settings.Service
		mailSvc     core.EmailService
		logger      core.Logger
		conf        *core.Config

		mu      sync.Mutex
		pending map[uuid.UUID]PendingDistribution
		// per-guild advisory locks; confirmations for one guild must not
		// interleave their team writes.
		guildLocks map[int64]*sync.Mutex
	}
)

func NewService(
	repo Repository,
	settingsSvc *settings.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:        repo,
		settingsSvc: settingsSvc,
		mailSvc:     mailSvc,
		logger:      logger,
		conf:        conf,
		pending:     make(map[uuid.UUID]PendingDistribution),
		guildLocks:  make(map[int64]*sync.Mutex),
	}
}

func (svc *Service) checkUniqueness(guildID int64, name string) error {
	if err := svc.repo.CheckNameUniqueness(guildID, core.CleanString(name, true /* lower */)); err != nil {
		if err == ErrTeamExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

// checkLock fails with ErrTeamsLocked when the guild has locked team
// mutations; instructors bypass the lock.
func (svc *Service) checkLock(guildID int64, instructor bool) error {
	if instructor {
		return nil
	}
	st, err := svc.settingsSvc.Get(guildID)
	if err != nil {
		return err
	}
	if st.TeamsLocked {
		return ErrTeamsLocked
	}
	return nil
}

func (svc *Service) Create(guildID int64, nt NewTeam, creatorID int64, instructor bool) (Team, error) {
	if err := svc.checkLock(guildID, instructor); err != nil {
		return Team{}, err
	}
	if _, err := svc.repo.GetTeamByMember(guildID, creatorID); err == nil {
		return Team{}, ErrAlreadyInTeam
	} else if err != ErrNotFound {
		return Team{}, err
	}

	now := nowFunc().UTC()
	t := Team{
		GuildID:       guildID,
		Name:          nt.Name,
		NameLowercase: core.CleanString(nt.Name, true /* lower */),
		ChannelID:     nt.ChannelID,
		Members:       []int64{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateTeam(t)
}

func (svc *Service) QueryAll(guildID int64) ([]Team, error) {
	return svc.repo.QueryAllTeams(guildID)
}

func (svc *Service) GetByName(guildID int64, name string) (Team, error) {
	return svc.repo.GetTeamByName(guildID, core.CleanString(name, true /* lower */))
}

func (svc *Service) FindByMember(guildID, userID int64) (Team, error) {
	return svc.repo.GetTeamByMember(guildID, userID)
}

// ClosestTeamName suggests the existing team name most similar to the given
// one. ok is false when nothing comes close enough.
func (svc *Service) ClosestTeamName(guildID int64, name string) (suggestion string, ok bool) {
	teams, err := svc.repo.QueryAllTeams(guildID)
	if err != nil {
		return "", false
	}
	name = core.CleanString(name, true /* lower */)
	best := suggestionCutoff
	for _, t := range teams {
		ratio := difflib.NewMatcher(
			strings.Split(name, ""),
			strings.Split(t.NameLowercase, ""),
		).QuickRatio()
		if ratio > best {
			best = ratio
			suggestion = t.Name
			ok = true
		}
	}
	return suggestion, ok
}

func (svc *Service) Join(guildID int64, name string, userID int64, instructor bool) (Team, error) {
	if err := svc.checkLock(guildID, instructor); err != nil {
		return Team{}, err
	}
	t, err := svc.GetByName(guildID, name)
	if err != nil {
		return Team{}, err
	}
	if _, err = svc.repo.GetTeamByMember(guildID, userID); err == nil {
		return Team{}, ErrAlreadyInTeam
	} else if err != ErrNotFound {
		return Team{}, err
	}

	st, err := svc.settingsSvc.Get(guildID)
	if err != nil {
		return Team{}, err
	}
	if st.TeamSize > 0 && len(t.Members) >= st.TeamSize {
		return Team{}, ErrTeamFull
	}

	t.Members = append(t.Members, userID)
	t.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateTeam(t)
}

func (svc *Service) Leave(guildID, userID int64, instructor bool) (Team, error) {
	if err := svc.checkLock(guildID, instructor); err != nil {
		return Team{}, err
	}
	t, err := svc.repo.GetTeamByMember(guildID, userID)
	if err != nil {
		if err == ErrNotFound {
			return Team{}, ErrNotInTeam
		}
		return Team{}, err
	}

	members := make([]int64, 0, len(t.Members))
	for _, id := range t.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	t.Members = members
	t.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateTeam(t)
}

// Rename renames a team and rewrites every other team's peer review
// back-references from the old name to the new one.
func (svc *Service) Rename(guildID int64, name string, rt RenameTeam) (Team, error) {
	t, err := svc.GetByName(guildID, name)
	if err != nil {
		return Team{}, err
	}
	oldName := t.Name

	t.Name = rt.Name
	t.NameLowercase = core.CleanString(rt.Name, true /* lower */)
	t.UpdatedAt = nowFunc().UTC()
	t, err = svc.repo.UpdateTeam(t)
	if err != nil {
		return Team{}, core.NewPersistenceError(err, "renaming team")
	}
	if err = svc.repo.RenamePeerReviewRefs(guildID, oldName, t.Name); err != nil {
		return Team{}, core.NewPersistenceError(err, "rewriting peer review references")
	}
	return t, nil
}

// Delete removes a team and pulls its name out of every other team's peer
// review list so stale names never linger.
func (svc *Service) Delete(guildID int64, name string) error {
	t, err := svc.GetByName(guildID, name)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteTeam(guildID, t.NameLowercase); err != nil {
		return core.NewPersistenceError(err, "deleting team")
	}
	if err = svc.repo.RemovePeerReviewRefs(guildID, t.Name); err != nil {
		return core.NewPersistenceError(err, "cleaning peer review references")
	}
	return nil
}

// Peer review distribution

// StartDistribution computes a fresh peer review distribution for the guild
// and registers it for confirmation. Nothing is persisted until
// ConfirmDistribution is called with the returned token.
func (svc *Service) StartDistribution(guildID int64) (PendingDistribution, error) {
	st, err := svc.settingsSvc.Get(guildID)
	if err != nil {
		return PendingDistribution{}, err
	}

	teams, err := svc.repo.QueryAllTeams(guildID)
	if err != nil {
		return PendingDistribution{}, core.NewPersistenceError(err, "listing teams")
	}
	if len(teams) == 0 {
		return PendingDistribution{}, ErrNoTeams
	}

	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, t.Name)
	}

	// rand.Rand is not safe for concurrent use; each call gets its own.
	dist, err := ComputeDistribution(names, st.PeerReviewSize, newRand())
	if err != nil {
		return PendingDistribution{}, err
	}

	pd := PendingDistribution{
		Token:        uuid.New(),
		GuildID:      guildID,
		Distribution: dist,
		Preview:      dist.Preview(),
		CreatedAt:    nowFunc().UTC(),
	}

	svc.mu.Lock()
	svc.prunePending()
	svc.pending[pd.Token] = pd
	svc.mu.Unlock()

	return pd, nil
}

// ConfirmDistribution applies a previously computed distribution to the
// guild's teams. Teams deleted since computation are silently skipped; the
// operation is idempotent and may safely be re-triggered after a failure.
func (svc *Service) ConfirmDistribution(guildID int64, token uuid.UUID) (applied int, preview string, err error) {
	lock := svc.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	svc.mu.Lock()
	svc.prunePending()
	pd, ok := svc.pending[token]
	svc.mu.Unlock()
	if !ok || pd.GuildID != guildID {
		return 0, "", ErrPendingNotFound
	}

	teams, err := svc.repo.QueryAllTeams(guildID)
	if err != nil {
		return 0, "", core.NewPersistenceError(err, "listing teams")
	}
	for _, t := range teams {
		reviews, ok := pd.Distribution.Reviews(t.Name)
		if !ok {
			continue
		}
		if err = svc.repo.SetPeerReview(guildID, t.NameLowercase, reviews); err != nil {
			// the pending entry is kept so the confirmation can be retried
			return applied, "", core.NewPersistenceError(err, "applying distribution to team "+t.Name)
		}
		applied++
	}

	svc.mu.Lock()
	delete(svc.pending, token)
	svc.mu.Unlock()

	svc.notifyDistributed(guildID, pd)
	return applied, pd.Preview, nil
}

// CancelDistribution discards a pending distribution without applying it.
func (svc *Service) CancelDistribution(guildID int64, token uuid.UUID) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	pd, ok := svc.pending[token]
	if !ok || pd.GuildID != guildID {
		return ErrPendingNotFound
	}
	delete(svc.pending, token)
	return nil
}

func (svc *Service) guildLock(guildID int64) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	lock, ok := svc.guildLocks[guildID]
	if !ok {
		lock = new(sync.Mutex)
		svc.guildLocks[guildID] = lock
	}
	return lock
}

// prunePending drops expired entries. Caller must hold svc.mu.
func (svc *Service) prunePending() {
	deadline := nowFunc().UTC().Add(-svc.conf.PendingDistributionTTL)
	for token, pd := range svc.pending {
		if pd.CreatedAt.Before(deadline) {
			delete(svc.pending, token)
		}
	}
}

// notifyDistributed mails the applied distribution to the guild's contact
// email for record keeping, when one is configured.
func (svc *Service) notifyDistributed(guildID int64, pd PendingDistribution) {
	st, err := svc.settingsSvc.Get(guildID)
	if err != nil || st.ContactEmail == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: st.ContactEmail}},
		Subject: "Peer review distributed",
		BodyStr: fmt.Sprintf(
			"Peer review teams for guild %d were distributed as follows:\n\n%s",
			guildID, pd.Preview,
		),
	})
}
