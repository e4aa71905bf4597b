package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// fixture wires the services on top of a memStore with a controllable clock
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memStore
	now   time.Time

	audit       *AuditService
	elections   *ElectionService
	points      *VotingPointService
	candidates  *CandidateService
	slates      *SlateService
	voters      *VoterService
	delegates   *DelegateService
	votes       *VoteService
	statistics  *StatisticsService
	maintenance *MaintenanceService
	users       *UserService
}

var fixtureStart = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Setup("test")

	store := newMemStore()
	repos := store.repositories()
	f := &fixture{t: t, ctx: context.Background(), store: store, now: fixtureStart}
	clock := func() time.Time { return f.now }

	f.audit = NewAuditService(repos.Audit)
	f.elections = NewElectionService(repos.Election, f.audit, nil)
	f.elections.now = clock
	f.points = NewVotingPointService(repos.VotingPoint, repos.Election, repos.Profile, f.audit)
	f.points.now = clock
	f.candidates = NewCandidateService(repos.Candidate, repos.VotingPoint, f.audit)
	f.candidates.now = clock
	f.slates = NewSlateService(repos.Slate, repos.VotingPoint, repos.Candidate, f.audit, NewImageService(), nil)
	f.slates.now = clock
	f.voters = NewVoterService(repos.Voter, repos.VotingPoint, repos.User, repos.Profile, f.audit, nil, nil)
	f.voters.hash = func(pin string) (string, error) { return "hashed:" + pin, nil }
	f.delegates = NewDelegateService(repos.User, repos.Profile, repos.VotingPoint, f.audit, nil, nil)
	f.votes = NewVoteService(repos.Voter, repos.Slate, repos.Vote, f.audit, nil)
	f.votes.now = clock
	f.statistics = NewStatisticsService(repos.Statistics, repos.Election, repos.VotingPoint, repos.Profile, repos.Voter, repos.Vote, repos.Slate, nil)
	f.statistics.now = clock
	f.maintenance = NewMaintenanceService(repos.User, repos.Profile, repos.Voter, repos.Vote, f.audit)
	f.maintenance.now = clock
	f.users = NewUserService(repos.User, repos.Profile, f.audit)
	return f
}

func (f *fixture) admin() Actor {
	return Actor{UserID: uuid.New(), Role: models.RoleAdmin, IP: "10.0.0.1", UserAgent: "test"}
}

// election creates an election that opens one hour after the fixture clock
func (f *fixture) election() *models.Election {
	f.t.Helper()
	e, err := f.elections.Create(f.ctx, f.admin(), ElectionInput{
		Title:     "Consejo Estudiantil",
		StartDate: f.now.Add(time.Hour),
		EndDate:   f.now.Add(9 * time.Hour),
	})
	require.NoError(f.t, err)
	return e
}

func (f *fixture) votingPoint(electionID uuid.UUID, delegateID *uuid.UUID) *models.VotingPoint {
	f.t.Helper()
	p, err := f.points.Create(f.ctx, f.admin(), VotingPointInput{
		ElectionID: electionID,
		Name:       "Mesa " + uuid.NewString()[:4],
		Location:   "Bloque A",
		DelegateID: delegateID,
	})
	require.NoError(f.t, err)
	return p
}

func (f *fixture) slate(pointID uuid.UUID, name string) *models.Slate {
	f.t.Helper()
	c, err := f.candidates.Create(f.ctx, f.admin(), CandidateInput{VotingPointID: pointID, FullName: name + " Candidato", Position: "Presidente"})
	require.NoError(f.t, err)
	s, err := f.slates.Create(f.ctx, f.admin(), SlateInput{
		VotingPointID: pointID,
		Name:          name,
		Members:       []SlateMemberInput{{CandidateID: c.ID, Role: "Presidente", Position: 1}},
	})
	require.NoError(f.t, err)
	return s
}

// voter seeds a voter profile and assigns it to the point
func (f *fixture) voter(pointID uuid.UUID, document string) (*models.Profile, *models.Voter) {
	f.t.Helper()
	p := f.store.addProfile("Votante "+document, document, document+"@example.com", models.RoleVoter)
	v, err := f.voters.Assign(f.ctx, f.admin(), pointID, p.ID)
	require.NoError(f.t, err)
	return p, v
}

func (f *fixture) openElection(id uuid.UUID) {
	f.t.Helper()
	f.now = fixtureStart.Add(2 * time.Hour)
	e, err := f.elections.ToggleActive(f.ctx, f.admin(), id)
	require.NoError(f.t, err)
	require.True(f.t, e.IsActive)
}

func voterActor(profileID uuid.UUID) Actor {
	return Actor{UserID: profileID, Role: models.RoleVoter, IP: "10.0.0.9"}
}
