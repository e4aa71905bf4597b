package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/voxpopuly/voxpopuly-api/internal/database"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
)

// setupPostgres starts a disposable Postgres container and applies the
// embedded migrations
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "voxpopuly",
			"POSTGRES_PASSWORD": "voxpopuly",
			"POSTGRES_DB":       "voxpopuly_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://voxpopuly:voxpopuly@%s:%s/voxpopuly_test?sslmode=disable", host, port.Port())
	db, err := database.Connect(dsn, "production")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, database.Migrate(db))
	// A second run finds nothing to apply
	require.NoError(t, database.Migrate(db))
	return db
}

func createProfile(t *testing.T, repos *repository.Repositories, role, document string) *models.Profile {
	t.Helper()
	user := &models.User{
		Email:             document + "@voxpopuly.test",
		EncryptedPassword: "not-a-real-hash",
	}
	profile := &models.Profile{FullName: "Perfil " + document, Document: document, Role: role}
	require.NoError(t, repos.User.CreateWithProfile(context.Background(), user, profile))
	require.Equal(t, user.ID, profile.ID)
	return profile
}

func TestPostgres_VoteFlow(t *testing.T) {
	db := setupPostgres(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	delegate := createProfile(t, repos, models.RoleDelegate, "D-100")
	voterProfile := createProfile(t, repos, models.RoleVoter, "V-200")

	user := &models.User{Email: "otro@voxpopuly.test", EncryptedPassword: "x"}
	err := repos.User.CreateWithProfile(ctx, user, &models.Profile{FullName: "Duplicado", Document: "V-200", Role: models.RoleVoter})
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))

	election := &models.Election{
		Title:     "Consejo Estudiantil",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
		IsActive:  true,
	}
	require.NoError(t, repos.Election.Create(ctx, election))

	point := &models.VotingPoint{ElectionID: election.ID, DelegateID: &delegate.ID, Name: "Mesa 1", Location: "Biblioteca"}
	require.NoError(t, repos.VotingPoint.CreateWithBlankVote(ctx, point))

	// A delegate runs at most one voting point
	second := &models.VotingPoint{ElectionID: election.ID, DelegateID: &delegate.ID, Name: "Mesa 2"}
	err = repos.VotingPoint.CreateWithBlankVote(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	slates, err := repos.Slate.ListByVotingPoint(ctx, point.ID)
	require.NoError(t, err)
	require.Len(t, slates, 1)
	assert.True(t, slates[0].IsSystem)
	assert.Equal(t, models.BlankVoteName, slates[0].Name)

	candidate := &models.Candidate{VotingPointID: point.ID, FullName: "Ana Pérez", Position: "Presidenta"}
	require.NoError(t, repos.Candidate.Create(ctx, candidate))

	slate := &models.Slate{VotingPointID: point.ID, Name: "Lista Azul"}
	require.NoError(t, repos.Slate.Create(ctx, slate, []models.SlateMember{{CandidateID: candidate.ID, Role: "Presidenta"}}))

	voter := &models.Voter{ProfileID: voterProfile.ID, VotingPointID: point.ID, ElectionID: election.ID}
	require.NoError(t, repos.Voter.Create(ctx, voter))

	linked, err := repos.Voter.LinkIgnoreDuplicates(ctx, voterProfile.ID, point)
	require.NoError(t, err)
	assert.False(t, linked)

	// One voting point per profile and election
	third := &models.VotingPoint{ElectionID: election.ID, Name: "Mesa 3"}
	require.NoError(t, repos.VotingPoint.CreateWithBlankVote(ctx, third))
	err = repos.Voter.Create(ctx, &models.Voter{ProfileID: voterProfile.ID, VotingPointID: third.ID, ElectionID: election.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "otro punto de votación")

	linked, err = repos.Voter.LinkIgnoreDuplicates(ctx, voterProfile.ID, third)
	require.NoError(t, err)
	assert.False(t, linked)

	found, err := repos.Voter.FindInElection(ctx, voterProfile.ID, election.ID)
	require.NoError(t, err)
	assert.Equal(t, point.ID, found.VotingPointID)

	current, err := repos.Voter.FindByProfile(ctx, voterProfile.ID)
	require.NoError(t, err)
	assert.Equal(t, voter.ID, current.ID)
	assert.Equal(t, election.ID, current.VotingPoint.Election.ID)

	require.NoError(t, repos.Vote.Create(ctx, &models.Vote{VoterID: voter.ID, SlateID: slate.ID}))
	require.NoError(t, repos.Slate.IncrementVoteCount(ctx, slate.ID))
	require.NoError(t, repos.Voter.MarkVoted(ctx, voter.ID, time.Now()))

	// One vote per voter
	err = repos.Vote.Create(ctx, &models.Vote{VoterID: voter.ID, SlateID: slates[0].ID})
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))

	total, voted, err := repos.Voter.CountByVotingPoint(ctx, point.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), voted)

	turnout, err := repos.Statistics.VotingPointTurnout(ctx, election.ID)
	require.NoError(t, err)
	require.Len(t, turnout, 2)
	assert.Equal(t, point.ID, turnout[0].VotingPointID)
	assert.Equal(t, "Perfil D-100", turnout[0].DelegateName)
	assert.Equal(t, int64(1), turnout[0].TotalVoters)
	assert.Equal(t, int64(1), turnout[0].TotalVoted)

	results, err := repos.Statistics.SlateResults(ctx, election.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, slate.ID, results[0].SlateID)
	assert.Equal(t, int64(1), results[0].VoteCount)
	assert.Equal(t, int64(0), results[1].VoteCount)
	assert.Equal(t, int64(0), results[2].VoteCount)

	count, err := repos.Statistics.CountVotes(ctx, election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repos.Statistics.CountVotes(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
}
