package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
)

func TestMaintenanceService_CleanupDuplicateProfiles(t *testing.T) {
	f := newFixture(t)
	pointA := f.votingPoint(f.election().ID, nil)
	pointB := f.votingPoint(f.election().ID, nil)

	keep, _ := f.voter(pointA.ID, "1.234.567")
	time.Sleep(time.Millisecond)
	dup := f.store.addProfile("Duplicado", "1234567", "dup@example.com", models.RoleVoter)
	_, err := f.voters.Assign(f.ctx, f.admin(), pointA.ID, dup.ID)
	require.NoError(t, err)
	_, err = f.voters.Assign(f.ctx, f.admin(), pointB.ID, dup.ID)
	require.NoError(t, err)
	f.store.addProfile("Único", "999", "unico@example.com", models.RoleVoter)

	report, err := f.maintenance.CleanupDuplicateProfiles(f.ctx, f.admin())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Groups)
	require.Len(t, report.Merged, 1)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, keep.ID, report.Merged[0].KeptID)
	assert.Equal(t, dup.ID, report.Merged[0].RemovedID)
	assert.Equal(t, 1, report.Merged[0].MovedLinks)

	links, err := f.store.repositories().Voter.FindAllByProfile(f.ctx, keep.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	// The duplicate's link in pointA's election was dropped, not moved
	assert.ElementsMatch(t, []uuid.UUID{pointA.ID, pointB.ID}, []uuid.UUID{links[0].VotingPointID, links[1].VotingPointID})

	_, err = f.users.FindByID(f.ctx, dup.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, f.store.auditActions(), models.AuditActionCleanup)
}

func TestMaintenanceService_CleanupDuplicateProfiles_KeepsProfilesWithVotes(t *testing.T) {
	f := newFixture(t)
	election := f.election()
	pointA := f.votingPoint(election.ID, nil)
	pointB := f.votingPoint(election.ID, nil)
	slate := f.slate(pointB.ID, "Plancha Azul")

	f.voter(pointA.ID, "55-66")
	time.Sleep(time.Millisecond)
	dup, _ := f.voter(pointB.ID, "5566")

	f.openElection(election.ID)
	_, err := f.votes.Cast(f.ctx, voterActor(dup.ID), slate.ID)
	require.NoError(t, err)

	report, err := f.maintenance.CleanupDuplicateProfiles(f.ctx, f.admin())
	require.NoError(t, err)
	assert.Empty(t, report.Merged)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, dup.ID, report.Skipped[0].ProfileID)

	_, err = f.users.FindByID(f.ctx, dup.ID)
	assert.NoError(t, err)
}

func TestMaintenanceService_CleanupOrphanedUsers(t *testing.T) {
	f := newFixture(t)

	old := uuid.New()
	fresh := uuid.New()
	f.store.users[old] = &models.User{ID: old, Email: "old@example.com", CreatedAt: f.now.Add(-2 * time.Hour)}
	f.store.users[fresh] = &models.User{ID: fresh, Email: "fresh@example.com", CreatedAt: f.now.Add(-time.Minute)}
	f.store.addProfile("Con Perfil", "123", "perfil@example.com", models.RoleVoter)

	deleted, err := f.maintenance.CleanupOrphanedUsers(f.ctx, SystemActor)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NotContains(t, f.store.users, old)
	assert.Contains(t, f.store.users, fresh)
	assert.Len(t, f.store.users, 2)
}
