package statemachine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
)

func election(start, end time.Time, active bool) *models.Election {
	return &models.Election{StartDate: start, EndDate: end, IsActive: active}
}

func TestElectionFSM_StateFollowsPhase(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		election *models.Election
		want     string
	}{
		{name: "not started", election: election(now.Add(time.Hour), now.Add(2*time.Hour), true), want: ElectionStateScheduled},
		{name: "running and active", election: election(now.Add(-time.Hour), now.Add(time.Hour), true), want: ElectionStateOpen},
		{name: "running and inactive", election: election(now.Add(-time.Hour), now.Add(time.Hour), false), want: ElectionStatePaused},
		{name: "past end date", election: election(now.Add(-2*time.Hour), now.Add(-time.Hour), true), want: ElectionStateFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewElectionFSM(tt.election, now).Current())
			assert.Equal(t, tt.election.Phase(now), tt.want)
		})
	}
}

func TestElectionFSM_ArmScheduled(t *testing.T) {
	now := time.Now()
	e := election(now.Add(time.Hour), now.Add(2*time.Hour), false)

	f := NewElectionFSM(e, now)
	require.NoError(t, f.Activate(context.Background()))
	assert.True(t, e.IsActive)
	assert.Equal(t, ElectionStateScheduled, f.Current())

	// Arming twice is rejected
	assert.Error(t, f.Activate(context.Background()))

	require.NoError(t, f.Deactivate(context.Background(), now))
	assert.False(t, e.IsActive)
	assert.Equal(t, ElectionStateScheduled, f.Current())
}

func TestElectionFSM_PauseAndResume(t *testing.T) {
	now := time.Now()
	e := election(now.Add(-time.Hour), now.Add(time.Hour), true)

	f := NewElectionFSM(e, now)
	require.NoError(t, f.Deactivate(context.Background(), now))
	assert.False(t, e.IsActive)
	assert.Equal(t, ElectionStatePaused, f.Current())
	assert.Equal(t, models.ElectionPhasePaused, e.Phase(now))

	require.NoError(t, f.Activate(context.Background()))
	assert.True(t, e.IsActive)
	assert.Equal(t, ElectionStateOpen, f.Current())
	assert.Equal(t, models.ElectionPhaseOpen, e.Phase(now))
}

func TestElectionFSM_CannotReactivateFinished(t *testing.T) {
	now := time.Now()
	e := election(now.Add(-2*time.Hour), now.Add(-time.Hour), false)

	f := NewElectionFSM(e, now)
	assert.Equal(t, ElectionStateFinished, f.Current())
	assert.Error(t, f.Activate(context.Background()))
	assert.False(t, e.IsActive)
	assert.Error(t, f.Close(context.Background()))
}

func TestElectionFSM_DeactivateExpiredCloses(t *testing.T) {
	now := time.Now()
	e := election(now.Add(-2*time.Hour), now.Add(-time.Hour), true)

	f := NewElectionFSM(e, now)
	require.NoError(t, f.Deactivate(context.Background(), now))
	assert.Equal(t, ElectionStateFinished, f.Current())
	assert.False(t, e.IsActive)
}

func TestElectionFSM_CloseRequiresEndDate(t *testing.T) {
	now := time.Now()
	e := election(now.Add(-time.Hour), now.Add(time.Hour), true)

	f := NewElectionFSM(e, now)
	assert.False(t, f.Can(EventClose))
	assert.Error(t, f.Close(context.Background()))
	assert.True(t, e.IsActive)
	assert.Equal(t, ElectionStateOpen, f.Current())
}
