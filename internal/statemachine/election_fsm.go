package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
)

// Election lifecycle states. They mirror models.Election.Phase: the state
// is derived from the dates and the is_active flag, never stored.
const (
	ElectionStateScheduled = models.ElectionPhaseScheduled
	ElectionStateOpen      = models.ElectionPhaseOpen
	ElectionStatePaused    = models.ElectionPhasePaused
	ElectionStateFinished  = models.ElectionPhaseFinished
)

// Election events
const (
	EventActivate   = "activate"
	EventDeactivate = "deactivate"
	EventClose      = "close"
)

// ElectionFSM wraps an election with its lifecycle state machine
type ElectionFSM struct {
	election *models.Election
	fsm      *fsm.FSM
}

// NewElectionFSM creates the state machine for the election as of now
func NewElectionFSM(election *models.Election, now time.Time) *ElectionFSM {
	efsm := &ElectionFSM{
		election: election,
	}

	efsm.fsm = fsm.NewFSM(
		election.Phase(now),
		fsm.Events{
			// Arming a scheduled election keeps it scheduled until the start date
			{Name: EventActivate, Src: []string{ElectionStateScheduled}, Dst: ElectionStateScheduled},
			{Name: EventActivate, Src: []string{ElectionStatePaused}, Dst: ElectionStateOpen},

			{Name: EventDeactivate, Src: []string{ElectionStateScheduled}, Dst: ElectionStateScheduled},
			{Name: EventDeactivate, Src: []string{ElectionStateOpen}, Dst: ElectionStatePaused},

			// A finished election only ever loses its flag
			{Name: EventClose, Src: []string{ElectionStateFinished}, Dst: ElectionStateFinished},
		},
		fsm.Callbacks{
			"before_" + EventActivate: func(_ context.Context, e *fsm.Event) {
				if election.IsActive {
					e.Cancel(fmt.Errorf("election is already active"))
				}
			},
			"before_" + EventDeactivate: func(_ context.Context, e *fsm.Event) {
				if !election.IsActive {
					e.Cancel(fmt.Errorf("election is not active"))
				}
			},
			"before_" + EventClose: func(_ context.Context, e *fsm.Event) {
				if !election.IsActive {
					e.Cancel(fmt.Errorf("election is already closed"))
				}
			},
		},
	)

	return efsm
}

// fire runs an event. A self-transition (scheduled arming, closing a
// finished election) is reported by looplab/fsm as NoTransitionError.
func (f *ElectionFSM) fire(ctx context.Context, event string) error {
	err := f.fsm.Event(ctx, event)
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return noTransition.Err
	}
	return err
}

// Activate sets is_active on the election
func (f *ElectionFSM) Activate(ctx context.Context) error {
	if err := f.fire(ctx, EventActivate); err != nil {
		return fmt.Errorf("election cannot be activated in state %s: %w", f.fsm.Current(), err)
	}
	f.election.IsActive = true
	return nil
}

// Deactivate clears is_active. An election past its end date is closed
// instead of paused.
func (f *ElectionFSM) Deactivate(ctx context.Context, now time.Time) error {
	event := EventDeactivate
	if f.election.HasEnded(now) {
		event = EventClose
	}
	if err := f.fire(ctx, event); err != nil {
		return fmt.Errorf("election cannot be deactivated in state %s: %w", f.fsm.Current(), err)
	}
	f.election.IsActive = false
	return nil
}

// Close deactivates an election whose end date passed
func (f *ElectionFSM) Close(ctx context.Context) error {
	if err := f.fire(ctx, EventClose); err != nil {
		return fmt.Errorf("failed to close election: %w", err)
	}
	f.election.IsActive = false
	return nil
}

// Current returns the current state
func (f *ElectionFSM) Current() string {
	return f.fsm.Current()
}

// Can checks if a transition is possible
func (f *ElectionFSM) Can(event string) bool {
	return f.fsm.Can(event)
}
