package handlers

import (
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	User        *UserHandler
	Election    *ElectionHandler
	VotingPoint *VotingPointHandler
	Candidate   *CandidateHandler
	Slate       *SlateHandler
	Voter       *VoterHandler
	Delegate    *DelegateHandler
	Vote        *VoteHandler
	Statistics  *StatisticsHandler
	Audit       *AuditHandler
	Maintenance *MaintenanceHandler
	Job         *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(),
		Auth:        NewAuthHandler(svcs.Auth, svcs.Audit),
		User:        NewUserHandler(svcs.User),
		Election:    NewElectionHandler(svcs.Election),
		VotingPoint: NewVotingPointHandler(svcs.VotingPoint),
		Candidate:   NewCandidateHandler(svcs.Candidate),
		Slate:       NewSlateHandler(svcs.Slate),
		Voter:       NewVoterHandler(svcs.Voter, svcs.Report),
		Delegate:    NewDelegateHandler(svcs.Delegate),
		Vote:        NewVoteHandler(svcs.Vote, svcs.Statistics),
		Statistics:  NewStatisticsHandler(svcs.Statistics, svcs.Export, svcs.Report),
		Audit:       NewAuditHandler(svcs.Audit),
		Maintenance: NewMaintenanceHandler(svcs.Maintenance),
		Job:         NewJobHandler(svcs.Job),
	}
}
