package services

import (
	"github.com/voxpopuly/voxpopuly-api/internal/cache"
	"github.com/voxpopuly/voxpopuly-api/internal/config"
	"github.com/voxpopuly/voxpopuly-api/internal/jobs"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth        *AuthService
	User        *UserService
	Audit       *AuditService
	Election    *ElectionService
	VotingPoint *VotingPointService
	Candidate   *CandidateService
	Slate       *SlateService
	Voter       *VoterService
	Delegate    *DelegateService
	Vote        *VoteService
	Statistics  *StatisticsService
	Export      *ExportService
	Report      *ReportService
	Maintenance *MaintenanceService
	Email       *EmailService
	Job         *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, statsCache *cache.StatsCache, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.Audit)
	emailSvc := NewEmailService(cfg)
	imageSvc := NewImageService()

	electionSvc := NewElectionService(repos.Election, auditSvc, statsCache)
	statsSvc := NewStatisticsService(repos.Statistics, repos.Election, repos.VotingPoint, repos.Profile, repos.Voter, repos.Vote, repos.Slate, statsCache)
	maintenanceSvc := NewMaintenanceService(repos.User, repos.Profile, repos.Voter, repos.Vote, auditSvc)

	return &Services{
		Auth:        NewAuthService(repos.User, repos.Profile, repos.RefreshToken, cfg),
		User:        NewUserService(repos.User, repos.Profile, auditSvc),
		Audit:       auditSvc,
		Election:    electionSvc,
		VotingPoint: NewVotingPointService(repos.VotingPoint, repos.Election, repos.Profile, auditSvc),
		Candidate:   NewCandidateService(repos.Candidate, repos.VotingPoint, auditSvc),
		Slate:       NewSlateService(repos.Slate, repos.VotingPoint, repos.Candidate, auditSvc, imageSvc, store),
		Voter:       NewVoterService(repos.Voter, repos.VotingPoint, repos.User, repos.Profile, auditSvc, emailSvc, worker),
		Delegate:    NewDelegateService(repos.User, repos.Profile, repos.VotingPoint, auditSvc, emailSvc, worker),
		Vote:        NewVoteService(repos.Voter, repos.Slate, repos.Vote, auditSvc, statsCache),
		Statistics:  statsSvc,
		Export:      NewExportService(statsSvc),
		Report:      NewReportService(statsSvc, repos.VotingPoint, repos.Voter),
		Maintenance: maintenanceSvc,
		Email:       emailSvc,
		Job:         NewJobService(worker, electionSvc, statsSvc, maintenanceSvc),
	}
}
