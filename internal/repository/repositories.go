package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Profile      ProfileRepository
	RefreshToken RefreshTokenRepository
	Election     ElectionRepository
	VotingPoint  VotingPointRepository
	Candidate    CandidateRepository
	Slate        SlateRepository
	Voter        VoterRepository
	Vote         VoteRepository
	Audit        AuditRepository
	Statistics   StatisticsRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Profile:      NewProfileRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Election:     NewElectionRepository(db),
		VotingPoint:  NewVotingPointRepository(db),
		Candidate:    NewCandidateRepository(db),
		Slate:        NewSlateRepository(db),
		Voter:        NewVoterRepository(db),
		Vote:         NewVoteRepository(db),
		Audit:        NewAuditRepository(db),
		Statistics:   NewStatisticsRepository(db),
	}
}
