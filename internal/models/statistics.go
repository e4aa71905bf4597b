package models

import (
	"time"

	"github.com/google/uuid"
)

// ElectionStatistics aggregates turnout and results of one election
type ElectionStatistics struct {
	ElectionID   uuid.UUID              `json:"election_id"`
	Title        string                 `json:"title"`
	Phase        string                 `json:"phase"`
	StartDate    time.Time              `json:"start_date"`
	EndDate      time.Time              `json:"end_date"`
	TotalVoters  int64                  `json:"total_voters"`
	TotalVoted   int64                  `json:"total_voted"`
	TotalVotes   int64                  `json:"total_votes"`
	Turnout      float64                `json:"turnout"`
	VotingPoints []VotingPointStatistic `json:"voting_points"`
	GeneratedAt  time.Time              `json:"generated_at"`
}

// VotingPointStatistic holds turnout and slate results of one voting point
type VotingPointStatistic struct {
	VotingPointID uuid.UUID        `json:"voting_point_id"`
	Name          string           `json:"name"`
	Location      string           `json:"location"`
	DelegateName  string           `json:"delegate_name"`
	TotalVoters   int64            `json:"total_voters"`
	TotalVoted    int64            `json:"total_voted"`
	Turnout       float64          `json:"turnout"`
	Slates        []SlateStatistic `json:"slates"`
}

// SlateStatistic holds the result of one slate
type SlateStatistic struct {
	SlateID    uuid.UUID `json:"slate_id"`
	Name       string    `json:"name"`
	IsSystem   bool      `json:"is_system"`
	VoteCount  int64     `json:"vote_count"`
	Percentage float64   `json:"percentage"`
}

// AdminDashboard is the summary shown to administrators
type AdminDashboard struct {
	Elections       int64   `json:"elections"`
	ActiveElections int64   `json:"active_elections"`
	VotingPoints    int64   `json:"voting_points"`
	Delegates       int64   `json:"delegates"`
	Voters          int64   `json:"voters"`
	VotesCast       int64   `json:"votes_cast"`
	Turnout         float64 `json:"turnout"`
}

// Percent returns part/total as a percentage rounded to two decimals
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	v := float64(part) * 100 / float64(total)
	return float64(int64(v*100+0.5)) / 100
}

// DelegateDashboard is the summary of the voting point run by a delegate
type DelegateDashboard struct {
	VotingPoint VotingPointResponse `json:"voting_point"`
	Election    ElectionResponse    `json:"election"`
	Slates      []SlateResponse     `json:"slates"`
	TotalVoters int64               `json:"total_voters"`
	TotalVoted  int64               `json:"total_voted"`
	Turnout     float64             `json:"turnout"`
}

// VoterBallot is what a voter sees before casting a vote. Slates carry no
// vote counts.
type VoterBallot struct {
	VotingPointID uuid.UUID        `json:"voting_point_id"`
	VotingPoint   string           `json:"voting_point"`
	Location      string           `json:"location"`
	Election      ElectionResponse `json:"election"`
	CanVote       bool             `json:"can_vote"`
	HasVoted      bool             `json:"has_voted"`
	VotedAt       *time.Time       `json:"voted_at"`
	Slates        []SlateResponse  `json:"slates"`
}
