package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VotingPointTurnout is the per voting point aggregation row
type VotingPointTurnout struct {
	VotingPointID uuid.UUID
	Name          string
	Location      string
	DelegateName  string
	TotalVoters   int64
	TotalVoted    int64
}

// SlateResult is the per slate aggregation row
type SlateResult struct {
	SlateID       uuid.UUID
	VotingPointID uuid.UUID
	Name          string
	IsSystem      bool
	VoteCount     int64
}

// StatisticsRepository runs the aggregation queries behind election results
type StatisticsRepository interface {
	VotingPointTurnout(ctx context.Context, electionID uuid.UUID) ([]VotingPointTurnout, error)
	SlateResults(ctx context.Context, electionID uuid.UUID) ([]SlateResult, error)
	CountVotes(ctx context.Context, electionID uuid.UUID) (int64, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

// NewStatisticsRepository creates a new statistics repository
func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) VotingPointTurnout(ctx context.Context, electionID uuid.UUID) ([]VotingPointTurnout, error) {
	var rows []VotingPointTurnout
	err := r.db.WithContext(ctx).
		Table("voting_points AS vp").
		Select(`vp.id AS voting_point_id, vp.name, vp.location,
			COALESCE(d.full_name, '') AS delegate_name,
			COUNT(v.id) AS total_voters,
			COALESCE(SUM(CASE WHEN v.has_voted THEN 1 ELSE 0 END), 0) AS total_voted`).
		Joins("LEFT JOIN profiles d ON d.id = vp.delegate_id").
		Joins("LEFT JOIN voters v ON v.voting_point_id = vp.id").
		Where("vp.election_id = ?", electionID).
		Group("vp.id, vp.name, vp.location, d.full_name").
		Order("vp.name ASC").
		Scan(&rows).Error
	return rows, err
}

// SlateResults reads vote_count from slates; CountVotes counts vote rows so
// the two can be compared
func (r *statisticsRepository) SlateResults(ctx context.Context, electionID uuid.UUID) ([]SlateResult, error) {
	var rows []SlateResult
	err := r.db.WithContext(ctx).
		Table("slates AS s").
		Select("s.id AS slate_id, s.voting_point_id, s.name, s.is_system, s.vote_count").
		Joins("JOIN voting_points vp ON vp.id = s.voting_point_id").
		Where("vp.election_id = ?", electionID).
		Order("s.vote_count DESC, s.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *statisticsRepository) CountVotes(ctx context.Context, electionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("votes").
		Joins("JOIN voters ON voters.id = votes.voter_id").
		Joins("JOIN voting_points vp ON vp.id = voters.voting_point_id").
		Where("vp.election_id = ?", electionID).
		Count(&count).Error
	return count, err
}
