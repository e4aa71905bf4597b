package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoterRepository defines the interface for voter assignment data access
type VoterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Voter, error)
	FindByProfile(ctx context.Context, profileID uuid.UUID) (*models.Voter, error)
	FindAllByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Voter, error)
	Exists(ctx context.Context, profileID, votingPointID uuid.UUID) (bool, error)
	FindInElection(ctx context.Context, profileID, electionID uuid.UUID) (*models.Voter, error)
	ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID, query *ListQuery) ([]models.Voter, int64, error)
	Create(ctx context.Context, voter *models.Voter) error
	LinkIgnoreDuplicates(ctx context.Context, profileID uuid.UUID, point *models.VotingPoint) (bool, error)
	MarkVoted(ctx context.Context, id uuid.UUID, at time.Time) error
	MoveToProfile(ctx context.Context, id, profileID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByVotingPoint(ctx context.Context, votingPointID uuid.UUID) (total, voted int64, err error)
	Count(ctx context.Context) (total, voted int64, err error)
}

type voterRepository struct {
	db *gorm.DB
}

// NewVoterRepository creates a new voter repository
func NewVoterRepository(db *gorm.DB) VoterRepository {
	return &voterRepository{db: db}
}

func (r *voterRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Voter, error) {
	var voter models.Voter
	err := r.db.WithContext(ctx).
		Preload("Profile.User").
		Preload("VotingPoint.Election").
		First(&voter, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &voter, nil
}

// FindByProfile returns the caller's voter record with its voting point and
// election. A profile has at most one link per election; links in an open
// election come first, then links still pending a vote.
func (r *voterRepository) FindByProfile(ctx context.Context, profileID uuid.UUID) (*models.Voter, error) {
	var voter models.Voter
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("VotingPoint.Election").
		Select("voters.*").
		Joins("JOIN elections e ON e.id = voters.election_id").
		Where("voters.profile_id = ?", profileID).
		Order("(e.is_active AND e.start_date <= NOW() AND e.end_date >= NOW()) DESC, voters.has_voted ASC, voters.created_at DESC").
		First(&voter).Error
	if err != nil {
		return nil, err
	}
	return &voter, nil
}

func (r *voterRepository) FindAllByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Voter, error) {
	var voters []models.Voter
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC").
		Find(&voters).Error
	return voters, err
}

func (r *voterRepository) Exists(ctx context.Context, profileID, votingPointID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Voter{}).
		Where("profile_id = ? AND voting_point_id = ?", profileID, votingPointID).
		Count(&count).Error
	return count > 0, err
}

// FindInElection returns the profile's link to any voting point of the
// election
func (r *voterRepository) FindInElection(ctx context.Context, profileID, electionID uuid.UUID) (*models.Voter, error) {
	var voter models.Voter
	err := r.db.WithContext(ctx).
		Preload("VotingPoint").
		Where("profile_id = ? AND election_id = ?", profileID, electionID).
		First(&voter).Error
	if err != nil {
		return nil, err
	}
	return &voter, nil
}

func (r *voterRepository) ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID, query *ListQuery) ([]models.Voter, int64, error) {
	var voters []models.Voter
	var total int64

	db := r.db.WithContext(ctx).
		Model(&models.Voter{}).
		Joins("Profile").
		Where("voters.voting_point_id = ?", votingPointID)

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where(`"Profile".full_name ILIKE ? OR "Profile".document ILIKE ?`, search, search)
	}

	switch query.Filters["has_voted"] {
	case "true":
		db = db.Where("voters.has_voted = ?", true)
	case "false":
		db = db.Where("voters.has_voted = ?", false)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, `"Profile".full_name ASC`, map[string]bool{
		"voters.created_at": true, "voters.voted_at": true,
	})

	err := db.Preload("Profile.User").Find(&voters).Error
	return voters, total, err
}

func (r *voterRepository) Create(ctx context.Context, voter *models.Voter) error {
	err := r.db.WithContext(ctx).Omit("Profile", "VotingPoint").Create(voter).Error
	switch {
	case isDuplicateKeyError(err, "voters_profile_point_key"):
		return fmt.Errorf("%w: el votante ya está asignado a este punto de votación", ErrDuplicateKey)
	case isDuplicateKeyError(err, "voters_profile_election_key"):
		return fmt.Errorf("%w: el votante ya está asignado a otro punto de votación de esta elección", ErrDuplicateKey)
	}
	return err
}

// LinkIgnoreDuplicates links a profile to a voting point, doing nothing when
// the profile is already linked to a point of the same election. It reports
// whether a row was inserted.
func (r *voterRepository) LinkIgnoreDuplicates(ctx context.Context, profileID uuid.UUID, point *models.VotingPoint) (bool, error) {
	voter := &models.Voter{
		ID:            uuid.New(),
		ProfileID:     profileID,
		VotingPointID: point.ID,
		ElectionID:    point.ElectionID,
	}
	result := r.db.WithContext(ctx).
		Omit("Profile", "VotingPoint").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "election_id"}},
			DoNothing: true,
		}).
		Create(voter)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkVoted flips has_voted on a voter that has not voted yet
func (r *voterRepository) MarkVoted(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Voter{}).
		Where("id = ? AND has_voted = ?", id, false).
		Updates(map[string]interface{}{
			"has_voted":  true,
			"voted_at":   at,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("el votante ya fue marcado como votado")
	}
	return nil
}

func (r *voterRepository) MoveToProfile(ctx context.Context, id, profileID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Voter{}).
		Where("id = ?", id).
		Update("profile_id", profileID).Error
	if isDuplicateKeyError(err, "voters_profile_election_key") || isDuplicateKeyError(err, "voters_profile_point_key") {
		return fmt.Errorf("%w: el perfil ya está asignado en esta elección", ErrDuplicateKey)
	}
	return err
}

func (r *voterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Voter{}, "id = ?", id).Error
}

type voterTotals struct {
	Total int64
	Voted int64
}

func (r *voterRepository) CountByVotingPoint(ctx context.Context, votingPointID uuid.UUID) (int64, int64, error) {
	var t voterTotals
	err := r.db.WithContext(ctx).
		Model(&models.Voter{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN has_voted THEN 1 ELSE 0 END), 0) AS voted").
		Where("voting_point_id = ?", votingPointID).
		Scan(&t).Error
	return t.Total, t.Voted, err
}

func (r *voterRepository) Count(ctx context.Context) (int64, int64, error) {
	var t voterTotals
	err := r.db.WithContext(ctx).
		Model(&models.Voter{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN has_voted THEN 1 ELSE 0 END), 0) AS voted").
		Scan(&t).Error
	return t.Total, t.Voted, err
}

// VoteRepository defines the interface for the append-only votes table
type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByProfile(ctx context.Context, profileID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Create inserts the vote. A second vote for the same voter violates
// votes_voter_id_key and returns ErrDuplicateKey.
func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	err := r.db.WithContext(ctx).Create(vote).Error
	if isDuplicateKeyError(err, "votes_voter_id_key") {
		return ErrDuplicateKey
	}
	return err
}

func (r *voteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Vote{}, "id = ?", id).Error
}

// CountByProfile counts votes cast through any voter link of the profile
func (r *voteRepository) CountByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Joins("JOIN voters ON voters.id = votes.voter_id").
		Where("voters.profile_id = ?", profileID).
		Count(&count).Error
	return count, err
}

func (r *voteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).Count(&count).Error
	return count, err
}
