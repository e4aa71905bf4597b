package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"gorm.io/gorm"
)

// VotingPointRepository defines the interface for voting point data access
type VotingPointRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.VotingPoint, error)
	FindByDelegate(ctx context.Context, delegateID uuid.UUID) (*models.VotingPoint, error)
	FindByDelegates(ctx context.Context, delegateIDs []uuid.UUID) ([]models.VotingPoint, error)
	ListByElection(ctx context.Context, electionID uuid.UUID) ([]models.VotingPoint, error)
	CreateWithBlankVote(ctx context.Context, point *models.VotingPoint) error
	Update(ctx context.Context, point *models.VotingPoint) error
	Delete(ctx context.Context, id uuid.UUID) error
	IsDelegateAssigned(ctx context.Context, delegateID uuid.UUID, exceptPointID *uuid.UUID) (bool, error)
	UnassignDelegate(ctx context.Context, delegateID uuid.UUID) error
	FindAvailableDelegates(ctx context.Context) ([]models.Profile, error)
	Count(ctx context.Context) (int64, error)
}

type votingPointRepository struct {
	db *gorm.DB
}

// NewVotingPointRepository creates a new voting point repository
func NewVotingPointRepository(db *gorm.DB) VotingPointRepository {
	return &votingPointRepository{db: db}
}

// voterCounts loads only the columns needed to count voters per point
func voterCounts(db *gorm.DB) *gorm.DB {
	return db.Select("id", "voting_point_id", "has_voted")
}

func (r *votingPointRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.VotingPoint, error) {
	var point models.VotingPoint
	err := r.db.WithContext(ctx).
		Joins("Election").
		Preload("Delegate.User").
		Preload("Slates").
		Preload("Voters", voterCounts).
		First(&point, "voting_points.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func (r *votingPointRepository) FindByDelegate(ctx context.Context, delegateID uuid.UUID) (*models.VotingPoint, error) {
	var point models.VotingPoint
	err := r.db.WithContext(ctx).
		Joins("Election").
		Preload("Delegate").
		Preload("Slates", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_system ASC, name ASC")
		}).
		Preload("Slates.Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Slates.Members.Candidate").
		Preload("Voters", voterCounts).
		Where("voting_points.delegate_id = ?", delegateID).
		First(&point).Error
	if err != nil {
		return nil, err
	}
	return &point, nil
}

// FindByDelegates returns the voting points run by any of the delegates
func (r *votingPointRepository) FindByDelegates(ctx context.Context, delegateIDs []uuid.UUID) ([]models.VotingPoint, error) {
	var points []models.VotingPoint
	if len(delegateIDs) == 0 {
		return points, nil
	}
	err := r.db.WithContext(ctx).
		Joins("Election").
		Where("voting_points.delegate_id IN ?", delegateIDs).
		Find(&points).Error
	return points, err
}

func (r *votingPointRepository) ListByElection(ctx context.Context, electionID uuid.UUID) ([]models.VotingPoint, error) {
	var points []models.VotingPoint
	err := r.db.WithContext(ctx).
		Preload("Delegate").
		Preload("Slates").
		Preload("Voters", voterCounts).
		Where("election_id = ?", electionID).
		Order("name ASC").
		Find(&points).Error
	return points, err
}

// CreateWithBlankVote inserts the voting point together with its protected
// blank vote candidate and slate
func (r *votingPointRepository) CreateWithBlankVote(ctx context.Context, point *models.VotingPoint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Election", "Delegate", "Candidates", "Slates", "Voters").Create(point).Error; err != nil {
			return err
		}

		candidate := &models.Candidate{
			VotingPointID: point.ID,
			FullName:      models.BlankVoteName,
			IsSystem:      true,
		}
		if err := tx.Omit("VotingPoint").Create(candidate).Error; err != nil {
			return err
		}

		slate := &models.Slate{
			VotingPointID: point.ID,
			Name:          models.BlankVoteName,
			IsSystem:      true,
		}
		if err := tx.Omit("VotingPoint", "Members").Create(slate).Error; err != nil {
			return err
		}

		return tx.Create(&models.SlateMember{
			SlateID:     slate.ID,
			CandidateID: candidate.ID,
		}).Error
	})
	if isDuplicateKeyError(err, "voting_points_delegate_id_key") {
		return fmt.Errorf("%w: el delegado ya está asignado a otro punto de votación", ErrDuplicateKey)
	}
	return err
}

func (r *votingPointRepository) Update(ctx context.Context, point *models.VotingPoint) error {
	err := r.db.WithContext(ctx).
		Model(&models.VotingPoint{}).
		Where("id = ?", point.ID).
		Updates(map[string]interface{}{
			"name":        point.Name,
			"location":    point.Location,
			"delegate_id": point.DelegateID,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
	if isDuplicateKeyError(err, "voting_points_delegate_id_key") {
		return fmt.Errorf("%w: el delegado ya está asignado a otro punto de votación", ErrDuplicateKey)
	}
	return err
}

func (r *votingPointRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.VotingPoint{}, "id = ?", id).Error
}

// IsDelegateAssigned reports whether the delegate runs any voting point,
// optionally ignoring one point (the one being updated)
func (r *votingPointRepository) IsDelegateAssigned(ctx context.Context, delegateID uuid.UUID, exceptPointID *uuid.UUID) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&models.VotingPoint{}).
		Where("delegate_id = ?", delegateID)
	if exceptPointID != nil {
		db = db.Where("id <> ?", *exceptPointID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *votingPointRepository) UnassignDelegate(ctx context.Context, delegateID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.VotingPoint{}).
		Where("delegate_id = ?", delegateID).
		Update("delegate_id", nil).Error
}

// FindAvailableDelegates returns delegate profiles not assigned to any
// voting point
func (r *votingPointRepository) FindAvailableDelegates(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("role = ?", models.RoleDelegate).
		Where("NOT EXISTS (SELECT 1 FROM voting_points vp WHERE vp.delegate_id = profiles.id)").
		Order("full_name ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *votingPointRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VotingPoint{}).Count(&count).Error
	return count, err
}

// CandidateRepository defines the interface for candidate data access
type CandidateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID) ([]models.Candidate, error)
	CountInVotingPoint(ctx context.Context, votingPointID uuid.UUID, ids []uuid.UUID) (int64, error)
	Create(ctx context.Context, candidate *models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).
		Preload("VotingPoint.Election").
		First(&candidate, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.WithContext(ctx).
		Where("voting_point_id = ?", votingPointID).
		Order("is_system ASC, full_name ASC").
		Find(&candidates).Error
	return candidates, err
}

// CountInVotingPoint counts how many of ids are candidates of the point
func (r *candidateRepository) CountInVotingPoint(ctx context.Context, votingPointID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("voting_point_id = ? AND id IN ?", votingPointID, ids).
		Count(&count).Error
	return count, err
}

func (r *candidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	return r.db.WithContext(ctx).Omit("VotingPoint").Create(candidate).Error
}

func (r *candidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	return r.db.WithContext(ctx).Omit("VotingPoint").Save(candidate).Error
}

// Delete removes the candidate and its slate memberships
func (r *candidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("candidate_id = ?", id).Delete(&models.SlateMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Candidate{}, "id = ?", id).Error
	})
}
