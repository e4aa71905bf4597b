package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"gorm.io/gorm"
)

// SlateRepository defines the interface for slate data access
type SlateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Slate, error)
	ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID) ([]models.Slate, error)
	Create(ctx context.Context, slate *models.Slate, members []models.SlateMember) error
	Update(ctx context.Context, slate *models.Slate) error
	ReplaceMembers(ctx context.Context, slateID uuid.UUID, members []models.SlateMember) error
	UpdateLogo(ctx context.Context, id uuid.UUID, path string) error
	IncrementVoteCount(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type slateRepository struct {
	db *gorm.DB
}

// NewSlateRepository creates a new slate repository
func NewSlateRepository(db *gorm.DB) SlateRepository {
	return &slateRepository{db: db}
}

func orderedMembers(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *slateRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Slate, error) {
	var slate models.Slate
	err := r.db.WithContext(ctx).
		Preload("VotingPoint.Election").
		Preload("Members", orderedMembers).
		Preload("Members.Candidate").
		First(&slate, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &slate, nil
}

func (r *slateRepository) ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID) ([]models.Slate, error) {
	var slates []models.Slate
	err := r.db.WithContext(ctx).
		Preload("Members", orderedMembers).
		Preload("Members.Candidate").
		Where("voting_point_id = ?", votingPointID).
		Order("is_system ASC, name ASC").
		Find(&slates).Error
	return slates, err
}

func (r *slateRepository) Create(ctx context.Context, slate *models.Slate, members []models.SlateMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("VotingPoint", "Members").Create(slate).Error; err != nil {
			return err
		}
		return insertMembers(tx, slate.ID, members)
	})
}

func (r *slateRepository) Update(ctx context.Context, slate *models.Slate) error {
	return r.db.WithContext(ctx).
		Model(&models.Slate{}).
		Where("id = ?", slate.ID).
		Updates(map[string]interface{}{
			"name":        slate.Name,
			"description": slate.Description,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

// ReplaceMembers deletes the current members and inserts the given ones
func (r *slateRepository) ReplaceMembers(ctx context.Context, slateID uuid.UUID, members []models.SlateMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slate_id = ?", slateID).Delete(&models.SlateMember{}).Error; err != nil {
			return err
		}
		return insertMembers(tx, slateID, members)
	})
}

func insertMembers(tx *gorm.DB, slateID uuid.UUID, members []models.SlateMember) error {
	if len(members) == 0 {
		return nil
	}
	for i := range members {
		members[i].SlateID = slateID
		if members[i].Position == 0 {
			members[i].Position = i + 1
		}
	}
	return tx.Omit("Candidate").Create(&members).Error
}

func (r *slateRepository) UpdateLogo(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.Slate{}).
		Where("id = ?", id).
		Update("logo_path", path).Error
}

// IncrementVoteCount adds one vote with a single atomic UPDATE
func (r *slateRepository) IncrementVoteCount(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Slate{}).
		Where("id = ?", id).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *slateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slate_id = ?", id).Delete(&models.SlateMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Slate{}, "id = ?", id).Error
	})
}
