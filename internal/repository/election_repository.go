package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"gorm.io/gorm"
)

// ElectionRepository defines the interface for election data access
type ElectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Election, error)
	Create(ctx context.Context, election *models.Election) error
	Update(ctx context.Context, election *models.Election) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query *ListQuery) ([]models.Election, int64, error)
	FindExpiredActive(ctx context.Context, now time.Time) ([]models.Election, error)
	FindOpen(ctx context.Context, now time.Time) ([]models.Election, error)
	Count(ctx context.Context) (int64, error)
	CountOpen(ctx context.Context, now time.Time) (int64, error)
}

type electionRepository struct {
	db *gorm.DB
}

// NewElectionRepository creates a new election repository
func NewElectionRepository(db *gorm.DB) ElectionRepository {
	return &electionRepository{db: db}
}

func (r *electionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Election, error) {
	var election models.Election
	err := r.db.WithContext(ctx).
		Preload("VotingPoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		First(&election, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &election, nil
}

func (r *electionRepository) Create(ctx context.Context, election *models.Election) error {
	return r.db.WithContext(ctx).Omit("VotingPoints").Create(election).Error
}

func (r *electionRepository) Update(ctx context.Context, election *models.Election) error {
	return r.db.WithContext(ctx).Omit("VotingPoints").Save(election).Error
}

func (r *electionRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		}).Error
}

func (r *electionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Election{}, "id = ?", id).Error
}

func (r *electionRepository) List(ctx context.Context, query *ListQuery) ([]models.Election, int64, error) {
	var elections []models.Election
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Election{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	if query.Filters["is_active"] != "" {
		db = db.Where("is_active = ?", query.Filters["is_active"] == "true")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, "start_date DESC", map[string]bool{
		"title": true, "start_date": true, "end_date": true, "created_at": true,
	})

	err := db.Preload("VotingPoints").Find(&elections).Error
	return elections, total, err
}

// FindExpiredActive returns active elections whose end date has passed
func (r *electionRepository) FindExpiredActive(ctx context.Context, now time.Time) ([]models.Election, error) {
	var elections []models.Election
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND end_date < ?", true, now).
		Find(&elections).Error
	return elections, err
}

// FindOpen returns elections currently accepting votes
func (r *electionRepository) FindOpen(ctx context.Context, now time.Time) ([]models.Election, error) {
	var elections []models.Election
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Find(&elections).Error
	return elections, err
}

func (r *electionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Election{}).Count(&count).Error
	return count, err
}

func (r *electionRepository) CountOpen(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Count(&count).Error
	return count, err
}
