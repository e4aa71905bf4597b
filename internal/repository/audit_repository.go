package repository

import (
	"context"

	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"gorm.io/gorm"
)

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Omit("Profile").Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if query.Filters["action"] != "" {
		db = db.Where("action = ?", query.Filters["action"])
	}
	if query.Filters["entity_type"] != "" {
		db = db.Where("entity_type = ?", query.Filters["entity_type"])
	}
	if query.Filters["user_id"] != "" {
		db = db.Where("user_id = ?", query.Filters["user_id"])
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, "created_at DESC", map[string]bool{
		"created_at": true, "action": true,
	})

	err := db.Preload("Profile").Find(&logs).Error
	return logs, total, err
}
