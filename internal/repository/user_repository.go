package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when an insert violates a unique constraint
var ErrDuplicateKey = errors.New("registro duplicado")

// UserRepository defines the interface for identity data access
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOrphaned(ctx context.Context, createdBefore time.Time) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateWithProfile inserts the identity and its profile in one transaction.
// The profile takes the user's ID.
func (r *userRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(user).Error; err != nil {
			return err
		}
		profile.ID = user.ID
		return tx.Omit("User").Create(profile).Error
	})
	if err != nil {
		if isDuplicateKeyError(err, "profiles_document_key") {
			return fmt.Errorf("%w: ya existe un perfil con este documento de identidad", ErrDuplicateKey)
		}
		if isDuplicateKeyError(err, "users_email_key") {
			return fmt.Errorf("%w: ya existe un usuario con este correo electrónico", ErrDuplicateKey)
		}
		return err
	}
	return nil
}

func (r *userRepository) TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_sign_in_at", at.UTC()).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("encrypted_password", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// FindOrphaned returns identities without a profile created before the cutoff
func (r *userRepository) FindOrphaned(ctx context.Context, createdBefore time.Time) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM profiles WHERE profiles.id = users.id)").
		Where("created_at < ?", createdBefore).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByDocument(ctx context.Context, document string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query *ListQuery) ([]models.Profile, int64, error)
	FindAll(ctx context.Context) ([]models.Profile, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByDocument(ctx context.Context, document string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("document = ?", document).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Omit("User").Save(profile).Error
}

func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id).Error
}

func (r *profileRepository) List(ctx context.Context, query *ListQuery) ([]models.Profile, int64, error) {
	var profiles []models.Profile
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Profile{})

	// Apply search
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR document ILIKE ?", search, search)
	}

	// Apply role filter
	if query.Filters["role"] != "" {
		db = db.Where("role = ?", query.Filters["role"])
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, "full_name ASC", map[string]bool{
		"full_name": true, "document": true, "created_at": true,
	})

	err := db.Preload("User").Find(&profiles).Error
	return profiles, total, err
}

func (r *profileRepository) FindAll(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
	}
	return false
}

// IsUniqueViolation reports whether err is a unique constraint violation on
// any constraint
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// applySortAndPage orders by query.SortBy when it is an allowed column and
// applies offset pagination
func applySortAndPage(db *gorm.DB, query *ListQuery, defaultOrder string, allowed map[string]bool) *gorm.DB {
	if query.SortBy != "" && allowed[query.SortBy] {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order(defaultOrder)
	}

	if query.PerPage > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * query.PerPage).Limit(query.PerPage)
	}
	return db
}
