package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
)

// UserService manages profiles and credentials
type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	audit       *AuditService
	generatePIN func() (string, error)
}

func NewUserService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, audit *AuditService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		audit:       audit,
		generatePIN: GeneratePIN,
	}
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "perfil no encontrado")
	}
	return profile, nil
}

// List returns profiles filtered by search and role
func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.Profile, int64, error) {
	if role := query.Filters["role"]; role != "" && !models.ValidRole(role) {
		return nil, 0, fmt.Errorf("%w: rol desconocido: %s", ErrValidation, role)
	}
	return s.profileRepo.List(ctx, query)
}

// ChangePassword updates the caller's password after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, actor Actor, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", ErrValidation)
	}

	// Verify current password
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return notFound(err, "usuario no encontrado")
	}
	if !VerifyPassword(currentPassword, user.EncryptedPassword) {
		return fmt.Errorf("%w: la contraseña actual es incorrecta", ErrUnauthorized)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.audit.Log(ctx, actor, models.AuditActionUpdate, models.EntityUser, uuidPtr(user.ID), map[string]interface{}{
		"field": "password",
	})
	return nil
}

// ResetPIN issues a new login PIN for a voter. The plaintext PIN is only
// returned here.
func (s *UserService) ResetPIN(ctx context.Context, actor Actor, profileID uuid.UUID) (string, error) {
	profile, err := s.FindByID(ctx, profileID)
	if err != nil {
		return "", err
	}
	if !profile.IsVoter() {
		return "", fmt.Errorf("%w: solo los votantes usan PIN", ErrValidation)
	}

	// Generate and store the new PIN
	pin, err := s.generatePIN()
	if err != nil {
		return "", err
	}
	hash, err := HashPassword(pin)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.UpdatePassword(ctx, profile.ID, hash); err != nil {
		return "", notFound(err, "usuario no encontrado")
	}

	s.audit.Log(ctx, actor, models.AuditActionUpdate, models.EntityUser, uuidPtr(profile.ID), map[string]interface{}{
		"field": "pin",
	})
	return pin, nil
}
