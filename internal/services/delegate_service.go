package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"gorm.io/gorm"
)

// DelegateInput carries the data of a new delegate account
type DelegateInput struct {
	FullName string `json:"full_name" binding:"required"`
	Document string `json:"document" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// DelegateSummary is a delegate profile with its voting point, if any
type DelegateSummary struct {
	models.ProfileResponse
	VotingPoint *DelegateAssignment `json:"voting_point"`
}

// DelegateAssignment identifies the voting point run by a delegate
type DelegateAssignment struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Election string    `json:"election"`
}

type DelegateService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	pointRepo   repository.VotingPointRepository
	audit       *AuditService
	email       *EmailService
	queue       JobQueue
}

func NewDelegateService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, pointRepo repository.VotingPointRepository, audit *AuditService, email *EmailService, queue JobQueue) *DelegateService {
	return &DelegateService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		pointRepo:   pointRepo,
		audit:       audit,
		email:       email,
		queue:       queue,
	}
}

// List returns delegate profiles with their current assignment
func (s *DelegateService) List(ctx context.Context, query *repository.ListQuery) ([]DelegateSummary, int64, error) {
	query.Filters["role"] = models.RoleDelegate
	profiles, total, err := s.profileRepo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	// Load assignments for this page in one query
	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	points, err := s.pointRepo.FindByDelegates(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byDelegate := make(map[uuid.UUID]*DelegateAssignment, len(points))
	for _, p := range points {
		if p.DelegateID == nil {
			continue
		}
		byDelegate[*p.DelegateID] = &DelegateAssignment{ID: p.ID, Name: p.Name, Election: p.Election.Title}
	}

	summaries := make([]DelegateSummary, 0, len(profiles))
	for i := range profiles {
		summaries = append(summaries, DelegateSummary{
			ProfileResponse: profiles[i].ToResponse(),
			VotingPoint:     byDelegate[profiles[i].ID],
		})
	}
	return summaries, total, nil
}

// Create registers a delegate account. An existing delegate profile with the
// same document is returned as is; voter and admin profiles are never
// promoted.
func (s *DelegateService) Create(ctx context.Context, actor Actor, in DelegateInput) (*models.Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Document = strings.TrimSpace(in.Document)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FullName == "" || in.Document == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: nombre, documento y correo son obligatorios", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", ErrValidation)
	}

	// Reuse an existing delegate with this document
	existing, err := s.profileRepo.FindByDocument(ctx, in.Document)
	switch {
	case err == nil:
		if existing.IsVoter() || existing.IsAdmin() {
			return nil, fmt.Errorf("%w: el documento pertenece a un perfil con rol %s", ErrConflict, existing.Role)
		}
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	// Create user and profile together
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: in.Email, EncryptedPassword: hash}
	profile := &models.Profile{FullName: in.FullName, Document: in.Document, Role: models.RoleDelegate}
	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}
	profile.User = user

	s.audit.Log(ctx, actor, models.AuditActionCreate, models.EntityProfile, uuidPtr(profile.ID), map[string]interface{}{
		"role":      models.RoleDelegate,
		"full_name": profile.FullName,
	})

	// Send welcome email asynchronously
	if s.queue != nil && s.email != nil {
		p := *profile
		s.queue.Enqueue(func(ctx context.Context) error {
			return s.email.SendDelegateAccountCreated(ctx, &p, user.Email, "")
		})
	}
	return profile, nil
}

// Delete removes a delegate account after releasing its voting point
func (s *DelegateService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "delegado no encontrado")
	}
	if !profile.IsDelegate() {
		return fmt.Errorf("%w: el perfil no es un delegado", ErrValidation)
	}

	// Release the voting point first
	if err := s.pointRepo.UnassignDelegate(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, actor, models.AuditActionDelete, models.EntityProfile, uuidPtr(id), map[string]interface{}{
		"role":      models.RoleDelegate,
		"full_name": profile.FullName,
	})
	return nil
}
