package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
)

// VotingPointInput carries the editable fields of a voting point
type VotingPointInput struct {
	ElectionID uuid.UUID  `json:"election_id"`
	Name       string     `json:"name" binding:"required"`
	Location   string     `json:"location"`
	DelegateID *uuid.UUID `json:"delegate_id"`
}

type VotingPointService struct {
	repo         repository.VotingPointRepository
	electionRepo repository.ElectionRepository
	profileRepo  repository.ProfileRepository
	audit        *AuditService
	now          func() time.Time
}

func NewVotingPointService(repo repository.VotingPointRepository, electionRepo repository.ElectionRepository, profileRepo repository.ProfileRepository, audit *AuditService) *VotingPointService {
	return &VotingPointService{
		repo:         repo,
		electionRepo: electionRepo,
		profileRepo:  profileRepo,
		audit:        audit,
		now:          time.Now,
	}
}

func (s *VotingPointService) FindByID(ctx context.Context, id uuid.UUID) (*models.VotingPoint, error) {
	point, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "punto de votación no encontrado")
	}
	return point, nil
}

// FindForActor returns a voting point, restricted to the delegate's own point
// when the caller is a delegate
func (s *VotingPointService) FindForActor(ctx context.Context, actor Actor, id uuid.UUID) (*models.VotingPoint, error) {
	point, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleDelegate && (point.DelegateID == nil || *point.DelegateID != actor.UserID) {
		return nil, fmt.Errorf("%w: solo puedes consultar tu punto de votación", ErrForbidden)
	}
	return point, nil
}

func (s *VotingPointService) ListByElection(ctx context.Context, electionID uuid.UUID) ([]models.VotingPoint, error) {
	if _, err := s.electionRepo.FindByID(ctx, electionID); err != nil {
		return nil, notFound(err, "elección no encontrada")
	}
	return s.repo.ListByElection(ctx, electionID)
}

// AvailableDelegates lists delegates that can still be assigned
func (s *VotingPointService) AvailableDelegates(ctx context.Context) ([]models.Profile, error) {
	return s.repo.FindAvailableDelegates(ctx)
}

// Create adds a voting point to an election that has not started, together
// with its blank vote candidate and slate
func (s *VotingPointService) Create(ctx context.Context, actor Actor, in VotingPointInput) (*models.VotingPoint, error) {
	election, err := s.electionRepo.FindByID(ctx, in.ElectionID)
	if err != nil {
		return nil, notFound(err, "elección no encontrada")
	}
	if err := ensureNotStarted(election, s.now()); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", ErrValidation)
	}
	// Delegate must be free; the unique index catches races
	if err := s.checkDelegate(ctx, in.DelegateID, nil); err != nil {
		return nil, err
	}

	point := &models.VotingPoint{
		ElectionID: election.ID,
		Name:       in.Name,
		Location:   strings.TrimSpace(in.Location),
		DelegateID: in.DelegateID,
	}
	// Point, blank candidate and blank slate in one transaction
	if err := s.repo.CreateWithBlankVote(ctx, point); err != nil {
		return nil, s.mapDelegateConflict(err)
	}

	s.audit.Log(ctx, actor, models.AuditActionCreate, models.EntityVotingPoint, uuidPtr(point.ID), map[string]interface{}{
		"election_id": election.ID.String(),
		"name":        point.Name,
		"delegate_id": optionalID(point.DelegateID),
	})
	return s.FindByID(ctx, point.ID)
}

// Update edits a voting point of an election that has not started
func (s *VotingPointService) Update(ctx context.Context, actor Actor, id uuid.UUID, in VotingPointInput) (*models.VotingPoint, error) {
	point, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureNotStarted(&point.Election, s.now()); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", ErrValidation)
	}
	if err := s.checkDelegate(ctx, in.DelegateID, &point.ID); err != nil {
		return nil, err
	}

	point.Name = in.Name
	point.Location = strings.TrimSpace(in.Location)
	point.DelegateID = in.DelegateID
	if err := s.repo.Update(ctx, point); err != nil {
		return nil, s.mapDelegateConflict(err)
	}

	s.audit.Log(ctx, actor, models.AuditActionUpdate, models.EntityVotingPoint, uuidPtr(point.ID), map[string]interface{}{
		"name":        point.Name,
		"delegate_id": optionalID(point.DelegateID),
	})
	return s.FindByID(ctx, point.ID)
}

func (s *VotingPointService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	point, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ensureNotStarted(&point.Election, s.now()); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, actor, models.AuditActionDelete, models.EntityVotingPoint, uuidPtr(id), map[string]interface{}{
		"name": point.Name,
	})
	return nil
}

// checkDelegate verifies the profile is a delegate not running another point
func (s *VotingPointService) checkDelegate(ctx context.Context, delegateID *uuid.UUID, exceptPointID *uuid.UUID) error {
	if delegateID == nil {
		return nil
	}
	profile, err := s.profileRepo.FindByID(ctx, *delegateID)
	if err != nil {
		return notFound(err, "delegado no encontrado")
	}
	if !profile.IsDelegate() {
		return fmt.Errorf("%w: el perfil seleccionado no es un delegado", ErrValidation)
	}
	assigned, err := s.repo.IsDelegateAssigned(ctx, *delegateID, exceptPointID)
	if err != nil {
		return err
	}
	if assigned {
		return fmt.Errorf("%w: el delegado ya está asignado a otro punto de votación", ErrConflict)
	}
	return nil
}

func (s *VotingPointService) mapDelegateConflict(err error) error {
	if repository.IsUniqueViolation(err) {
		return fmt.Errorf("%w: el delegado ya está asignado a otro punto de votación", ErrConflict)
	}
	return err
}

func optionalID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
