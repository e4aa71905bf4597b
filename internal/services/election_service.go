package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/cache"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/internal/statemachine"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// ElectionInput carries the editable fields of an election
type ElectionInput struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	IsActive    bool      `json:"is_active"`
}

func (in *ElectionInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: el título es obligatorio", ErrValidation)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("%w: las fechas de inicio y fin son obligatorias", ErrValidation)
	}
	if !in.StartDate.Before(in.EndDate) {
		return fmt.Errorf("%w: la fecha de inicio debe ser anterior a la fecha de fin", ErrValidation)
	}
	return nil
}

type ElectionService struct {
	repo  repository.ElectionRepository
	audit *AuditService
	stats *cache.StatsCache
	now   func() time.Time
}

func NewElectionService(repo repository.ElectionRepository, audit *AuditService, stats *cache.StatsCache) *ElectionService {
	return &ElectionService{repo: repo, audit: audit, stats: stats, now: time.Now}
}

func (s *ElectionService) FindByID(ctx context.Context, id uuid.UUID) (*models.Election, error) {
	election, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "elección no encontrada")
	}
	return election, nil
}

func (s *ElectionService) List(ctx context.Context, query *repository.ListQuery) ([]models.Election, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ElectionService) Create(ctx context.Context, actor Actor, in ElectionInput) (*models.Election, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	election := &models.Election{
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsActive:    in.IsActive,
	}
	if actor.UserID != uuid.Nil {
		election.CreatedBy = uuidPtr(actor.UserID)
	}

	if err := s.repo.Create(ctx, election); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, actor, models.AuditActionCreate, models.EntityElection, uuidPtr(election.ID), map[string]interface{}{
		"title": election.Title,
	})
	return election, nil
}

// Update edits an election that has not started yet
func (s *ElectionService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ElectionInput) (*models.Election, error) {
	election, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if election.HasStarted(s.now()) {
		return nil, ErrElectionStarted
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	election.Title = in.Title
	election.Description = in.Description
	election.StartDate = in.StartDate
	election.EndDate = in.EndDate
	election.IsActive = in.IsActive

	if err := s.repo.Update(ctx, election); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, actor, models.AuditActionUpdate, models.EntityElection, uuidPtr(election.ID), map[string]interface{}{
		"title": election.Title,
	})
	return election, nil
}

// ToggleActive flips is_active, the one field that stays editable after the
// election starts. A finished election can only be deactivated.
func (s *ElectionService) ToggleActive(ctx context.Context, actor Actor, id uuid.UUID) (*models.Election, error) {
	election, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Transition from the current lifecycle state
	now := s.now()
	machine := statemachine.NewElectionFSM(election, now)
	if election.IsActive {
		err = machine.Deactivate(ctx, now)
	} else {
		err = machine.Activate(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: la elección finalizó y no puede reactivarse", ErrInvalidState)
	}

	// Persist only the flag
	if err := s.repo.SetActive(ctx, election.ID, election.IsActive); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, election.ID)
	s.audit.Log(ctx, actor, models.AuditActionToggle, models.EntityElection, uuidPtr(election.ID), map[string]interface{}{
		"is_active": election.IsActive,
		"state":     machine.Current(),
	})
	return election, nil
}

// Delete removes an election that has not started yet
func (s *ElectionService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	election, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if election.HasStarted(s.now()) {
		return ErrElectionStarted
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, actor, models.AuditActionDelete, models.EntityElection, uuidPtr(id), map[string]interface{}{
		"title": election.Title,
	})
	return nil
}

// CloseExpired deactivates every active election whose end date passed.
// It returns the number of elections closed.
func (s *ElectionService) CloseExpired(ctx context.Context) (int, error) {
	now := s.now()
	elections, err := s.repo.FindExpiredActive(ctx, now)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range elections {
		election := &elections[i]
		if err := statemachine.NewElectionFSM(election, now).Close(ctx); err != nil {
			logger.Warn("Election could not be closed", "election_id", election.ID, "error", err)
			continue
		}
		if err := s.repo.SetActive(ctx, election.ID, false); err != nil {
			logger.Error("Failed to close expired election", "election_id", election.ID, "error", err)
			continue
		}
		s.invalidateStats(ctx, election.ID)
		s.audit.Log(ctx, SystemActor, models.AuditActionToggle, models.EntityElection, uuidPtr(election.ID), map[string]interface{}{
			"is_active": false,
			"reason":    "expired",
		})
		closed++
	}
	return closed, nil
}

func (s *ElectionService) invalidateStats(ctx context.Context, electionID uuid.UUID) {
	if err := s.stats.Bump(ctx, electionID); err != nil {
		logger.Warn("Failed to invalidate statistics cache", "election_id", electionID, "error", err)
	}
}

// ensureNotStarted rejects changes to entities of a started election
func ensureNotStarted(election *models.Election, now time.Time) error {
	if election != nil && election.HasStarted(now) {
		return ErrElectionStarted
	}
	return nil
}
