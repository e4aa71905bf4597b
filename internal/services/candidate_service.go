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

// CandidateInput carries the editable fields of a candidate
type CandidateInput struct {
	VotingPointID uuid.UUID `json:"voting_point_id"`
	FullName      string    `json:"full_name" binding:"required"`
	Document      *string   `json:"document"`
	Position      string    `json:"position"`
}

type CandidateService struct {
	repo      repository.CandidateRepository
	pointRepo repository.VotingPointRepository
	audit     *AuditService
	now       func() time.Time
}

func NewCandidateService(repo repository.CandidateRepository, pointRepo repository.VotingPointRepository, audit *AuditService) *CandidateService {
	return &CandidateService{repo: repo, pointRepo: pointRepo, audit: audit, now: time.Now}
}

func (s *CandidateService) ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID) ([]models.Candidate, error) {
	if _, err := s.pointRepo.FindByID(ctx, votingPointID); err != nil {
		return nil, notFound(err, "punto de votación no encontrado")
	}
	return s.repo.ListByVotingPoint(ctx, votingPointID)
}

func (s *CandidateService) Create(ctx context.Context, actor Actor, in CandidateInput) (*models.Candidate, error) {
	point, err := s.pointRepo.FindByID(ctx, in.VotingPointID)
	if err != nil {
		return nil, notFound(err, "punto de votación no encontrado")
	}
	if err := ensureNotStarted(&point.Election, s.now()); err != nil {
		return nil, err
	}
	if err := validateCandidate(&in); err != nil {
		return nil, err
	}

	candidate := &models.Candidate{
		VotingPointID: point.ID,
		FullName:      in.FullName,
		Document:      in.Document,
		Position:      in.Position,
	}
	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, actor, models.AuditActionCreate, models.EntityCandidate, uuidPtr(candidate.ID), map[string]interface{}{
		"voting_point_id": point.ID.String(),
		"full_name":       candidate.FullName,
	})
	return candidate, nil
}

func (s *CandidateService) Update(ctx context.Context, actor Actor, id uuid.UUID, in CandidateInput) (*models.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "candidato no encontrado")
	}
	if candidate.IsProtected() {
		return nil, ErrProtectedEntity
	}
	if err := ensureNotStarted(&candidate.VotingPoint.Election, s.now()); err != nil {
		return nil, err
	}
	if err := validateCandidate(&in); err != nil {
		return nil, err
	}

	candidate.FullName = in.FullName
	candidate.Document = in.Document
	candidate.Position = in.Position
	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, actor, models.AuditActionUpdate, models.EntityCandidate, uuidPtr(candidate.ID), map[string]interface{}{
		"full_name": candidate.FullName,
	})
	return candidate, nil
}

func (s *CandidateService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "candidato no encontrado")
	}
	if candidate.IsProtected() {
		return ErrProtectedEntity
	}
	if err := ensureNotStarted(&candidate.VotingPoint.Election, s.now()); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, actor, models.AuditActionDelete, models.EntityCandidate, uuidPtr(id), map[string]interface{}{
		"full_name": candidate.FullName,
	})
	return nil
}

func validateCandidate(in *CandidateInput) error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Position = strings.TrimSpace(in.Position)
	if in.FullName == "" {
		return fmt.Errorf("%w: el nombre del candidato es obligatorio", ErrValidation)
	}
	if strings.EqualFold(in.FullName, models.BlankVoteName) {
		return fmt.Errorf("%w: el nombre %q está reservado", ErrValidation, models.BlankVoteName)
	}
	if in.Document != nil {
		doc := strings.TrimSpace(*in.Document)
		if doc == "" {
			in.Document = nil
		} else {
			in.Document = &doc
		}
	}
	return nil
}
