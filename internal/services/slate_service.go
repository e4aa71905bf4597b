package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/internal/storage"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// SlateMemberInput references a candidate of the same voting point
type SlateMemberInput struct {
	CandidateID uuid.UUID `json:"candidate_id" binding:"required"`
	Role        string    `json:"role"`
	Position    int       `json:"position"`
}

// SlateInput carries the editable fields of a slate and its members
type SlateInput struct {
	VotingPointID uuid.UUID          `json:"voting_point_id"`
	Name          string             `json:"name" binding:"required"`
	Description   string             `json:"description"`
	Members       []SlateMemberInput `json:"members"`
}

type SlateService struct {
	repo          repository.SlateRepository
	pointRepo     repository.VotingPointRepository
	candidateRepo repository.CandidateRepository
	audit         *AuditService
	images        *ImageService
	storage       *storage.LocalStorage
	now           func() time.Time
}

func NewSlateService(repo repository.SlateRepository, pointRepo repository.VotingPointRepository, candidateRepo repository.CandidateRepository, audit *AuditService, images *ImageService, store *storage.LocalStorage) *SlateService {
	return &SlateService{
		repo:          repo,
		pointRepo:     pointRepo,
		candidateRepo: candidateRepo,
		audit:         audit,
		images:        images,
		storage:       store,
		now:           time.Now,
	}
}

func (s *SlateService) FindByID(ctx context.Context, id uuid.UUID) (*models.Slate, error) {
	slate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "plancha no encontrada")
	}
	return slate, nil
}

func (s *SlateService) ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID) ([]models.Slate, error) {
	if _, err := s.pointRepo.FindByID(ctx, votingPointID); err != nil {
		return nil, notFound(err, "punto de votación no encontrado")
	}
	return s.repo.ListByVotingPoint(ctx, votingPointID)
}

func (s *SlateService) Create(ctx context.Context, actor Actor, in SlateInput) (*models.Slate, error) {
	point, err := s.pointRepo.FindByID(ctx, in.VotingPointID)
	if err != nil {
		return nil, notFound(err, "punto de votación no encontrado")
	}
	if err := ensureNotStarted(&point.Election, s.now()); err != nil {
		return nil, err
	}
	members, err := s.validate(ctx, point.ID, &in)
	if err != nil {
		return nil, err
	}

	slate := &models.Slate{
		VotingPointID: point.ID,
		Name:          in.Name,
		Description:   in.Description,
	}
	if err := s.repo.Create(ctx, slate, members); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, actor, models.AuditActionCreate, models.EntitySlate, uuidPtr(slate.ID), map[string]interface{}{
		"voting_point_id": point.ID.String(),
		"name":            slate.Name,
		"members":         len(members),
	})
	return s.FindByID(ctx, slate.ID)
}

// Update edits the slate and replaces its members
func (s *SlateService) Update(ctx context.Context, actor Actor, id uuid.UUID, in SlateInput) (*models.Slate, error) {
	slate, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slate.IsProtected() {
		return nil, ErrProtectedEntity
	}
	if err := ensureNotStarted(&slate.VotingPoint.Election, s.now()); err != nil {
		return nil, err
	}
	members, err := s.validate(ctx, slate.VotingPointID, &in)
	if err != nil {
		return nil, err
	}

	slate.Name = in.Name
	slate.Description = in.Description
	if err := s.repo.Update(ctx, slate); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceMembers(ctx, slate.ID, members); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, actor, models.AuditActionUpdate, models.EntitySlate, uuidPtr(slate.ID), map[string]interface{}{
		"name":    slate.Name,
		"members": len(members),
	})
	return s.FindByID(ctx, slate.ID)
}

func (s *SlateService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	slate, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if slate.IsProtected() {
		return ErrProtectedEntity
	}
	if err := ensureNotStarted(&slate.VotingPoint.Election, s.now()); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if slate.LogoPath != nil && s.storage != nil {
		if err := s.storage.Delete(*slate.LogoPath); err != nil {
			logger.Warn("Failed to delete slate logo", "slate_id", id, "error", err)
		}
	}

	s.audit.Log(ctx, actor, models.AuditActionDelete, models.EntitySlate, uuidPtr(id), map[string]interface{}{
		"name": slate.Name,
	})
	return nil
}

// UploadLogo normalizes and stores the slate logo, replacing the previous one
func (s *SlateService) UploadLogo(ctx context.Context, actor Actor, id uuid.UUID, file io.Reader, filename string) (*models.Slate, error) {
	slate, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slate.IsProtected() {
		return nil, ErrProtectedEntity
	}
	if err := ensureNotStarted(&slate.VotingPoint.Election, s.now()); err != nil {
		return nil, err
	}

	// Re-encode as a bounded PNG
	data, err := s.images.NormalizeLogo(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Store the new logo before dropping the old one
	path, err := s.storage.UploadFromBytes(data, "logo.png", "slates/"+slate.ID.String())
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLogo(ctx, slate.ID, path); err != nil {
		_ = s.storage.Delete(path)
		return nil, err
	}
	if slate.LogoPath != nil {
		_ = s.storage.Delete(*slate.LogoPath)
	}
	slate.LogoPath = &path

	s.audit.Log(ctx, actor, models.AuditActionUpdate, models.EntitySlate, uuidPtr(slate.ID), map[string]interface{}{
		"logo_path": path,
		"filename":  filename,
	})
	return slate, nil
}

// validate normalizes the input and checks every member is a candidate of
// the voting point, listed once
func (s *SlateService) validate(ctx context.Context, votingPointID uuid.UUID, in *SlateInput) ([]models.SlateMember, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre de la plancha es obligatorio", ErrValidation)
	}
	if strings.EqualFold(in.Name, models.BlankVoteName) {
		return nil, fmt.Errorf("%w: el nombre %q está reservado", ErrValidation, models.BlankVoteName)
	}

	seen := make(map[uuid.UUID]bool, len(in.Members))
	ids := make([]uuid.UUID, 0, len(in.Members))
	members := make([]models.SlateMember, 0, len(in.Members))
	for i, m := range in.Members {
		if m.CandidateID == uuid.Nil {
			return nil, fmt.Errorf("%w: el miembro %d no tiene candidato", ErrValidation, i+1)
		}
		if seen[m.CandidateID] {
			return nil, fmt.Errorf("%w: el candidato %s está repetido", ErrValidation, m.CandidateID)
		}
		seen[m.CandidateID] = true
		ids = append(ids, m.CandidateID)
		members = append(members, models.SlateMember{
			CandidateID: m.CandidateID,
			Role:        strings.TrimSpace(m.Role),
			Position:    m.Position,
		})
	}

	// Every member must be a candidate of this voting point
	if len(ids) > 0 {
		count, err := s.candidateRepo.CountInVotingPoint(ctx, votingPointID, ids)
		if err != nil {
			return nil, err
		}
		if count != int64(len(ids)) {
			return nil, fmt.Errorf("%w: todos los candidatos deben pertenecer al mismo punto de votación", ErrValidation)
		}
	}
	return members, nil
}
