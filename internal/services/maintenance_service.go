package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
	"gorm.io/gorm"
)

// OrphanGracePeriod protects identities whose profile is still being created
const OrphanGracePeriod = time.Hour

// MergedProfile describes a duplicate profile folded into the oldest one
type MergedProfile struct {
	KeptID     uuid.UUID `json:"kept_id"`
	RemovedID  uuid.UUID `json:"removed_id"`
	Document   string    `json:"document"`
	MovedLinks int       `json:"moved_links"`
}

// SkippedProfile describes a duplicate that could not be removed
type SkippedProfile struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Document  string    `json:"document"`
	Reason    string    `json:"reason"`
}

// DuplicateCleanupReport is the outcome of a duplicate profile cleanup
type DuplicateCleanupReport struct {
	Groups  int              `json:"groups"`
	Merged  []MergedProfile  `json:"merged"`
	Skipped []SkippedProfile `json:"skipped"`
}

type MaintenanceService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	voterRepo   repository.VoterRepository
	voteRepo    repository.VoteRepository
	audit       *AuditService
	now         func() time.Time
}

func NewMaintenanceService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, voterRepo repository.VoterRepository, voteRepo repository.VoteRepository, audit *AuditService) *MaintenanceService {
	return &MaintenanceService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		voterRepo:   voterRepo,
		voteRepo:    voteRepo,
		audit:       audit,
		now:         time.Now,
	}
}

// CleanupDuplicateProfiles merges profiles whose documents only differ in
// formatting. The oldest profile of each group is kept and receives the voter
// links of the others; duplicates with recorded votes are left untouched.
func (s *MaintenanceService) CleanupDuplicateProfiles(ctx context.Context, actor Actor) (*DuplicateCleanupReport, error) {
	profiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]models.Profile)
	var order []string
	for _, p := range profiles {
		key := models.NormalizeDocument(p.Document)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	report := &DuplicateCleanupReport{Merged: []MergedProfile{}, Skipped: []SkippedProfile{}}
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		report.Groups++
		keep := group[0]
		for _, dup := range group[1:] {
			merged, skipped, err := s.mergeProfile(ctx, keep, dup)
			if err != nil {
				return nil, err
			}
			if skipped != nil {
				report.Skipped = append(report.Skipped, *skipped)
				continue
			}
			report.Merged = append(report.Merged, *merged)
		}
	}

	s.audit.Log(ctx, actor, models.AuditActionCleanup, models.EntityProfile, nil, map[string]interface{}{
		"kind":    "duplicates",
		"groups":  report.Groups,
		"merged":  len(report.Merged),
		"skipped": len(report.Skipped),
	})
	return report, nil
}

func (s *MaintenanceService) mergeProfile(ctx context.Context, keep, dup models.Profile) (*MergedProfile, *SkippedProfile, error) {
	votes, err := s.voteRepo.CountByProfile(ctx, dup.ID)
	if err != nil {
		return nil, nil, err
	}
	if votes > 0 {
		return nil, &SkippedProfile{ProfileID: dup.ID, Document: dup.Document, Reason: "tiene votos registrados"}, nil
	}

	links, err := s.voterRepo.FindAllByProfile(ctx, dup.ID)
	if err != nil {
		return nil, nil, err
	}

	moved := 0
	for _, link := range links {
		// The kept profile may already vote in this election; the duplicate's link goes
		_, err := s.voterRepo.FindInElection(ctx, keep.ID, link.ElectionID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		if err == nil {
			if err := s.voterRepo.Delete(ctx, link.ID); err != nil {
				return nil, nil, err
			}
			continue
		}
		if err := s.voterRepo.MoveToProfile(ctx, link.ID, keep.ID); err != nil {
			return nil, nil, err
		}
		moved++
	}

	if err := s.userRepo.Delete(ctx, dup.ID); err != nil {
		return nil, nil, err
	}
	logger.Info("Duplicate profile merged", "kept_id", keep.ID, "removed_id", dup.ID, "moved_links", moved)
	return &MergedProfile{KeptID: keep.ID, RemovedID: dup.ID, Document: dup.Document, MovedLinks: moved}, nil, nil
}

// CleanupOrphanedUsers deletes identities without a profile that are older
// than the grace period. It returns how many were deleted.
func (s *MaintenanceService) CleanupOrphanedUsers(ctx context.Context, actor Actor) (int, error) {
	orphans, err := s.userRepo.FindOrphaned(ctx, s.now().Add(-OrphanGracePeriod))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, u := range orphans {
		if err := s.userRepo.Delete(ctx, u.ID); err != nil {
			logger.Warn("Failed to delete orphaned user", "user_id", u.ID, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.audit.Log(ctx, actor, models.AuditActionCleanup, models.EntityUser, nil, map[string]interface{}{
			"kind":    "orphans",
			"deleted": deleted,
		})
	}
	return deleted, nil
}
