package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/cache"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// CastVoteResult is returned after a successful vote
type CastVoteResult struct {
	VoteID    uuid.UUID `json:"vote_id"`
	SlateID   uuid.UUID `json:"slate_id"`
	VotedAt   time.Time `json:"voted_at"`
	SlateName string    `json:"slate_name"`
}

type VoteService struct {
	voterRepo repository.VoterRepository
	slateRepo repository.SlateRepository
	voteRepo  repository.VoteRepository
	audit     *AuditService
	stats     *cache.StatsCache
	now       func() time.Time
}

func NewVoteService(voterRepo repository.VoterRepository, slateRepo repository.SlateRepository, voteRepo repository.VoteRepository, audit *AuditService, stats *cache.StatsCache) *VoteService {
	return &VoteService{
		voterRepo: voterRepo,
		slateRepo: slateRepo,
		voteRepo:  voteRepo,
		audit:     audit,
		stats:     stats,
		now:       time.Now,
	}
}

// Cast records the caller's vote for a slate of their own voting point.
// The unique index on votes.voter_id rejects concurrent double submissions.
func (s *VoteService) Cast(ctx context.Context, actor Actor, slateID uuid.UUID) (*CastVoteResult, error) {
	// Resolve the caller's voter link, open election first
	voter, err := s.voterRepo.FindByProfile(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, "no estás registrado como votante")
	}

	if voter.HasVoted {
		return nil, ErrAlreadyVoted
	}

	// Check election window and activation
	now := s.now()
	election := voter.VotingPoint.Election
	if !election.IsOpen(now) {
		return nil, fmt.Errorf("%w: la elección no está abierta para votar", ErrInvalidState)
	}

	// The slate must belong to the voter's own voting point
	slate, err := s.slateRepo.FindByID(ctx, slateID)
	if err != nil {
		return nil, notFound(err, "plancha no encontrada")
	}
	if slate.VotingPointID != voter.VotingPointID {
		return nil, fmt.Errorf("%w: la plancha no pertenece a tu punto de votación", ErrForbidden)
	}

	// Record the vote
	vote := &models.Vote{VoterID: voter.ID, SlateID: slate.ID}
	if err := s.voteRepo.Create(ctx, vote); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	// Mark the voter, undoing the vote if that fails
	if err := s.voterRepo.MarkVoted(ctx, voter.ID, now); err != nil {
		if delErr := s.voteRepo.Delete(ctx, vote.ID); delErr != nil {
			logger.Error("Failed to roll back vote", "vote_id", vote.ID, "voter_id", voter.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to mark voter as voted: %w", err)
	}

	// Results read this counter; CountVotes cross-checks it
	if err := s.slateRepo.IncrementVoteCount(ctx, slate.ID); err != nil {
		logger.Error("Failed to increment slate vote count", "slate_id", slate.ID, "error", err)
	}

	s.audit.Log(ctx, actor, models.AuditActionVoteCast, models.EntityVote, uuidPtr(vote.ID), map[string]interface{}{
		"voting_point_id": voter.VotingPointID.String(),
		"election_id":     election.ID.String(),
	})

	if err := s.stats.Bump(ctx, election.ID); err != nil {
		logger.Warn("Failed to invalidate statistics cache", "election_id", election.ID, "error", err)
	}

	return &CastVoteResult{
		VoteID:    vote.ID,
		SlateID:   slate.ID,
		VotedAt:   now,
		SlateName: slate.Name,
	}, nil
}
