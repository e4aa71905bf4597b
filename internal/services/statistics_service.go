package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/cache"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

type StatisticsService struct {
	statsRepo    repository.StatisticsRepository
	electionRepo repository.ElectionRepository
	pointRepo    repository.VotingPointRepository
	profileRepo  repository.ProfileRepository
	voterRepo    repository.VoterRepository
	voteRepo     repository.VoteRepository
	slateRepo    repository.SlateRepository
	cache        *cache.StatsCache
	now          func() time.Time
}

func NewStatisticsService(
	statsRepo repository.StatisticsRepository,
	electionRepo repository.ElectionRepository,
	pointRepo repository.VotingPointRepository,
	profileRepo repository.ProfileRepository,
	voterRepo repository.VoterRepository,
	voteRepo repository.VoteRepository,
	slateRepo repository.SlateRepository,
	statsCache *cache.StatsCache,
) *StatisticsService {
	return &StatisticsService{
		statsRepo:    statsRepo,
		electionRepo: electionRepo,
		pointRepo:    pointRepo,
		profileRepo:  profileRepo,
		voterRepo:    voterRepo,
		voteRepo:     voteRepo,
		slateRepo:    slateRepo,
		cache:        statsCache,
		now:          time.Now,
	}
}

// AdminDashboard returns global counters
func (s *StatisticsService) AdminDashboard(ctx context.Context) (*models.AdminDashboard, error) {
	var (
		d   models.AdminDashboard
		err error
	)
	if d.Elections, err = s.electionRepo.Count(ctx); err != nil {
		return nil, err
	}
	if d.ActiveElections, err = s.electionRepo.CountOpen(ctx, s.now()); err != nil {
		return nil, err
	}
	if d.VotingPoints, err = s.pointRepo.Count(ctx); err != nil {
		return nil, err
	}
	if d.Delegates, err = s.profileRepo.CountByRole(ctx, models.RoleDelegate); err != nil {
		return nil, err
	}
	total, voted, err := s.voterRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	d.Voters = total
	if d.VotesCast, err = s.voteRepo.Count(ctx); err != nil {
		return nil, err
	}
	d.Turnout = models.Percent(voted, total)
	return &d, nil
}

// DelegateDashboard returns the voting point assigned to the calling delegate
func (s *StatisticsService) DelegateDashboard(ctx context.Context, actor Actor) (*models.DelegateDashboard, error) {
	point, err := s.pointRepo.FindByDelegate(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, "no tienes un punto de votación asignado")
	}

	// Slates are preloaded with the voting point
	slates := make([]models.SlateResponse, 0, len(point.Slates))
	for i := range point.Slates {
		slates = append(slates, point.Slates[i].ToResponse())
	}

	resp := point.ToResponse()
	return &models.DelegateDashboard{
		VotingPoint: resp,
		Election:    point.Election.ToResponse(),
		Slates:      slates,
		TotalVoters: resp.VotersCount,
		TotalVoted:  resp.VotedCount,
		Turnout:     models.Percent(resp.VotedCount, resp.VotersCount),
	}, nil
}

// VoterBallot returns the ballot of the calling voter
func (s *StatisticsService) VoterBallot(ctx context.Context, actor Actor) (*models.VoterBallot, error) {
	voter, err := s.voterRepo.FindByProfile(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, "no estás registrado como votante")
	}

	slates, err := s.slateRepo.ListByVotingPoint(ctx, voter.VotingPointID)
	if err != nil {
		return nil, err
	}
	ballot := make([]models.SlateResponse, 0, len(slates))
	for i := range slates {
		ballot = append(ballot, slates[i].ToBallotResponse())
	}

	election := &voter.VotingPoint.Election
	return &models.VoterBallot{
		VotingPointID: voter.VotingPointID,
		VotingPoint:   voter.VotingPoint.Name,
		Location:      voter.VotingPoint.Location,
		Election:      election.ToResponse(),
		CanVote:       !voter.HasVoted && election.IsOpen(s.now()),
		HasVoted:      voter.HasVoted,
		VotedAt:       voter.VotedAt,
		Slates:        ballot,
	}, nil
}

// ElectionStatistics returns turnout and results of an election, served from
// the cache when one is configured
func (s *StatisticsService) ElectionStatistics(ctx context.Context, electionID uuid.UUID) (*models.ElectionStatistics, error) {
	election, err := s.electionRepo.FindByID(ctx, electionID)
	if err != nil {
		return nil, notFound(err, "elección no encontrada")
	}

	var stats models.ElectionStatistics
	err = s.cache.FetchJSON(ctx, electionID, "summary", &stats, func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, election)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *StatisticsService) compute(ctx context.Context, election *models.Election) (*models.ElectionStatistics, error) {
	turnout, err := s.statsRepo.VotingPointTurnout(ctx, election.ID)
	if err != nil {
		return nil, err
	}
	results, err := s.statsRepo.SlateResults(ctx, election.ID)
	if err != nil {
		return nil, err
	}
	votes, err := s.statsRepo.CountVotes(ctx, election.ID)
	if err != nil {
		return nil, err
	}

	// Group slate results per voting point
	byPoint := make(map[uuid.UUID][]repository.SlateResult)
	pointVotes := make(map[uuid.UUID]int64)
	for _, r := range results {
		byPoint[r.VotingPointID] = append(byPoint[r.VotingPointID], r)
		pointVotes[r.VotingPointID] += r.VoteCount
	}

	now := s.now()
	stats := &models.ElectionStatistics{
		ElectionID:   election.ID,
		Title:        election.Title,
		Phase:        election.Phase(now),
		StartDate:    election.StartDate,
		EndDate:      election.EndDate,
		TotalVotes:   votes,
		VotingPoints: make([]models.VotingPointStatistic, 0, len(turnout)),
		GeneratedAt:  now,
	}

	// Percentages are relative to the votes of each voting point
	for _, t := range turnout {
		point := models.VotingPointStatistic{
			VotingPointID: t.VotingPointID,
			Name:          t.Name,
			Location:      t.Location,
			DelegateName:  t.DelegateName,
			TotalVoters:   t.TotalVoters,
			TotalVoted:    t.TotalVoted,
			Turnout:       models.Percent(t.TotalVoted, t.TotalVoters),
			Slates:        []models.SlateStatistic{},
		}
		for _, r := range byPoint[t.VotingPointID] {
			point.Slates = append(point.Slates, models.SlateStatistic{
				SlateID:    r.SlateID,
				Name:       r.Name,
				IsSystem:   r.IsSystem,
				VoteCount:  r.VoteCount,
				Percentage: models.Percent(r.VoteCount, pointVotes[t.VotingPointID]),
			})
		}
		stats.TotalVoters += t.TotalVoters
		stats.TotalVoted += t.TotalVoted
		stats.VotingPoints = append(stats.VotingPoints, point)
	}
	stats.Turnout = models.Percent(stats.TotalVoted, stats.TotalVoters)

	// Compare counters against the vote rows
	var counted int64
	for _, v := range pointVotes {
		counted += v
	}
	if counted != votes {
		logger.Warn("Slate vote counts differ from recorded votes",
			"election_id", election.ID, "slate_total", counted, "votes", votes)
	}
	return stats, nil
}

// WarmOpenElections precomputes statistics of every open election. It returns
// how many elections were refreshed.
func (s *StatisticsService) WarmOpenElections(ctx context.Context) (int, error) {
	if !s.cache.Enabled() {
		return 0, nil
	}
	elections, err := s.electionRepo.FindOpen(ctx, s.now())
	if err != nil {
		return 0, err
	}
	warmed := 0
	for _, e := range elections {
		if _, err := s.ElectionStatistics(ctx, e.ID); err != nil {
			logger.Warn("Failed to warm election statistics", "election_id", e.ID, "error", err)
			continue
		}
		warmed++
	}
	return warmed, nil
}
