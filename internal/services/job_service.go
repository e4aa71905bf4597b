package services

import (
	"context"
	"time"

	"github.com/voxpopuly/voxpopuly-api/internal/jobs"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// Scheduled job intervals
const (
	CloseElectionsInterval = time.Minute
	WarmStatsInterval      = 15 * time.Minute
	OrphanCleanupInterval  = 24 * time.Hour
)

type JobService struct {
	worker      *jobs.Worker
	elections   *ElectionService
	statistics  *StatisticsService
	maintenance *MaintenanceService
}

func NewJobService(worker *jobs.Worker, elections *ElectionService, statistics *StatisticsService, maintenance *MaintenanceService) *JobService {
	return &JobService{
		worker:      worker,
		elections:   elections,
		statistics:  statistics,
		maintenance: maintenance,
	}
}

// Start registers the recurring jobs on the worker
func (s *JobService) Start() {
	s.worker.ScheduleEveryImmediate("close_expired_elections", CloseElectionsInterval, s.CloseExpiredElections)
	s.worker.ScheduleEvery("warm_statistics", WarmStatsInterval, s.WarmStatistics)
	s.worker.ScheduleEvery("cleanup_orphaned_users", OrphanCleanupInterval, s.CleanupOrphanedUsers)
}

func (s *JobService) CloseExpiredElections(ctx context.Context) error {
	closed, err := s.elections.CloseExpired(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		logger.Info("Expired elections closed", "count", closed)
	}
	return nil
}

func (s *JobService) WarmStatistics(ctx context.Context) error {
	warmed, err := s.statistics.WarmOpenElections(ctx)
	if err != nil {
		return err
	}
	logger.Debug("Statistics cache warmed", "elections", warmed)
	return nil
}

func (s *JobService) CleanupOrphanedUsers(ctx context.Context) error {
	deleted, err := s.maintenance.CleanupOrphanedUsers(ctx, SystemActor)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logger.Info("Orphaned users deleted", "count", deleted)
	}
	return nil
}

func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
