package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs queued jobs on a fixed pool of goroutines and named jobs on
// schedules. Every run is counted in the worker statistics.
type Worker struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	queue     chan Job
	poolSize  int
	closed    bool
	closeMu   sync.RWMutex
	stats     WorkerStats
	schedules map[string]*ScheduleStatus
	statsMu   sync.RWMutex
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int              `json:"active_jobs"`
	CompletedJobs int64            `json:"completed_jobs"`
	FailedJobs    int64            `json:"failed_jobs"`
	QueueLength   int              `json:"queue_length"`
	PoolSize      int              `json:"pool_size"`
	Schedules     []ScheduleStatus `json:"schedules"`
}

// ScheduleStatus reports the last run of a scheduled job
type ScheduleStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Runs      int64         `json:"runs"`
	LastRunAt *time.Time    `json:"last_run_at"`
	LastError string        `json:"last_error,omitempty"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:       ctx,
		cancel:    cancel,
		queue:     make(chan Job, 500),
		poolSize:  numWorkers,
		schedules: make(map[string]*ScheduleStatus),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to the pool. When the queue is full the job runs in the
// caller's goroutine. Jobs enqueued after Shutdown are dropped.
func (w *Worker) Enqueue(job Job) {
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		logger.Warn("Worker stopped, dropping job")
		return
	}

	select {
	case w.queue <- job:
	default:
		logger.Warn("Worker queue full, running job synchronously")
		w.run(-1, job)
	}
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(workerID, job)
		}
	}
}

// run executes one queued job, recovering from panics
func (w *Worker) run(workerID int, job Job) {
	w.trackJobStart()
	defer w.trackJobEnd()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panic", "worker", workerID, "panic", fmt.Sprint(r))
			w.trackJobFailure()
		}
	}()

	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error("Job failed", "worker", workerID, "error", err)
		w.trackJobFailure()
		return
	}
	logger.Debug("Job completed", "worker", workerID, "duration", time.Since(start))
}

// ScheduleEvery runs a named job at fixed intervals. The first run happens
// after one interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, false, job)
}

// ScheduleEveryImmediate runs a named job once at startup, then at fixed
// intervals
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, true, job)
}

func (w *Worker) schedule(name string, interval time.Duration, immediate bool, job Job) {
	w.statsMu.Lock()
	w.schedules[name] = &ScheduleStatus{Name: name, Interval: interval}
	w.statsMu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.runScheduledJob(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduledJob(name, job)
			}
		}
	}()
}

func (w *Worker) runScheduledJob(name string, job Job) {
	var jobErr error
	w.trackJobStart()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Scheduled job panic", "job", name, "panic", fmt.Sprint(r))
			jobErr = fmt.Errorf("panic: %v", r)
			w.trackJobFailure()
		}
		w.trackScheduleRun(name, jobErr)
		w.trackJobEnd()
	}()

	start := time.Now()
	if jobErr = job(w.ctx); jobErr != nil {
		logger.Error("Scheduled job failed", "job", name, "error", jobErr)
		w.trackJobFailure()
		return
	}
	logger.Info("Scheduled job completed", "job", name, "duration", time.Since(start))
}

// Shutdown stops the schedules and waits for running jobs
func (w *Worker) Shutdown() {
	w.closeMu.Lock()
	if w.closed {
		w.closeMu.Unlock()
		return
	}
	w.closed = true
	w.cancel()
	close(w.queue)
	w.closeMu.Unlock()
	w.wg.Wait()
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.PoolSize = w.poolSize
	stats.Schedules = make([]ScheduleStatus, 0, len(w.schedules))
	for _, s := range w.schedules {
		stats.Schedules = append(stats.Schedules, *s)
	}
	sort.Slice(stats.Schedules, func(i, j int) bool {
		return stats.Schedules[i].Name < stats.Schedules[j].Name
	})
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

// trackJobEnd counts every finished job; FailedJobs is a subset of
// CompletedJobs
func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}

func (w *Worker) trackScheduleRun(name string, err error) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	s, ok := w.schedules[name]
	if !ok {
		return
	}
	now := time.Now()
	s.Runs++
	s.LastRunAt = &now
	s.LastError = ""
	if err != nil {
		s.LastError = err.Error()
	}
}
