// Package scheduler runs the periodic maintenance jobs: the nightly search
// reindex and the audit log cleanup.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a five-field cron schedule string.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Job is a named function run on a cron schedule.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler owns a cron instance and the jobs registered on it.
type Scheduler struct {
	logger *zap.Logger

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a stopped scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger:  logger,
		cron:    cron.New(cron.WithParser(cronParser)),
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers a job. Jobs with an empty schedule are skipped.
func (s *Scheduler) Add(job Job) error {
	if job.Schedule == "" {
		s.logger.Info("Scheduled job disabled", zap.String("job", job.Name))
		return nil
	}
	if err := ValidateCronSchedule(job.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name]; exists {
		return fmt.Errorf("job %s already scheduled", job.Name)
	}

	entryID, err := s.cron.AddFunc(job.Schedule, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
	}
	s.entries[job.Name] = entryID
	return nil
}

// Start begins running jobs until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.isRunning = true

	for name, id := range s.entries {
		s.logger.Info("Scheduled job", zap.String("job", name), zap.Time("next_run", s.cron.Entry(id).Next))
	}

	go func(ctx context.Context) {
		<-ctx.Done()
		s.Stop()
	}(s.ctx)
}

// Stop stops the scheduler and waits for running jobs to finish. Running jobs
// see their context cancelled.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()

	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the named job runs next, or nil if it is not scheduled
// or the scheduler is stopped.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[name]
	if !ok || !s.isRunning {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

// RunNow triggers the named job immediately in the background.
func (s *Scheduler) RunNow(job Job) {
	go s.run(job)
}

func (s *Scheduler) run(job Job) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Error("Scheduled job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.logger.Info("Scheduled job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
}
