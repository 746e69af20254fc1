package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"opportunity-sync-go/internal/config"
	"opportunity-sync-go/internal/orchestrator"
)

// Scheduler fires the sync run once a day at the configured hour. The
// cron facility guarantees non-overlapping scheduled runs; nothing here
// guards against a second process.
type Scheduler struct {
	cron         *cron.Cron
	entryID      cron.EntryID
	config       *config.SchedulerConfig
	orchestrator *orchestrator.Orchestrator
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	isRunning    bool
	mu           sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, orch *orchestrator.Orchestrator) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		config:       cfg,
		orchestrator: orch,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	// Run once a day at the configured hour.
	schedule := fmt.Sprintf("0 0 %d * * *", s.config.DailyHour)

	entryID, err := s.cron.AddFunc(schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started, daily sync at hour %d", s.config.DailyHour)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	// Cancel context to stop any running operations
	s.cancel()

	ctx := s.cron.Stop()
	s.cron.Remove(s.entryID)

	// Wait for any in-flight run to complete
	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// runSync is the scheduled job body.
func (s *Scheduler) runSync() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.Info("Scheduler not running, skipping sync cycle")
		return
	}
	ctx := s.ctx
	s.mu.RUnlock()

	logrus.Info("Starting scheduled sync run")
	startTime := time.Now()

	summary, err := s.orchestrator.ProcessAll(ctx)
	if err != nil {
		logrus.Errorf("Sync run failed: %v", err)
		return
	}

	logrus.Infof("Sync run completed in %v: %d processed, %d successful, %d failed",
		time.Since(startTime), summary.Processed, summary.Successful, summary.Failed)
}

// RunOnce runs the sync once (for manual triggering)
func (s *Scheduler) RunOnce(ctx context.Context) (*orchestrator.Summary, error) {
	logrus.Info("Running sync once")
	return s.orchestrator.ProcessAll(ctx)
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time of the last scheduled run
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Prev
}

// Wait waits for any in-flight run to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
