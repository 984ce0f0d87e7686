// Package scheduler triggers the daily notification run from an in-process cron.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wealthpath/notifications/internal/model"
)

// Runner is the job the scheduler triggers.
type Runner interface {
	RunDailyJobs(ctx context.Context) (model.DailyJobsResult, error)
}

type Config struct {
	// Schedule is a standard 5-field cron expression, e.g. "*/5 * * * *".
	Schedule string
	// Timeout bounds one complete run.
	Timeout time.Duration
	Enabled bool
}

func DefaultConfig() Config {
	return Config{
		Schedule: "*/5 * * * *",
		Timeout:  5 * time.Minute,
		Enabled:  false,
	}
}

type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	config  Config
	logger  *slog.Logger
	entryID cron.EntryID

	// running prevents overlapping runs when one outlasts the interval.
	running sync.Mutex
}

func New(cfg Config, runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		runner: runner,
		config: cfg,
		logger: logger,
	}
}

func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled, skipping start")
		return nil
	}

	// The cron runs with a seconds field; pin it to 0.
	entryID, err := s.cron.AddFunc("0 "+s.config.Schedule, s.runJob)
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	s.logger.Info("Scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.Duration("timeout", s.config.Timeout),
	)
	return nil
}

// Stop stops new runs; the returned context is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler...")
	return s.cron.Stop()
}

// RunNow triggers an immediate run in the background.
func (s *Scheduler) RunNow() {
	go s.runJob()
}

func (s *Scheduler) runJob() {
	if !s.running.TryLock() {
		s.logger.Warn("Previous daily jobs run still in progress, skipping")
		return
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.runner.RunDailyJobs(ctx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Scheduled daily jobs failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return
	}

	total := result.Total()
	s.logger.Info("Scheduled daily jobs completed",
		slog.Int("processed", total.Processed),
		slog.Int("sent", total.Sent),
		slog.Int("failed", total.Failed),
		slog.Duration("duration", duration),
	)
}

func (s *Scheduler) GetNextRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
