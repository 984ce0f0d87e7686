package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wealthpath/notifications/internal/logger"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/pkg/datetime"
)

// DailyJobName is the job_name written to the execution log.
const DailyJobName = "daily_notifications"

const DefaultWorkerLimit = 25

type PreferenceReader interface {
	ListByFeature(ctx context.Context, feature model.Feature) ([]model.NotificationPreferences, error)
}

type NotificationQueue interface {
	Enqueue(ctx context.Context, n *model.QueuedNotification) (inserted bool, err error)
}

type JobLogWriter interface {
	InsertJobLog(ctx context.Context, log *model.JobExecutionLog) error
}

type BudgetEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID, threshold int, now time.Time) ([]model.BudgetWarning, error)
}

type AnomalyEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.SpendingAnomaly, error)
}

type DailyJobsConfig struct {
	WorkerLimit       int
	StoreTimeout      time.Duration
	ScheduleTolerance time.Duration
}

// DailyJobsService runs the daily notification passes. Each pass scans the
// users with the feature enabled, evaluates them in a bounded worker pool and
// enqueues at most one notification per idempotency key.
type DailyJobsService struct {
	prefs     PreferenceReader
	queue     NotificationQueue
	jobLog    JobLogWriter
	budgets   BudgetEvaluator
	anomalies AnomalyEvaluator
	schedule  *ScheduleEvaluator
	cfg       DailyJobsConfig
	now       func() time.Time
	logger    *slog.Logger
}

func NewDailyJobsService(
	prefs PreferenceReader,
	queue NotificationQueue,
	jobLog JobLogWriter,
	budgets BudgetEvaluator,
	anomalies AnomalyEvaluator,
	cfg DailyJobsConfig,
	logger *slog.Logger,
) *DailyJobsService {
	if cfg.WorkerLimit <= 0 {
		cfg.WorkerLimit = DefaultWorkerLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyJobsService{
		prefs:     prefs,
		queue:     queue,
		jobLog:    jobLog,
		budgets:   budgets,
		anomalies: anomalies,
		schedule:  NewScheduleEvaluator(cfg.ScheduleTolerance),
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source.
func (s *DailyJobsService) WithClock(now func() time.Time) *DailyJobsService {
	s.now = now
	return s
}

// RunDailyJobs runs the three passes and appends one execution log row. A
// failing pass contributes a zero result and never stops the others. Only a
// failure of the run itself is logged with success=false and returned.
func (s *DailyJobsService) RunDailyJobs(ctx context.Context) (result model.DailyJobsResult, err error) {
	runID := uuid.New().String()
	ctx = logger.WithJobRunID(ctx, runID)
	log := logger.Enrich(ctx, s.logger)

	start := s.now()
	log.Info("daily jobs started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("daily jobs aborted: %v", r)
			result = model.DailyJobsResult{}
		}

		total := result.Total()
		entry := &model.JobExecutionLog{
			JobName:             DailyJobName,
			ExecutedAt:          start,
			Success:             err == nil && total.Failed == 0,
			DurationMs:          s.now().Sub(start).Milliseconds(),
			TotalUsersProcessed: total.Processed,
			NotificationsSent:   total.Sent,
			NotificationsFailed: total.Failed,
		}
		if err != nil {
			msg := err.Error()
			entry.ErrorMessage = &msg
		}
		s.writeJobLog(context.WithoutCancel(ctx), log, entry)

		if err != nil {
			log.Error("daily jobs failed", slog.String("error", err.Error()))
			return
		}
		log.Info("daily jobs completed",
			slog.Int("processed", total.Processed),
			slog.Int("sent", total.Sent),
			slog.Int("failed", total.Failed),
			slog.Int64("duration_ms", entry.DurationMs),
		)
	}()

	result.DailyReminders = s.RunDailyReminders(ctx)
	result.BudgetWarnings = s.RunBudgetWarnings(ctx)
	result.DailyAnomalies = s.RunDailyAnomalies(ctx)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("daily jobs interrupted: %w", ctxErr)
	}
	return result, nil
}

func (s *DailyJobsService) writeJobLog(ctx context.Context, log *slog.Logger, entry *model.JobExecutionLog) {
	err := callStoreErr(ctx, s.cfg.StoreTimeout, log, "insert job log", func(ctx context.Context) error {
		return s.jobLog.InsertJobLog(ctx, entry)
	})
	if err != nil {
		log.Error("failed to write job execution log", slog.String("error", err.Error()))
	}
}

// RunDailyReminders enqueues a reminder for every user whose reminder time is
// now and who is outside quiet hours. Users filtered out still count as processed.
func (s *DailyJobsService) RunDailyReminders(ctx context.Context) model.JobResult {
	now := s.now()
	return s.runPass(ctx, model.FeatureDailyReminder,
		func(p *model.NotificationPreferences) bool {
			return s.schedule.IsScheduledNow(p.TimezoneName(), p.ReminderTime(), now) &&
				!IsWithinDoNotDisturb(p, now)
		},
		func(ctx context.Context, p *model.NotificationPreferences) ([]*model.QueuedNotification, error) {
			date := datetime.DateString(datetime.InZone(now, p.TimezoneName()))
			title, body := dailyReminderMessage()
			return []*model.QueuedNotification{{
				UserID:           p.UserID,
				NotificationType: model.NotificationTypeDailyReminder,
				Title:            title,
				Body:             body,
				Data:             model.NewDailyReminderData(date),
				IdempotencyKey:   dailyReminderKey(p.UserID, date),
			}}, nil
		},
	)
}

// RunBudgetWarnings enqueues one warning per budget at or above the user's threshold.
func (s *DailyJobsService) RunBudgetWarnings(ctx context.Context) model.JobResult {
	now := s.now()
	return s.runPass(ctx, model.FeatureBudgetWarnings, nil,
		func(ctx context.Context, p *model.NotificationPreferences) ([]*model.QueuedNotification, error) {
			local := datetime.InZone(now, p.TimezoneName())
			warnings, err := s.budgets.Evaluate(ctx, p.UserID, p.WarningThreshold(), local)
			if err != nil {
				return nil, fmt.Errorf("evaluate budgets: %w", err)
			}

			date := datetime.DateString(local)
			out := make([]*model.QueuedNotification, 0, len(warnings))
			for _, w := range warnings {
				data, err := model.NewBudgetWarningData(w)
				if err != nil {
					return nil, err
				}
				title, body := budgetWarningMessage(w)
				out = append(out, &model.QueuedNotification{
					UserID:           p.UserID,
					NotificationType: model.NotificationTypeBudgetWarning,
					Title:            title,
					Body:             body,
					Data:             data,
					IdempotencyKey:   budgetWarningKey(p.UserID, w.CategoryID, date),
				})
			}
			return out, nil
		},
	)
}

// RunDailyAnomalies enqueues one alert per category with unusual spend today.
func (s *DailyJobsService) RunDailyAnomalies(ctx context.Context) model.JobResult {
	now := s.now()
	return s.runPass(ctx, model.FeatureDailyAnomaly, nil,
		func(ctx context.Context, p *model.NotificationPreferences) ([]*model.QueuedNotification, error) {
			local := datetime.InZone(now, p.TimezoneName())
			anomalies, err := s.anomalies.Evaluate(ctx, p.UserID, local)
			if err != nil {
				return nil, fmt.Errorf("detect anomalies: %w", err)
			}

			date := datetime.DateString(local)
			out := make([]*model.QueuedNotification, 0, len(anomalies))
			for _, a := range anomalies {
				data, err := model.NewAnomalyData(a)
				if err != nil {
					return nil, err
				}
				title, body := anomalyMessage(a)
				out = append(out, &model.QueuedNotification{
					UserID:           p.UserID,
					NotificationType: model.NotificationTypeDailyAnomaly,
					Title:            title,
					Body:             body,
					Data:             data,
					IdempotencyKey:   anomalyKey(p.UserID, a.CategoryID, date),
				})
			}
			return out, nil
		},
	)
}

type buildFunc func(ctx context.Context, p *model.NotificationPreferences) ([]*model.QueuedNotification, error)

// runPass loads the users with feature enabled and processes each one in the
// worker pool. A user failure is counted and never affects other users; a
// failure to load the users yields a zero result.
func (s *DailyJobsService) runPass(ctx context.Context, feature model.Feature, include func(*model.NotificationPreferences) bool, build buildFunc) model.JobResult {
	log := logger.Enrich(ctx, s.logger).With(slog.String("pass", string(feature)))

	users, err := callStore(ctx, s.cfg.StoreTimeout, log, "list preferences", func(ctx context.Context) ([]model.NotificationPreferences, error) {
		return s.prefs.ListByFeature(ctx, feature)
	})
	if err != nil {
		log.Error("failed to load users for pass", slog.String("error", err.Error()))
		return model.JobResult{}
	}

	var (
		mu     sync.Mutex
		result model.JobResult
	)
	add := func(r model.JobResult) {
		mu.Lock()
		result = result.Add(r)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.WorkerLimit)

	for i := range users {
		p := &users[i]
		if include != nil && !include(p) {
			add(model.JobResult{Processed: 1})
			continue
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			add(s.processUser(gctx, log, p, build))
			return nil
		})
	}
	_ = g.Wait()

	log.Info("pass completed",
		slog.Int("processed", result.Processed),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed),
	)
	return result
}

func (s *DailyJobsService) processUser(ctx context.Context, log *slog.Logger, p *model.NotificationPreferences, build buildFunc) (r model.JobResult) {
	r.Processed = 1
	log = log.With(slog.String("user_id", p.UserID.String()))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("user evaluation panicked", slog.Any("panic", rec))
			r.Failed++
		}
	}()

	notifications, err := build(ctx, p)
	if err != nil {
		log.Warn("user evaluation failed", slog.String("error", err.Error()))
		r.Failed++
		return r
	}

	for _, n := range notifications {
		inserted, err := callStore(ctx, s.cfg.StoreTimeout, log, "enqueue notification", func(ctx context.Context) (bool, error) {
			return s.queue.Enqueue(ctx, n)
		})
		if err != nil {
			log.Warn("failed to enqueue notification",
				slog.String("idempotency_key", n.IdempotencyKey),
				slog.String("error", err.Error()),
			)
			r.Failed++
			continue
		}
		if !inserted {
			log.Debug("notification already queued", slog.String("idempotency_key", n.IdempotencyKey))
		}
		r.Sent++
	}
	return r
}
