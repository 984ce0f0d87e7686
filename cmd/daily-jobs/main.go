// Command daily-jobs runs the daily notification passes once and exits.
// It is meant for cron-style schedulers that start a process per run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/wealthpath/notifications/internal/config"
	"github.com/wealthpath/notifications/internal/logger"
	"github.com/wealthpath/notifications/internal/repository"
	"github.com/wealthpath/notifications/internal/service"
)

func main() {
	only := flag.String("only", "", "Run a single pass: reminders, budgets or anomalies")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Jobs.RunTimeout)
	defer cancel()

	if err := run(ctx, cfg, *only, log); err != nil {
		log.Error("Daily jobs failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, only string, log *slog.Logger) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	preferenceRepo := repository.NewPreferenceRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	svc := service.NewDailyJobsService(
		preferenceRepo,
		notificationRepo,
		notificationRepo,
		service.NewBudgetThresholdEvaluator(repository.NewBudgetRepository(db), transactionRepo, categoryRepo, cfg.Jobs.StoreTimeout, log),
		service.NewAnomalyDetector(transactionRepo, categoryRepo, service.AnomalyConfig{
			LookbackDays:     cfg.Jobs.AnomalyLookbackDays,
			StdDevMultiplier: cfg.Jobs.AnomalyStdDevMultiplier,
			AggregateDaily:   cfg.Jobs.AnomalyAggregateDaily,
			StoreTimeout:     cfg.Jobs.StoreTimeout,
		}, log),
		service.DailyJobsConfig{
			WorkerLimit:       cfg.Jobs.WorkerLimit,
			StoreTimeout:      cfg.Jobs.StoreTimeout,
			ScheduleTolerance: cfg.Jobs.ScheduleTolerance,
		},
		log,
	)

	var out any
	switch only {
	case "reminders":
		out = svc.RunDailyReminders(ctx)
	case "budgets":
		out = svc.RunBudgetWarnings(ctx)
	case "anomalies":
		out = svc.RunDailyAnomalies(ctx)
	case "":
		result, err := svc.RunDailyJobs(ctx)
		if err != nil {
			return err
		}
		out = result
	default:
		return fmt.Errorf("unknown pass %q", only)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
