package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/wealthpath/notifications/docs"
	"github.com/wealthpath/notifications/internal/amqp"
	"github.com/wealthpath/notifications/internal/config"
	"github.com/wealthpath/notifications/internal/handler"
	"github.com/wealthpath/notifications/internal/logger"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/internal/repository"
	"github.com/wealthpath/notifications/internal/scheduler"
	"github.com/wealthpath/notifications/internal/service"
)

// @title WealthPath Notifications API
// @version 1.0
// @description Daily notification jobs, notification preferences and throttled smart sends.

// @contact.name API Support
// @contact.email support@wealthpath.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ServiceToken
// @in header
// @name Authorization
// @description Type "Bearer" followed by the JOBS_SERVICE_TOKEN value.

func main() {
	cfg := config.Load()

	logger := logger.New(os.Stdout, cfg.Env)
	slog.SetDefault(logger)

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Initialize repositories
	preferenceRepo := repository.NewPreferenceRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	throttleRepo := repository.NewThrottleRepository(db)

	// Initialize services
	budgetEvaluator := service.NewBudgetThresholdEvaluator(budgetRepo, transactionRepo, categoryRepo, cfg.Jobs.StoreTimeout, logger)
	anomalyDetector := service.NewAnomalyDetector(transactionRepo, categoryRepo, service.AnomalyConfig{
		LookbackDays:     cfg.Jobs.AnomalyLookbackDays,
		StdDevMultiplier: cfg.Jobs.AnomalyStdDevMultiplier,
		AggregateDaily:   cfg.Jobs.AnomalyAggregateDaily,
		StoreTimeout:     cfg.Jobs.StoreTimeout,
	}, logger)
	dailyJobsService := service.NewDailyJobsService(
		preferenceRepo,
		notificationRepo,
		notificationRepo,
		budgetEvaluator,
		anomalyDetector,
		service.DailyJobsConfig{
			WorkerLimit:       cfg.Jobs.WorkerLimit,
			StoreTimeout:      cfg.Jobs.StoreTimeout,
			ScheduleTolerance: cfg.Jobs.ScheduleTolerance,
		},
		logger,
	)
	preferenceService := service.NewPreferenceService(preferenceRepo)

	var deliverer service.Deliverer
	switch cfg.Delivery.Backend {
	case "amqp":
		client, err := amqp.NewClient(cfg.Delivery.AMQPURL, cfg.Delivery.AMQPExchange, cfg.Delivery.AMQPQueue, logger)
		if err != nil {
			log.Fatalf("Failed to connect to message broker: %v", err)
		}
		defer func() { _ = client.Close() }()
		deliverer = client
	default:
		deliverer = service.NewQueueDeliverer(notificationRepo, cfg.Jobs.StoreTimeout, logger)
	}

	smartSendService := service.NewSmartSendService(throttleRepo, deliverer, preferenceRepo, service.SmartSendConfig{
		DefaultInterval: cfg.ThrottleDefaultInterval,
		Intervals:       throttleIntervals(cfg.ThrottleIntervals, logger),
		StoreTimeout:    cfg.Jobs.StoreTimeout,
	}, logger)

	// Initialize handlers
	jobsHandler := handler.NewJobsHandler(dailyJobsService, notificationRepo)
	notificationHandler := handler.NewNotificationHandler(preferenceService, smartSendService)

	if cfg.Jobs.ServiceToken == "" {
		logger.Warn("JOBS_SERVICE_TOKEN is not set; job endpoints are unauthenticated")
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(handler.RequestLogContext)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Job routes, called by the external scheduler
	r.Group(func(r chi.Router) {
		r.Use(handler.ServiceTokenMiddleware(cfg.Jobs.ServiceToken))

		r.Post("/schedule-daily-jobs", jobsHandler.RunDailyJobs)
		r.Post("/api/jobs/daily", jobsHandler.RunDailyJobs)
		r.Get("/api/jobs/executions", jobsHandler.ListExecutions)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(handler.AuthMiddleware)

		r.Get("/api/notifications/preferences", notificationHandler.GetPreferences)
		r.Put("/api/notifications/preferences", notificationHandler.UpdatePreferences)
		r.Post("/api/notifications/send", notificationHandler.Send)
	})

	// In-process trigger for deployments without an external scheduler
	var jobScheduler *scheduler.Scheduler
	if cfg.Jobs.CronEnabled {
		jobScheduler = scheduler.New(scheduler.Config{
			Schedule: cfg.Jobs.CronSchedule,
			Timeout:  cfg.Jobs.RunTimeout,
			Enabled:  true,
		}, dailyJobsService, logger)
		if err := jobScheduler.Start(); err != nil {
			logger.Error("Failed to start job scheduler", slog.String("error", err.Error()))
		} else {
			logger.Info("Job scheduler started",
				slog.String("schedule", cfg.Jobs.CronSchedule),
				slog.Duration("timeout", cfg.Jobs.RunTimeout),
			)
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		if jobScheduler != nil {
			ctx := jobScheduler.Stop()
			<-ctx.Done()
			logger.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Jobs.RunTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", slog.String("error", err.Error()))
	}
}

// throttleIntervals keeps the configured overrides that name a known
// notification type.
func throttleIntervals(raw map[string]time.Duration, logger *slog.Logger) map[model.NotificationType]time.Duration {
	out := make(map[model.NotificationType]time.Duration, len(raw))
	for name, d := range raw {
		t := model.NotificationType(name)
		if !t.IsValid() {
			logger.Warn("Ignoring throttle interval for unknown type", slog.String("type", name))
			continue
		}
		out[t] = d
	}
	return out
}
