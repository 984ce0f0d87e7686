package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wealthpath/notifications/internal/apperror"
	"github.com/wealthpath/notifications/internal/logger"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/internal/service"
)

const (
	defaultExecutionsLimit = 20
	maxExecutionsLimit     = 100
)

type DailyJobsRunner interface {
	RunDailyJobs(ctx context.Context) (model.DailyJobsResult, error)
}

type JobLogReader interface {
	ListJobLogs(ctx context.Context, jobName string, limit int) ([]model.JobExecutionLog, error)
}

type JobsHandler struct {
	runner DailyJobsRunner
	logs   JobLogReader
}

func NewJobsHandler(runner DailyJobsRunner, logs JobLogReader) *JobsHandler {
	return &JobsHandler{runner: runner, logs: logs}
}

type DailyJobsResponse struct {
	Success bool                  `json:"success"`
	Results model.DailyJobsResult `json:"results"`
}

// RunDailyJobs runs the daily notification passes once
// @Summary Run daily notification jobs
// @Description Evaluates reminders, budget warnings and spending anomalies for all opted-in users
// @Tags jobs
// @Produce json
// @Security ServiceToken
// @Success 200 {object} DailyJobsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /schedule-daily-jobs [post]
func (h *JobsHandler) RunDailyJobs(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.RunDailyJobs(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("daily jobs failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, DailyJobsResponse{Success: true, Results: result})
}

// ListExecutions returns recent daily job runs
// @Summary List daily job executions
// @Tags jobs
// @Produce json
// @Security ServiceToken
// @Param limit query int false "Max rows (default 20, max 100)"
// @Success 200 {array} model.JobExecutionLog
// @Failure 400 {object} ErrorResponse
// @Router /api/jobs/executions [get]
func (h *JobsHandler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	limit := defaultExecutionsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondAppError(w, apperror.ValidationError("limit", "must be a positive integer"))
			return
		}
		limit = min(n, maxExecutionsLimit)
	}

	logs, err := h.logs.ListJobLogs(r.Context(), service.DailyJobName, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if logs == nil {
		logs = []model.JobExecutionLog{}
	}

	respondJSON(w, http.StatusOK, logs)
}
