package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wealthpath/notifications/internal/model"
)

// NotificationRepository owns the delivery queue and the job execution log.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Enqueue inserts n unless a row with the same idempotency key already
// exists. inserted is false for the duplicate no-op; only genuine failures
// return an error.
func (r *NotificationRepository) Enqueue(ctx context.Context, n *model.QueuedNotification) (inserted bool, err error) {
	data := []byte("{}")
	if len(n.Data) > 0 {
		data, err = json.Marshal(n.Data)
		if err != nil {
			return false, fmt.Errorf("marshal notification data: %w", err)
		}
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	query := `
		INSERT INTO notification_queue (id, user_id, notification_type, title, body, data, idempotency_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NOW())
		ON CONFLICT (idempotency_key) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.NotificationType, n.Title, n.Body, string(data), n.IdempotencyKey,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Job Execution Log

func (r *NotificationRepository) InsertJobLog(ctx context.Context, log *model.JobExecutionLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	query := `
		INSERT INTO job_execution_logs (
			id, job_name, executed_at, success, duration_ms,
			total_users_processed, notifications_sent, notifications_failed, error_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.JobName, log.ExecutedAt, log.Success, log.DurationMs,
		log.TotalUsersProcessed, log.NotificationsSent, log.NotificationsFailed, log.ErrorMessage,
	)
	return err
}

func (r *NotificationRepository) ListJobLogs(ctx context.Context, jobName string, limit int) ([]model.JobExecutionLog, error) {
	var logs []model.JobExecutionLog
	query := `
		SELECT id, job_name, executed_at, success, duration_ms,
			total_users_processed, notifications_sent, notifications_failed, error_message
		FROM job_execution_logs
		WHERE job_name = $1
		ORDER BY executed_at DESC
		LIMIT $2`
	err := r.db.SelectContext(ctx, &logs, query, jobName, limit)
	return logs, err
}
