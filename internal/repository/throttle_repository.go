package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wealthpath/notifications/internal/model"
)

// ThrottleRepository stores smart-send spacing state and analytics.
type ThrottleRepository struct {
	db *sqlx.DB
}

func NewThrottleRepository(db *sqlx.DB) *ThrottleRepository {
	return &ThrottleRepository{db: db}
}

// GetLastSent returns nil, nil when the user never received this type.
func (r *ThrottleRepository) GetLastSent(ctx context.Context, userID uuid.UUID, notifType model.NotificationType) (*model.ThrottleRecord, error) {
	var rec model.ThrottleRecord
	query := `
		SELECT user_id, notification_type, last_sent_at
		FROM notification_throttle
		WHERE user_id = $1 AND notification_type = $2`
	err := r.db.GetContext(ctx, &rec, query, userID, notifType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ThrottleRepository) Touch(ctx context.Context, userID uuid.UUID, notifType model.NotificationType, sentAt time.Time) error {
	query := `
		INSERT INTO notification_throttle (user_id, notification_type, last_sent_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, notification_type) DO UPDATE SET
			last_sent_at = EXCLUDED.last_sent_at`
	_, err := r.db.ExecContext(ctx, query, userID, notifType, sentAt)
	return err
}

// Analytics

func (r *ThrottleRepository) LogAnalytics(ctx context.Context, entry *model.NotificationAnalytics) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `
		INSERT INTO notification_analytics (id, user_id, notification_type, status, notification_id, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.NotificationType, entry.Status,
		entry.NotificationID, entry.ErrorMessage, entry.SentAt,
	)
	return err
}
