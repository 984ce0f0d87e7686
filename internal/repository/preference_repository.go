package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wealthpath/notifications/internal/model"
)

var (
	ErrPreferencesNotFound = errors.New("notification preferences not found")
	ErrUnknownFeature      = errors.New("unknown feature")
)

// featureColumns whitelists the enabled-flag column for each daily pass.
var featureColumns = map[model.Feature]string{
	model.FeatureDailyReminder:  "daily_reminder_enabled",
	model.FeatureBudgetWarnings: "budget_warnings_enabled",
	model.FeatureDailyAnomaly:   "daily_anomaly_enabled",
}

const preferenceColumns = `id, user_id, daily_reminder_enabled, daily_reminder_time, timezone,
	budget_warnings_enabled, budget_warning_threshold, daily_anomaly_enabled,
	dnd_enabled, dnd_start_time, dnd_end_time, created_at, updated_at`

type PreferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListByFeature returns the preferences of every user with the feature enabled.
func (r *PreferenceRepository) ListByFeature(ctx context.Context, feature model.Feature) ([]model.NotificationPreferences, error) {
	column, ok := featureColumns[feature]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, feature)
	}

	var prefs []model.NotificationPreferences
	query := fmt.Sprintf(`SELECT %s FROM notification_preferences WHERE %s = TRUE ORDER BY user_id`, preferenceColumns, column)
	err := r.db.SelectContext(ctx, &prefs, query)
	return prefs, err
}

func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	var prefs model.NotificationPreferences
	query := fmt.Sprintf(`SELECT %s FROM notification_preferences WHERE user_id = $1`, preferenceColumns)
	err := r.db.GetContext(ctx, &prefs, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *PreferenceRepository) Upsert(ctx context.Context, prefs *model.NotificationPreferences) error {
	query := `
		INSERT INTO notification_preferences (
			id, user_id, daily_reminder_enabled, daily_reminder_time, timezone,
			budget_warnings_enabled, budget_warning_threshold, daily_anomaly_enabled,
			dnd_enabled, dnd_start_time, dnd_end_time, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			daily_reminder_enabled = EXCLUDED.daily_reminder_enabled,
			daily_reminder_time = EXCLUDED.daily_reminder_time,
			timezone = EXCLUDED.timezone,
			budget_warnings_enabled = EXCLUDED.budget_warnings_enabled,
			budget_warning_threshold = EXCLUDED.budget_warning_threshold,
			daily_anomaly_enabled = EXCLUDED.daily_anomaly_enabled,
			dnd_enabled = EXCLUDED.dnd_enabled,
			dnd_start_time = EXCLUDED.dnd_start_time,
			dnd_end_time = EXCLUDED.dnd_end_time,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	if prefs.ID == uuid.Nil {
		prefs.ID = uuid.New()
	}

	return r.db.QueryRowxContext(ctx, query,
		prefs.ID, prefs.UserID, prefs.DailyReminderEnabled, prefs.DailyReminderTime, prefs.Timezone,
		prefs.BudgetWarningsEnabled, prefs.BudgetWarningThreshold, prefs.DailyAnomalyEnabled,
		prefs.DNDEnabled, prefs.DNDStartTime, prefs.DNDEndTime,
	).Scan(&prefs.ID, &prefs.CreatedAt, &prefs.UpdatedAt)
}
