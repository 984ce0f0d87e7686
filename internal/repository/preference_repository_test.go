package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wealthpath/notifications/internal/model"
)

var preferenceRowColumns = []string{
	"id", "user_id", "daily_reminder_enabled", "daily_reminder_time", "timezone",
	"budget_warnings_enabled", "budget_warning_threshold", "daily_anomaly_enabled",
	"dnd_enabled", "dnd_start_time", "dnd_end_time", "created_at", "updated_at",
}

func TestPreferenceRepository_ListByFeature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		feature model.Feature
		column  string
	}{
		{"daily reminder", model.FeatureDailyReminder, "daily_reminder_enabled"},
		{"budget warnings", model.FeatureBudgetWarnings, "budget_warnings_enabled"},
		{"daily anomaly", model.FeatureDailyAnomaly, "daily_anomaly_enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock := newMockDB(t)
			defer func() { _ = db.Close() }()
			repo := NewPreferenceRepository(db)

			now := time.Now()
			rows := sqlmock.NewRows(preferenceRowColumns).
				AddRow(uuid.New(), uuid.New(), true, "07:00", "Asia/Ho_Chi_Minh", true, 80, true, true, "22:00", "08:00", now, now).
				AddRow(uuid.New(), uuid.New(), true, nil, nil, true, nil, true, false, nil, nil, now, now)

			mock.ExpectQuery(`FROM notification_preferences WHERE ` + tt.column + ` = TRUE`).
				WillReturnRows(rows)

			prefs, err := repo.ListByFeature(context.Background(), tt.feature)

			require.NoError(t, err)
			require.Len(t, prefs, 2)
			assert.Equal(t, "07:00", prefs[0].ReminderTime())
			assert.Equal(t, "Asia/Ho_Chi_Minh", prefs[0].TimezoneName())
			assert.Equal(t, model.DefaultDailyReminderTime, prefs[1].ReminderTime())
			assert.Equal(t, model.DefaultBudgetWarningThreshold, prefs[1].WarningThreshold())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPreferenceRepository_ListByFeature_Unknown(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	defer func() { _ = db.Close() }()
	repo := NewPreferenceRepository(db)

	prefs, err := repo.ListByFeature(context.Background(), model.Feature("users; DROP TABLE users"))

	assert.ErrorIs(t, err, ErrUnknownFeature)
	assert.Nil(t, prefs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepository_GetByUserID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		defer func() { _ = db.Close() }()
		repo := NewPreferenceRepository(db)

		userID := uuid.New()
		now := time.Now()
		mock.ExpectQuery(`FROM notification_preferences WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(preferenceRowColumns).
				AddRow(uuid.New(), userID, false, "19:00", "UTC", true, 90, false, true, "23:00", "06:00", now, now))

		prefs, err := repo.GetByUserID(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, userID, prefs.UserID)
		assert.Equal(t, 90, prefs.WarningThreshold())
		start, end := prefs.DNDWindow()
		assert.Equal(t, "23:00", start)
		assert.Equal(t, "06:00", end)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		defer func() { _ = db.Close() }()
		repo := NewPreferenceRepository(db)

		mock.ExpectQuery(`FROM notification_preferences`).
			WillReturnRows(sqlmock.NewRows(preferenceRowColumns))

		prefs, err := repo.GetByUserID(context.Background(), uuid.New())

		assert.ErrorIs(t, err, ErrPreferencesNotFound)
		assert.Nil(t, prefs)
	})
}

func TestPreferenceRepository_Upsert(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	defer func() { _ = db.Close() }()
	repo := NewPreferenceRepository(db)

	prefs := model.DefaultPreferences(uuid.New())
	storedID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO notification_preferences`).
		WithArgs(sqlmock.AnyArg(), prefs.UserID, true, "19:00", "UTC", true, 80, true, false, "22:00", "08:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(storedID, now, now))

	err := repo.Upsert(context.Background(), prefs)

	require.NoError(t, err)
	assert.Equal(t, storedID, prefs.ID)
	assert.Equal(t, now, prefs.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
