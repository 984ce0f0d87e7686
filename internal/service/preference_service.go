package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wealthpath/notifications/internal/apperror"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/internal/repository"
	"github.com/wealthpath/notifications/pkg/datetime"
)

type PreferenceRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error)
	Upsert(ctx context.Context, prefs *model.NotificationPreferences) error
}

type PreferenceService struct {
	repo PreferenceRepositoryInterface
}

func NewPreferenceService(repo PreferenceRepositoryInterface) *PreferenceService {
	return &PreferenceService{repo: repo}
}

// UpdatePreferencesInput carries a partial update; nil fields keep their value.
type UpdatePreferencesInput struct {
	DailyReminderEnabled   *bool   `json:"dailyReminderEnabled"`
	DailyReminderTime      *string `json:"dailyReminderTime"`
	Timezone               *string `json:"timezone"`
	BudgetWarningsEnabled  *bool   `json:"budgetWarningsEnabled"`
	BudgetWarningThreshold *int    `json:"budgetWarningThreshold"`
	DailyAnomalyEnabled    *bool   `json:"dailyAnomalyEnabled"`
	DNDEnabled             *bool   `json:"dndEnabled"`
	DNDStartTime           *string `json:"dndStartTime"`
	DNDEndTime             *string `json:"dndEndTime"`
}

// Get returns the stored preferences, or the signup defaults when the user
// has none yet.
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	prefs, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrPreferencesNotFound) {
		return model.DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*model.NotificationPreferences, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DailyReminderEnabled != nil {
		prefs.DailyReminderEnabled = *input.DailyReminderEnabled
	}
	if input.DailyReminderTime != nil {
		prefs.DailyReminderTime = input.DailyReminderTime
	}
	if input.Timezone != nil {
		prefs.Timezone = input.Timezone
	}
	if input.BudgetWarningsEnabled != nil {
		prefs.BudgetWarningsEnabled = *input.BudgetWarningsEnabled
	}
	if input.BudgetWarningThreshold != nil {
		prefs.BudgetWarningThreshold = input.BudgetWarningThreshold
	}
	if input.DailyAnomalyEnabled != nil {
		prefs.DailyAnomalyEnabled = *input.DailyAnomalyEnabled
	}
	if input.DNDEnabled != nil {
		prefs.DNDEnabled = *input.DNDEnabled
	}
	if input.DNDStartTime != nil {
		prefs.DNDStartTime = input.DNDStartTime
	}
	if input.DNDEndTime != nil {
		prefs.DNDEndTime = input.DNDEndTime
	}

	if err := s.repo.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (in UpdatePreferencesInput) Validate() error {
	clocks := []struct {
		field string
		value *string
	}{
		{"dailyReminderTime", in.DailyReminderTime},
		{"dndStartTime", in.DNDStartTime},
		{"dndEndTime", in.DNDEndTime},
	}
	for _, c := range clocks {
		if c.value == nil {
			continue
		}
		if _, err := datetime.ParseClock(*c.value); err != nil {
			return apperror.ValidationError(c.field, "must be a 24-hour HH:MM time")
		}
	}

	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil || *in.Timezone == "" {
			return apperror.ValidationError("timezone", "must be an IANA time zone name")
		}
	}

	if t := in.BudgetWarningThreshold; t != nil && (*t < 0 || *t > 100) {
		return apperror.ValidationError("budgetWarningThreshold", "must be between 0 and 100")
	}
	return nil
}
