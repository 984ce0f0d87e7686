package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	NotificationTypeDailyReminder    NotificationType = "daily_reminder"
	NotificationTypeBudgetWarning    NotificationType = "budget_warning"
	NotificationTypeDailyAnomaly     NotificationType = "daily_anomaly"
	NotificationTypeLargeTransaction NotificationType = "large_transaction"
	NotificationTypeGoalMilestone    NotificationType = "goal_milestone"
)

// IsValid reports whether t is one of the known notification types.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeDailyReminder, NotificationTypeBudgetWarning, NotificationTypeDailyAnomaly,
		NotificationTypeLargeTransaction, NotificationTypeGoalMilestone:
		return true
	}
	return false
}

// Preference defaults applied when a column is NULL.
const (
	DefaultDailyReminderTime      = "19:00"
	DefaultBudgetWarningThreshold = 80
	DefaultDNDStartTime           = "22:00"
	DefaultDNDEndTime             = "08:00"
	DefaultTimezone               = "UTC"
)

// NotificationPreferences holds one user's per-feature notification settings.
// Nullable columns fall back to the Default* constants through the accessor methods.
type NotificationPreferences struct {
	ID                     uuid.UUID `db:"id" json:"id"`
	UserID                 uuid.UUID `db:"user_id" json:"userId"`
	DailyReminderEnabled   bool      `db:"daily_reminder_enabled" json:"dailyReminderEnabled"`
	DailyReminderTime      *string   `db:"daily_reminder_time" json:"dailyReminderTime,omitempty"`
	Timezone               *string   `db:"timezone" json:"timezone,omitempty"`
	BudgetWarningsEnabled  bool      `db:"budget_warnings_enabled" json:"budgetWarningsEnabled"`
	BudgetWarningThreshold *int      `db:"budget_warning_threshold" json:"budgetWarningThreshold,omitempty"`
	DailyAnomalyEnabled    bool      `db:"daily_anomaly_enabled" json:"dailyAnomalyEnabled"`
	DNDEnabled             bool      `db:"dnd_enabled" json:"dndEnabled"`
	DNDStartTime           *string   `db:"dnd_start_time" json:"dndStartTime,omitempty"`
	DNDEndTime             *string   `db:"dnd_end_time" json:"dndEndTime,omitempty"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultPreferences returns the settings a user gets at signup.
func DefaultPreferences(userID uuid.UUID) *NotificationPreferences {
	reminder := DefaultDailyReminderTime
	tz := DefaultTimezone
	threshold := DefaultBudgetWarningThreshold
	dndStart := DefaultDNDStartTime
	dndEnd := DefaultDNDEndTime

	return &NotificationPreferences{
		UserID:                 userID,
		DailyReminderEnabled:   true,
		DailyReminderTime:      &reminder,
		Timezone:               &tz,
		BudgetWarningsEnabled:  true,
		BudgetWarningThreshold: &threshold,
		DailyAnomalyEnabled:    true,
		DNDEnabled:             false,
		DNDStartTime:           &dndStart,
		DNDEndTime:             &dndEnd,
	}
}

func (p *NotificationPreferences) ReminderTime() string {
	return stringOr(p.DailyReminderTime, DefaultDailyReminderTime)
}

func (p *NotificationPreferences) TimezoneName() string {
	return stringOr(p.Timezone, DefaultTimezone)
}

// WarningThreshold returns the budget warning percentage clamped to 0-100.
func (p *NotificationPreferences) WarningThreshold() int {
	if p.BudgetWarningThreshold == nil {
		return DefaultBudgetWarningThreshold
	}
	t := *p.BudgetWarningThreshold
	if t < 0 {
		return 0
	}
	if t > 100 {
		return 100
	}
	return t
}

// DNDWindow returns the configured do-not-disturb start and end clock times.
func (p *NotificationPreferences) DNDWindow() (start, end string) {
	return stringOr(p.DNDStartTime, DefaultDNDStartTime), stringOr(p.DNDEndTime, DefaultDNDEndTime)
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// NotificationData is the loosely-typed payload attached to a notification.
// Values must be JSON-serializable; the shape depends on the notification type.
type NotificationData map[string]any

var ErrInvalidNotificationData = errors.New("invalid notification data")

// requiredDataKeys lists the payload keys each type must carry.
var requiredDataKeys = map[NotificationType][]string{
	NotificationTypeDailyReminder:    {"screen"},
	NotificationTypeBudgetWarning:    {"screen", "categoryId", "percentage"},
	NotificationTypeDailyAnomaly:     {"screen", "categoryId", "todaySpent", "average"},
	NotificationTypeLargeTransaction: {"screen", "transactionId", "amount"},
}

// Validate checks that d carries the keys required for type t.
func (d NotificationData) Validate(t NotificationType) error {
	for _, key := range requiredDataKeys[t] {
		if v, ok := d[key]; !ok || v == nil || v == "" {
			return fmt.Errorf("%w: %s requires %q", ErrInvalidNotificationData, t, key)
		}
	}
	return nil
}

func NewDailyReminderData(date string) NotificationData {
	return NotificationData{
		"screen": "AddRecord",
		"date":   date,
	}
}

func NewBudgetWarningData(w BudgetWarning) (NotificationData, error) {
	if w.CategoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: budget warning without category", ErrInvalidNotificationData)
	}
	if !w.BudgetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: budget amount must be positive", ErrInvalidNotificationData)
	}
	return NotificationData{
		"screen":       "Budgets",
		"categoryId":   w.CategoryID.String(),
		"categoryName": w.CategoryName,
		"spent":        w.Spent.StringFixed(2),
		"budgetAmount": w.BudgetAmount.StringFixed(2),
		"percentage":   w.Percentage.Round(1).InexactFloat64(),
	}, nil
}

func NewAnomalyData(a SpendingAnomaly) (NotificationData, error) {
	if a.CategoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: anomaly without category", ErrInvalidNotificationData)
	}
	if !a.TodaySpent.IsPositive() {
		return nil, fmt.Errorf("%w: anomaly requires positive spend", ErrInvalidNotificationData)
	}
	return NotificationData{
		"screen":       "Records",
		"categoryId":   a.CategoryID.String(),
		"categoryName": a.CategoryName,
		"todaySpent":   a.TodaySpent.StringFixed(2),
		"average":      a.Average.StringFixed(2),
	}, nil
}

func NewLargeTransactionData(transactionID uuid.UUID, amount decimal.Decimal) (NotificationData, error) {
	if transactionID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing transaction id", ErrInvalidNotificationData)
	}
	return NotificationData{
		"screen":        "RecordDetail",
		"transactionId": transactionID.String(),
		"amount":        amount.StringFixed(2),
	}, nil
}

// QueuedNotification is a row handed to the delivery queue. IdempotencyKey is
// unique; enqueueing the same key twice leaves a single row.
type QueuedNotification struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	UserID           uuid.UUID        `db:"user_id" json:"userId"`
	NotificationType NotificationType `db:"notification_type" json:"notificationType"`
	Title            string           `db:"title" json:"title"`
	Body             string           `db:"body" json:"body"`
	Data             NotificationData `db:"-" json:"data,omitempty"`
	IdempotencyKey   string           `db:"idempotency_key" json:"idempotencyKey"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
}

// JobExecutionLog is the append-only audit row written after each daily run.
type JobExecutionLog struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	JobName             string    `db:"job_name" json:"jobName"`
	ExecutedAt          time.Time `db:"executed_at" json:"executedAt"`
	Success             bool      `db:"success" json:"success"`
	DurationMs          int64     `db:"duration_ms" json:"durationMs"`
	TotalUsersProcessed int       `db:"total_users_processed" json:"totalUsersProcessed"`
	NotificationsSent   int       `db:"notifications_sent" json:"notificationsSent"`
	NotificationsFailed int       `db:"notifications_failed" json:"notificationsFailed"`
	ErrorMessage        *string   `db:"error_message" json:"errorMessage,omitempty"`
}

// ThrottleRecord is the last successful smart send per (user, type).
type ThrottleRecord struct {
	UserID           uuid.UUID        `db:"user_id" json:"userId"`
	NotificationType NotificationType `db:"notification_type" json:"notificationType"`
	LastSentAt       time.Time        `db:"last_sent_at" json:"lastSentAt"`
}

type AnalyticsStatus string

const (
	AnalyticsStatusSent       AnalyticsStatus = "sent"
	AnalyticsStatusThrottled  AnalyticsStatus = "throttled"
	AnalyticsStatusQuietHours AnalyticsStatus = "quiet_hours"
	AnalyticsStatusFailed     AnalyticsStatus = "failed"
)

// NotificationAnalytics records the outcome of one smart-send attempt.
type NotificationAnalytics struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	UserID           uuid.UUID        `db:"user_id" json:"userId"`
	NotificationType NotificationType `db:"notification_type" json:"notificationType"`
	Status           AnalyticsStatus  `db:"status" json:"status"`
	NotificationID   *string          `db:"notification_id" json:"notificationId,omitempty"`
	ErrorMessage     *string          `db:"error_message" json:"errorMessage,omitempty"`
	SentAt           time.Time        `db:"sent_at" json:"sentAt"`
}

// JobResult counts one feature pass of the daily run.
type JobResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

func (r JobResult) Add(other JobResult) JobResult {
	return JobResult{
		Processed: r.Processed + other.Processed,
		Sent:      r.Sent + other.Sent,
		Failed:    r.Failed + other.Failed,
	}
}

// DailyJobsResult is the per-pass summary of a daily run.
type DailyJobsResult struct {
	DailyReminders JobResult `json:"daily_reminders"`
	BudgetWarnings JobResult `json:"budget_warnings"`
	DailyAnomalies JobResult `json:"daily_anomalies"`
}

func (r DailyJobsResult) Total() JobResult {
	return r.DailyReminders.Add(r.BudgetWarnings).Add(r.DailyAnomalies)
}

// Feature identifies one pass of the daily run and its enabled flag.
type Feature string

const (
	FeatureDailyReminder  Feature = "daily_reminder"
	FeatureBudgetWarnings Feature = "budget_warnings"
	FeatureDailyAnomaly   Feature = "daily_anomaly"
)
