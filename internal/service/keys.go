package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/wealthpath/notifications/internal/model"
)

// Idempotency keys are unique per user, feature, subject and local day, so a
// retried or overlapping run can enqueue the same notification at most once.

func dailyReminderKey(userID uuid.UUID, date string) string {
	return fmt.Sprintf("daily_reminder_%s_%s", userID, date)
}

func budgetWarningKey(userID, categoryID uuid.UUID, date string) string {
	return fmt.Sprintf("budget_warning_%s_%s_%s", userID, categoryID, date)
}

func anomalyKey(userID, categoryID uuid.UUID, date string) string {
	return fmt.Sprintf("anomaly_%s_%s_%s", userID, categoryID, date)
}

// smartSendKey is unique per attempt; spacing is enforced by the throttle.
func smartSendKey(notifType model.NotificationType, userID uuid.UUID) string {
	return fmt.Sprintf("smart_%s_%s_%s", notifType, userID, uuid.New())
}
