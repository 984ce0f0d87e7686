package service

import (
	"time"

	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/pkg/datetime"
)

// DefaultScheduleTolerance is how far the current wall clock may drift from a
// user's reminder time and still count as "now".
const DefaultScheduleTolerance = 5 * time.Minute

// ScheduleEvaluator matches a user's daily reminder time against the current
// wall clock in the user's zone.
type ScheduleEvaluator struct {
	toleranceMinutes int
}

// NewScheduleEvaluator uses DefaultScheduleTolerance when tolerance is not positive.
func NewScheduleEvaluator(tolerance time.Duration) *ScheduleEvaluator {
	if tolerance <= 0 {
		tolerance = DefaultScheduleTolerance
	}
	return &ScheduleEvaluator{toleranceMinutes: int(tolerance / time.Minute)}
}

// IsScheduledNow reports whether now, seen on the wall clock of timezone, is
// within the tolerance of scheduledTime ("HH:MM"). The comparison wraps at
// midnight. A malformed scheduledTime never matches.
func (e *ScheduleEvaluator) IsScheduledNow(timezone, scheduledTime string, now time.Time) bool {
	target, err := datetime.ParseClock(scheduledTime)
	if err != nil {
		return false
	}
	current := datetime.MinuteOfDay(datetime.InZone(now, timezone))

	return datetime.CircularDiff(current, target) <= e.toleranceMinutes
}

// IsWithinDoNotDisturb reports whether now falls in the user's quiet hours.
// Both ends are inclusive and the window may span midnight. A window that
// cannot be parsed is treated as active so nothing is sent on bad data.
func IsWithinDoNotDisturb(prefs *model.NotificationPreferences, now time.Time) bool {
	if prefs == nil || !prefs.DNDEnabled {
		return false
	}

	startRaw, endRaw := prefs.DNDWindow()
	start, err := datetime.ParseClock(startRaw)
	if err != nil {
		return true
	}
	end, err := datetime.ParseClock(endRaw)
	if err != nil {
		return true
	}

	return datetime.InWindow(datetime.MinuteOfDay(datetime.InZone(now, prefs.TimezoneName())), start, end)
}
