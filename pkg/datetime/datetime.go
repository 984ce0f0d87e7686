// Package datetime provides the wall-clock and calendar helpers shared by the
// notification jobs: "HH:MM" parsing, minute-of-day arithmetic on a circular
// day, and local day/month boundaries.
package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the standard date-only format (YYYY-MM-DD).
const DateFormat = "2006-01-02"

// MinutesPerDay is the length of the circular day used for clock arithmetic.
const MinutesPerDay = 24 * 60

var ErrInvalidClock = errors.New("invalid clock time")

// ParseClock parses a 24-hour "HH:MM" wall-clock string into minutes since
// midnight. A trailing ":SS" (as returned by Postgres TIME columns) is
// accepted and ignored.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	h, err := parseClockPart(parts[0], 23)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := parseClockPart(parts[1], 59)
	if err != nil || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if len(parts) == 3 {
		if _, err := parseClockPart(parts[2], 59); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	return h*60 + m, nil
}

func parseClockPart(s string, max int) (int, error) {
	if s == "" || len(s) > 2 {
		return 0, ErrInvalidClock
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > max {
		return 0, ErrInvalidClock
	}
	return n, nil
}

// MinuteOfDay returns the wall-clock minutes since midnight of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// CircularDiff returns the shortest distance in minutes between two
// minute-of-day values, wrapping at midnight (23:58 and 00:02 are 4 apart).
func CircularDiff(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= MinutesPerDay
	if d > MinutesPerDay/2 {
		d = MinutesPerDay - d
	}
	return d
}

// InWindow reports whether minute lies inside the inclusive window
// [start, end]. When start > end the window spans midnight.
func InWindow(minute, start, end int) bool {
	if start <= end {
		return minute >= start && minute <= end
	}
	return minute >= start || minute <= end
}

// LoadLocation resolves an IANA zone name. Empty or unknown names resolve to
// UTC and report ok=false.
func LoadLocation(name string) (loc *time.Location, ok bool) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// DateString formats the calendar date of t in its own location.
func DateString(t time.Time) string {
	return t.Format(DateFormat)
}

// StartOfMonth returns the first day of t's month at midnight in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// CalendarDate returns t's calendar day, read in t's own location, as
// midnight UTC. Postgres DATE values come back in this shape.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InZone converts t into the named IANA zone, falling back to UTC.
func InZone(t time.Time, zone string) time.Time {
	loc, _ := LoadLocation(zone)
	return t.In(loc)
}
