package model

import "time"

// CheckinRecord marks one habit checkin on a calendar day.
type CheckinRecord struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	CheckinDate time.Time `json:"checkin_date"` // date precision, midnight UTC
	CheckinTime time.Time `json:"checkin_time"`
}

// LocalDate returns the calendar date in the user's local timezone, expressed
// as midnight UTC. The offset is minutes west of UTC: 300 for UTC-5, -480 for
// UTC+8.
func LocalDate(now time.Time, timezoneOffsetMinutes int) time.Time {
	local := now.UTC().Add(-time.Duration(timezoneOffsetMinutes) * time.Minute)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two date values fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CalculateStreak computes the streak after a checkin on today.
// First checkin starts at 1, a same-day repeat leaves the streak unchanged,
// a consecutive day increments it, and any gap resets it to 1.
func CalculateStreak(lastCheckinDate *time.Time, currentStreak int, today time.Time) int {
	if lastCheckinDate == nil {
		return 1
	}

	if SameDay(*lastCheckinDate, today) {
		return currentStreak
	}

	daysSinceLast := int(today.Sub(truncateToDay(*lastCheckinDate)).Hours() / 24)
	if daysSinceLast == 1 {
		return currentStreak + 1
	}
	return 1
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
