package domain

import "time"

// Slot is a derived one-hour reservation window; never persisted.
type Slot struct {
	StartHour int       `json:"start_hour"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Windows that merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Window returns the absolute interval of a booking starting at startHour on
// date's calendar day.
func Window(date time.Time, startHour, durationHours int) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, 0, 0, 0, date.Location())
	return start, start.Add(time.Duration(durationHours) * time.Hour)
}
