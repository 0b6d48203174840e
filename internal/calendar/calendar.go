// Package calendar classifies service dates for pricing.
package calendar

import "time"

// IsPeakSeason reports whether date falls in the November-March high season.
func IsPeakSeason(date time.Time) bool {
	switch date.Month() {
	case time.November, time.December, time.January, time.February, time.March:
		return true
	}
	return false
}

// IsWeekend uses the regional business week: Friday and Saturday are the
// weekend.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// DateOf returns midnight of t's calendar day in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
