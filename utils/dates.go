// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DateOnly normalizes a timestamp to a calendar date in UTC. Winner and
// candidate rows key on this so the same date compares equal across zones.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first instant of t's calendar month and the first
// instant of the next month, suitable for half-open range queries.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	year, month, _ := t.Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// MonthKey formats a timestamp as "YYYY-MM", the featured-vehicle month key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}
