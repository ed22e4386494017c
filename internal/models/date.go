package models

import "time"

// DayWindow returns the half-open local-day interval containing ts:
// [start of day, start of next day). Both the repository's today query and
// the in-memory today view filter through this single definition.
func DayWindow(ts time.Time) (start, end time.Time) {
	start = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	end = start.AddDate(0, 0, 1)
	return start, end
}
