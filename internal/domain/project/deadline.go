package project

import (
	"math"
	"time"
)

const hoursPerDay = 24

// CalculateDaysLeft returns the number of calendar days from now until
// deadline. Both instants are truncated to midnight in now's location before
// subtracting, so the time of day never shifts the result: 0 means the
// deadline is today and negative values count the days overdue. The
// difference is rounded up so a project inside its final day is never
// reported as having less time than it does.
func CalculateDaysLeft(deadline, now time.Time) int {
	loc := now.Location()
	d := deadline.In(loc)

	// Calendar dates are compared on a fixed UTC grid so that DST shifts
	// (23h or 25h local days) cannot leak into the count.
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	return int(math.Ceil(to.Sub(from).Hours() / hoursPerDay))
}

// IsOverdueDays reports whether a daysLeft value means the deadline passed
func IsOverdueDays(daysLeft int) bool {
	return daysLeft < 0
}
