// Package timewindow provides UTC day-boundary arithmetic for attendance
// bucketing. All functions are pure and safe to call concurrently.
package timewindow

import "time"

// Window is a half-open UTC interval [Start, End). An instant exactly at
// Start belongs to the window; an instant exactly at End does not.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayStartUTC returns midnight UTC of the calendar day containing t.
func DayStartUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the window covering the UTC calendar day containing now.
func Today(now time.Time) Window {
	start := DayStartUTC(now)
	return Window{Start: start, End: start.Add(24 * time.Hour)}
}

// Yesterday returns the 24-hour window immediately preceding todayStart.
func Yesterday(todayStart time.Time) Window {
	return Window{Start: todayStart.Add(-24 * time.Hour), End: todayStart}
}

// LastDays returns the window covering the d*24 hours up to and including now.
// Used for "new enrollments this week" style queries.
func LastDays(now time.Time, d int) Window {
	u := now.UTC()
	return Window{Start: u.Add(-time.Duration(d) * 24 * time.Hour), End: u}
}
