package attendance

import (
	"context"
	"math"

	"fingertrack/internal/timewindow"
)

// Stats is the compact metrics payload.
type Stats struct {
	TotalStudents        int     `json:"total_students"`
	PresentToday         int     `json:"present_today"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	TotalRecords         int     `json:"total_records"`
	Date                 string  `json:"date"`
}

// TrendResult is the day-over-day change in distinct presence.
type TrendResult struct {
	Value     float64 `json:"value"`
	Direction string  `json:"direction"`
}

// DashboardStats is the richer dashboard payload.
type DashboardStats struct {
	Stats
	AbsentToday         int         `json:"absent_today"`
	NewStudentsThisWeek int         `json:"new_students_this_week"`
	Trend               TrendResult `json:"trend"`
}

// DistinctStudents reduces events to the number of distinct student ids.
// Three check-ins by one person count once.
func DistinctStudents(events []Event) int {
	seen := make(map[string]struct{}, len(events))
	for _, evt := range events {
		seen[evt.StudentID] = struct{}{}
	}
	return len(seen)
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Percentage returns present/total as a rounded percentage. A zero total is
// defined as 0, never an error or NaN.
func Percentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round1(float64(present) / float64(total) * 100)
}

// Trend computes the relative change from yesterday to today. A zero
// yesterday baseline with any presence today yields the fixed sentinel 100
// ("infinite relative growth"), not a division.
func Trend(today, yesterday int) TrendResult {
	var value float64
	switch {
	case yesterday > 0:
		value = Round1(float64(today-yesterday) / float64(yesterday) * 100)
	case today > 0:
		value = 100
	default:
		value = 0
	}
	direction := "stable"
	if value > 0 {
		direction = "up"
	} else if value < 0 {
		direction = "down"
	}
	return TrendResult{Value: value, Direction: direction}
}

// Stats computes the compact metrics for the current UTC day.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	window := timewindow.Today(s.now())

	total, err := s.ids.CountStudents(ctx)
	if err != nil {
		return Stats{}, err
	}
	present, err := s.distinctInWindow(ctx, window)
	if err != nil {
		return Stats{}, err
	}
	records, err := s.events.CountCapped(ctx, s.limits.ScanCap)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalStudents:        total,
		PresentToday:         present,
		AttendancePercentage: Percentage(present, total),
		TotalRecords:         records,
		Date:                 window.Start.Format("2006-01-02"),
	}, nil
}

// DashboardStats extends Stats with absence, weekly enrollment and trend.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	now := s.now()
	yesterday, err := s.distinctInWindow(ctx, timewindow.Yesterday(timewindow.DayStartUTC(now)))
	if err != nil {
		return DashboardStats{}, err
	}
	newThisWeek, err := s.ids.CountStudentsCreatedSince(ctx, timewindow.LastDays(now, 7).Start)
	if err != nil {
		return DashboardStats{}, err
	}

	return DashboardStats{
		Stats:               stats,
		AbsentToday:         stats.TotalStudents - stats.PresentToday,
		NewStudentsThisWeek: newThisWeek,
		Trend:               Trend(stats.PresentToday, yesterday),
	}, nil
}

func (s *Service) distinctInWindow(ctx context.Context, w timewindow.Window) (int, error) {
	events, err := s.events.Query(ctx, EventFilter{Window: &w, Limit: s.limits.ScanCap})
	if err != nil {
		return 0, err
	}
	return DistinctStudents(events), nil
}
