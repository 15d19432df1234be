package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDayStartUTC(t *testing.T) {
	lateNight := DayStartUTC(ts("2024-03-15T23:59:59Z"))
	midnight := DayStartUTC(ts("2024-03-15T00:00:00Z"))
	require.True(t, lateNight.Equal(midnight), "same calendar day must share a day start")

	next := DayStartUTC(ts("2024-03-16T00:00:00Z"))
	assert.True(t, next.After(midnight))
	assert.Equal(t, 24*time.Hour, next.Sub(midnight))
}

func TestDayStartUTCNormalizesZone(t *testing.T) {
	// 01:30+02:00 is 23:30 UTC the previous day.
	loc := time.FixedZone("EET", 2*60*60)
	local := time.Date(2024, 3, 16, 1, 30, 0, 0, loc)
	assert.True(t, DayStartUTC(local).Equal(ts("2024-03-15T00:00:00Z")))
}

func TestWindowHalfOpen(t *testing.T) {
	w := Today(ts("2024-03-15T12:00:00Z"))
	assert.True(t, w.Contains(ts("2024-03-15T00:00:00Z")), "start is inclusive")
	assert.True(t, w.Contains(ts("2024-03-15T23:59:59Z")))
	assert.False(t, w.Contains(ts("2024-03-16T00:00:00Z")), "end is exclusive")
	assert.False(t, w.Contains(ts("2024-03-14T23:59:59Z")))
}

func TestYesterday(t *testing.T) {
	todayStart := ts("2024-03-15T00:00:00Z")
	w := Yesterday(todayStart)
	assert.True(t, w.Start.Equal(ts("2024-03-14T00:00:00Z")))
	assert.True(t, w.End.Equal(todayStart))
	assert.True(t, w.Contains(ts("2024-03-14T00:00:00Z")))
	assert.False(t, w.Contains(todayStart), "boundary event belongs to today")
}

func TestLastDays(t *testing.T) {
	now := ts("2024-03-15T08:00:00Z")
	w := LastDays(now, 7)
	assert.True(t, w.Start.Equal(ts("2024-03-08T08:00:00Z")))
	assert.True(t, w.End.Equal(now))
}
