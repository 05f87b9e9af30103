package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/lifeops/internal/database/repository"
)

func TestDailyAveragesSkipsEmptyDays(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	end := time.Date(2026, 3, 7, 0, 0, 0, 0, loc)
	records := []repository.ProgressRecord{
		{Metric: "steps", Value: 4000, RecordedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, loc)},
		{Metric: "steps", Value: 6000, RecordedAt: time.Date(2026, 3, 2, 20, 0, 0, 0, loc)},
		// 02:00 UTC on the 5th is still the 4th locally.
		{Metric: "Steps", Value: 9000, RecordedAt: time.Date(2026, 3, 5, 2, 0, 0, 0, time.UTC)},
		{Metric: "sleep", Value: 8, RecordedAt: time.Date(2026, 3, 3, 7, 0, 0, 0, loc)},
		{Metric: "steps", Value: 1, RecordedAt: time.Date(2026, 3, 9, 7, 0, 0, 0, loc)},
	}
	got := DailyAverages(records, "steps", start, end, loc)
	require.Len(t, got, 2)
	require.Equal(t, "2026-03-02", got[0].Day.Format("2006-01-02"))
	require.Equal(t, 5000.0, got[0].Value)
	require.Equal(t, 2, got[0].Count)
	require.Equal(t, "2026-03-04", got[1].Day.Format("2006-01-02"))
	require.Equal(t, 9000.0, got[1].Value)

	require.Empty(t, DailyAverages(records, "steps", end, start, loc))
	require.Equal(t, []string{"Steps", "sleep", "steps"}, Metrics(records))
}
