package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
)

func TestNewOverview(t *testing.T) {
	t.Parallel()

	rs := []model.Reminder{{Medication: "Aspirin"}}
	h := []model.HistoryEntry{
		taken("Aspirin", base.AddDate(0, 0, -1), 0),
		taken("Aspirin", base, 3*time.Minute),
		missed("Aspirin", base.AddDate(0, 0, -2), base.AddDate(0, 0, -2)),
	}
	got := NewOverview(rs, h, base.Add(4*time.Hour))
	require.Equal(t, Overview{
		ActiveReminders: 1,
		TakenToday:      1,
		Streak:          2,
		Adherence:       67,
		Compliance:      7,
		TotalDoses:      2,
	}, got)
}

func TestNewInsights(t *testing.T) {
	t.Parallel()

	empty := NewInsights(nil, nil, base)
	require.Nil(t, empty.BestHour)
	require.Empty(t, empty.BestWeekday)
	require.Empty(t, empty.Medications)

	rs := []model.Reminder{{Medication: "Aspirin"}}
	h := []model.HistoryEntry{
		taken("Aspirin", base, 4*time.Minute),
		taken("Aspirin", base.AddDate(0, 0, 7), 8*time.Minute),
	}
	in := NewInsights(rs, h, base.AddDate(0, 0, 8))
	require.NotNil(t, in.BestHour)
	require.Equal(t, 8, *in.BestHour)
	require.Equal(t, "Wednesday", in.BestWeekday)
	require.Equal(t, 6, in.AverageDelayMinutes)
	require.Equal(t, 1, in.Streak)
	require.Len(t, in.Medications, 1)
	require.Equal(t, 100, in.Weekday[2])
	require.Equal(t, 100, in.Monthly[3])
}
