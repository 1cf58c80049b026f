package stats

import (
	"time"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
)

// Overview is the dashboard block shown above the schedule.
type Overview struct {
	ActiveReminders int `json:"activeReminders"`
	TakenToday      int `json:"takenToday"`
	Streak          int `json:"streak"`
	Adherence       int `json:"adherence"`
	Compliance      int `json:"compliance"`
	TotalDoses      int `json:"totalDoses"`
}

// NewOverview computes the dashboard for now. Streak is anchored to today.
func NewOverview(reminders []model.Reminder, history []model.HistoryEntry, now time.Time) Overview {
	return Overview{
		ActiveReminders: len(reminders),
		TakenToday:      TakenToday(history, now),
		Streak:          StreakFromToday(history, now),
		Adherence:       OverallAdherence(history),
		Compliance:      ComplianceEstimate(reminders, history),
		TotalDoses:      TotalDoses(history),
	}
}

// Insights holds the trend figures of the statistics view.
type Insights struct {
	BestHour            *int                `json:"bestHour,omitempty"`
	BestWeekday         string              `json:"bestWeekday,omitempty"`
	AverageDelayMinutes int                 `json:"averageDelayMinutes"`
	Streak              int                 `json:"streak"`
	Medications         []MedicationSummary `json:"medications"`
	Weekday             [7]int              `json:"weekday"`
	Monthly             [12]int             `json:"monthly"`
}

// NewInsights computes trend figures. Calendar buckets use now's location
// and Monthly covers now's year.
func NewInsights(reminders []model.Reminder, history []model.HistoryEntry, now time.Time) Insights {
	loc := now.Location()
	in := Insights{
		AverageDelayMinutes: AverageDelayMinutes(history),
		Streak:              StreakFromLatest(history, loc),
		Medications:         MedicationSummaries(reminders, history),
		Weekday:             WeekdayAdherence(history, loc),
		Monthly:             MonthlyAdherence(history, now.Year(), loc),
	}
	if h, ok := BestHour(history, loc); ok {
		in.BestHour = &h
	}
	if d, ok := BestWeekday(history, loc); ok {
		in.BestWeekday = d.String()
	}
	return in
}
