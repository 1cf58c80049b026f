// Package stats derives adherence metrics from reminders and history.
// Every function is a pure read; calendar days are taken in the location
// passed in (or the location of the supplied now).
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
)

// OnTimeWindow is the largest delay still classified as taken on time.
const OnTimeWindow = 5 * time.Minute

// Status classifies a history entry.
func Status(e model.HistoryEntry) model.DoseStatus {
	if e.Action == model.ActionCreated {
		return model.DosePending
	}
	if e.TakenAt == nil {
		return model.DoseMissed
	}
	if e.TakenAt.Sub(e.ScheduledTime) <= OnTimeWindow {
		return model.DoseTaken
	}
	return model.DoseLate
}

// Delay returns TakenAt - ScheduledTime, or 0 when nothing was taken.
// Early doses give a negative delay.
func Delay(e model.HistoryEntry) time.Duration {
	if e.TakenAt == nil {
		return 0
	}
	return e.TakenAt.Sub(e.ScheduledTime)
}

// IsTaken reports whether e records a dose actually taken.
func IsTaken(e model.HistoryEntry) bool {
	return e.Action == model.ActionTaken && e.TakenAt != nil
}

// Taken returns the taken entries of history, preserving order.
func Taken(history []model.HistoryEntry) []model.HistoryEntry {
	var out []model.HistoryEntry
	for _, e := range history {
		if IsTaken(e) {
			out = append(out, e)
		}
	}
	return out
}

// Doses counts taken and missed entries. Created entries are not doses.
func Doses(history []model.HistoryEntry) int {
	n := 0
	for _, e := range history {
		if e.Action != model.ActionCreated {
			n++
		}
	}
	return n
}

// TotalDoses counts taken entries.
func TotalDoses(history []model.HistoryEntry) int {
	return len(Taken(history))
}

// TakenToday counts doses taken on the calendar day of now.
func TakenToday(history []model.HistoryEntry, now time.Time) int {
	today := dayOf(now, now.Location())
	n := 0
	for _, e := range Taken(history) {
		if dayOf(*e.TakenAt, now.Location()).Equal(today) {
			n++
		}
	}
	return n
}

// StreakFromToday counts consecutive days ending today that each have at
// least one taken dose. A day without a dose today gives 0.
func StreakFromToday(history []model.HistoryEntry, now time.Time) int {
	days := takenDays(history, now.Location())
	return walkBack(days, dayOf(now, now.Location()))
}

// StreakFromLatest counts consecutive days ending at the most recent day
// with a taken dose, regardless of how long ago that day was.
func StreakFromLatest(history []model.HistoryEntry, loc *time.Location) int {
	days := takenDays(history, loc)
	if len(days) == 0 {
		return 0
	}
	var latest time.Time
	for d := range days {
		if d.After(latest) {
			latest = d
		}
	}
	return walkBack(days, latest)
}

// OverallAdherence is taken / (taken + missed) as a rounded percentage.
func OverallAdherence(history []model.HistoryEntry) int {
	return percent(TotalDoses(history), Doses(history))
}

// ComplianceEstimate assumes thirty expected doses per active reminder and
// caps the result at 100. With no reminders it reports 100.
func ComplianceEstimate(reminders []model.Reminder, history []model.HistoryEntry) int {
	expected := len(reminders) * 30
	if expected == 0 {
		return 100
	}
	return min(percent(TotalDoses(history), expected), 100)
}

// AverageDelay is the mean delay over taken entries, 0 when there are none.
func AverageDelay(history []model.HistoryEntry) time.Duration {
	taken := Taken(history)
	if len(taken) == 0 {
		return 0
	}
	var total time.Duration
	for _, e := range taken {
		total += Delay(e)
	}
	return total / time.Duration(len(taken))
}

// AverageDelayMinutes rounds AverageDelay to whole minutes.
func AverageDelayMinutes(history []model.HistoryEntry) int {
	return int(math.Round(AverageDelay(history).Minutes()))
}

// MedicationSummary aggregates one medication.
type MedicationSummary struct {
	Medication          string     `json:"medication"`
	Taken               int        `json:"taken"`
	OnTime              int        `json:"onTime"`
	AverageDelayMinutes int        `json:"averageDelayMinutes"`
	AdherenceRate       int        `json:"adherenceRate"`
	LastTaken           *time.Time `json:"lastTaken,omitempty"`
}

// MedicationSummaries returns one summary per distinct medication of the
// reminder set, in first-seen order.
func MedicationSummaries(reminders []model.Reminder, history []model.HistoryEntry) []MedicationSummary {
	var names []string
	seen := map[string]bool{}
	for _, r := range reminders {
		if !seen[r.Medication] {
			seen[r.Medication] = true
			names = append(names, r.Medication)
		}
	}

	out := make([]MedicationSummary, 0, len(names))
	for _, name := range names {
		var entries []model.HistoryEntry
		for _, e := range history {
			if e.Medication == name {
				entries = append(entries, e)
			}
		}
		taken := Taken(entries)
		s := MedicationSummary{
			Medication:          name,
			Taken:               len(taken),
			AverageDelayMinutes: AverageDelayMinutes(entries),
			AdherenceRate:       percent(len(taken), Doses(entries)),
		}
		for _, e := range taken {
			if Status(e) == model.DoseTaken {
				s.OnTime++
			}
			if s.LastTaken == nil || e.TakenAt.After(*s.LastTaken) {
				t := *e.TakenAt
				s.LastTaken = &t
			}
		}
		out = append(out, s)
	}
	return out
}

// BestHour is the most frequent hour of day among taken doses. Ties go to
// the earliest hour. ok is false without taken doses.
func BestHour(history []model.HistoryEntry, loc *time.Location) (hour int, ok bool) {
	counts := map[int]int{}
	for _, e := range Taken(history) {
		counts[e.TakenAt.In(loc).Hour()]++
	}
	return mode(counts)
}

// BestWeekday is the most frequent weekday among taken doses. Ties go to
// the lowest weekday number (Sunday first).
func BestWeekday(history []model.HistoryEntry, loc *time.Location) (day time.Weekday, ok bool) {
	counts := map[int]int{}
	for _, e := range Taken(history) {
		counts[int(e.TakenAt.In(loc).Weekday())]++
	}
	d, ok := mode(counts)
	return time.Weekday(d), ok
}

// DosesOn counts entries of any action recorded on the calendar day of day.
// Taken entries are placed by TakenAt, others by RecordedAt.
func DosesOn(history []model.HistoryEntry, day time.Time) int {
	want := dayOf(day, day.Location())
	n := 0
	for _, e := range history {
		if dayOf(EventTime(e), day.Location()).Equal(want) {
			n++
		}
	}
	return n
}

// EventTime is TakenAt when present, otherwise RecordedAt.
func EventTime(e model.HistoryEntry) time.Time {
	if e.TakenAt != nil {
		return *e.TakenAt
	}
	return e.RecordedAt
}

// WeekdayAdherence buckets taken and missed entries by the weekday of their
// scheduled time and returns per-day adherence, Monday first.
func WeekdayAdherence(history []model.HistoryEntry, loc *time.Location) [7]int {
	var taken, total [7]int
	for _, e := range history {
		if e.Action == model.ActionCreated {
			continue
		}
		i := (int(e.ScheduledTime.In(loc).Weekday()) + 6) % 7
		total[i]++
		if IsTaken(e) {
			taken[i]++
		}
	}
	var out [7]int
	for i := range out {
		out[i] = percent(taken[i], total[i])
	}
	return out
}

// MonthlyAdherence buckets taken and missed entries scheduled in year by
// month, January first.
func MonthlyAdherence(history []model.HistoryEntry, year int, loc *time.Location) [12]int {
	var taken, total [12]int
	for _, e := range history {
		if e.Action == model.ActionCreated {
			continue
		}
		st := e.ScheduledTime.In(loc)
		if st.Year() != year {
			continue
		}
		i := int(st.Month()) - 1
		total[i]++
		if IsTaken(e) {
			taken[i]++
		}
	}
	var out [12]int
	for i := range out {
		out[i] = percent(taken[i], total[i])
	}
	return out
}

// Medications lists distinct medication names of history in first-seen order.
func Medications(history []model.HistoryEntry) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range history {
		if !seen[e.Medication] {
			seen[e.Medication] = true
			out = append(out, e.Medication)
		}
	}
	return out
}

// Snapshot is the summary embedded in exports.
type Snapshot struct {
	TotalDoses    int `json:"totalDoses"`
	AdherenceRate int `json:"adherenceRate"`
	Streak        int `json:"streak"`
	Medications   int `json:"medications"`
}

// Summarize builds the export summary. Streak is anchored to the most
// recent taken day.
func Summarize(history []model.HistoryEntry, loc *time.Location) Snapshot {
	return Snapshot{
		TotalDoses:    TotalDoses(history),
		AdherenceRate: OverallAdherence(history),
		Streak:        StreakFromLatest(history, loc),
		Medications:   len(Medications(history)),
	}
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// dayOf truncates t to its calendar date in loc, expressed at UTC midnight
// so that consecutive days are exactly 24h apart.
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func takenDays(history []model.HistoryEntry, loc *time.Location) map[time.Time]bool {
	days := map[time.Time]bool{}
	for _, e := range Taken(history) {
		days[dayOf(*e.TakenAt, loc)] = true
	}
	return days
}

func walkBack(days map[time.Time]bool, from time.Time) int {
	n := 0
	for d := from; days[d]; d = d.AddDate(0, 0, -1) {
		n++
	}
	return n
}

func mode(counts map[int]int) (int, bool) {
	if len(counts) == 0 {
		return 0, false
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}
