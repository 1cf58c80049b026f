package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
)

var day = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func entry(med string, action model.Action, sched time.Time, delay time.Duration) model.HistoryEntry {
	e := model.HistoryEntry{Medication: med, Action: action, ScheduledTime: sched, RecordedAt: sched.Add(delay)}
	if action == model.ActionTaken {
		at := sched.Add(delay)
		e.TakenAt = &at
	}
	return e
}

func sample() []model.HistoryEntry {
	return []model.HistoryEntry{
		entry("Aspirin", model.ActionCreated, day, -time.Hour),
		entry("Aspirin", model.ActionTaken, day, 2*time.Minute),
		entry("Metformin", model.ActionTaken, day.Add(3*time.Hour), 40*time.Minute),
		entry("Aspirin", model.ActionMissed, day.AddDate(0, 0, 1), 2*time.Hour),
		entry("Vitamin D", model.ActionTaken, day.AddDate(0, 0, 2), 10*time.Minute),
	}
}

func meds(es []model.HistoryEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Medication + "/" + string(e.Action)
	}
	return out
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("")
	require.NoError(t, err)
	require.Equal(t, OrderNewest, o)

	o, err = ParseOrder(" Delay ")
	require.NoError(t, err)
	require.Equal(t, OrderDelay, o)

	_, err = ParseOrder("random")
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want []string
	}{
		{"all", Filter{}, meds(sample())},
		{"medication ignores case", Filter{Medication: "aspirin"}, []string{"Aspirin/created", "Aspirin/taken", "Aspirin/missed"}},
		{"taken on time", Filter{Status: model.DoseTaken}, []string{"Aspirin/taken"}},
		{"late", Filter{Status: model.DoseLate}, []string{"Metformin/taken", "Vitamin D/taken"}},
		{"missed", Filter{Status: model.DoseMissed}, []string{"Aspirin/missed"}},
		{"pending", Filter{Status: model.DosePending}, []string{"Aspirin/created"}},
		{
			"range on event time",
			Filter{From: day.Add(time.Hour), To: day.AddDate(0, 0, 1).Add(2 * time.Hour)},
			[]string{"Metformin/taken", "Aspirin/missed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, meds(Apply(sample(), tt.f)))
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		order Order
		want  []string
	}{
		{OrderNewest, []string{"Vitamin D/taken", "Aspirin/missed", "Metformin/taken", "Aspirin/taken", "Aspirin/created"}},
		{OrderOldest, []string{"Aspirin/created", "Aspirin/taken", "Metformin/taken", "Aspirin/missed", "Vitamin D/taken"}},
		{OrderMedication, []string{"Aspirin/created", "Aspirin/taken", "Aspirin/missed", "Metformin/taken", "Vitamin D/taken"}},
		{OrderDelay, []string{"Metformin/taken", "Vitamin D/taken", "Aspirin/taken", "Aspirin/created", "Aspirin/missed"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			es := sample()
			Sort(es, tt.order)
			require.Equal(t, tt.want, meds(es))
		})
	}
}

func TestQueryLeavesInputUntouched(t *testing.T) {
	in := sample()
	before := meds(in)

	out := Query(in, Filter{Medication: "Aspirin"}, OrderNewest)
	require.Equal(t, []string{"Aspirin/missed", "Aspirin/taken", "Aspirin/created"}, meds(out))
	require.Equal(t, before, meds(in))
}

func TestMedications(t *testing.T) {
	require.Equal(t, []string{"Aspirin", "Metformin", "Vitamin D"}, Medications(sample()))
	require.Empty(t, Medications(nil))
}
