// Package history filters and orders history entries for display.
package history

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
	"github.com/Samantha1101854/pilltime-pro2/internal/stats"
)

// Order selects how Sort arranges entries.
type Order string

const (
	OrderNewest     Order = "newest"
	OrderOldest     Order = "oldest"
	OrderMedication Order = "medication"
	OrderDelay      Order = "delay"
)

// ParseOrder parses s; empty selects OrderNewest.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderNewest, nil
	case OrderNewest, OrderOldest, OrderMedication, OrderDelay:
		return o, nil
	}
	return "", fmt.Errorf("unknown order %q", s)
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	Medication string           // exact, case-insensitive
	Status     model.DoseStatus // derived via stats.Status
	From, To   time.Time        // inclusive bounds on the event time
}

// Match reports whether e passes f.
func (f Filter) Match(e model.HistoryEntry) bool {
	if f.Medication != "" && !strings.EqualFold(f.Medication, e.Medication) {
		return false
	}
	if f.Status != "" && stats.Status(e) != f.Status {
		return false
	}
	at := stats.EventTime(e)
	if !f.From.IsZero() && at.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && at.After(f.To) {
		return false
	}
	return true
}

// Apply returns the entries matching f without modifying the input.
func Apply(entries []model.HistoryEntry, f Filter) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Sort orders entries in place. Ties keep their insertion order.
func Sort(entries []model.HistoryEntry, o Order) {
	var less func(a, b model.HistoryEntry) bool
	switch o {
	case OrderOldest:
		less = func(a, b model.HistoryEntry) bool { return stats.EventTime(a).Before(stats.EventTime(b)) }
	case OrderMedication:
		less = func(a, b model.HistoryEntry) bool { return a.Medication < b.Medication }
	case OrderDelay:
		less = func(a, b model.HistoryEntry) bool { return stats.Delay(a) > stats.Delay(b) }
	default:
		less = func(a, b model.HistoryEntry) bool { return stats.EventTime(a).After(stats.EventTime(b)) }
	}
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
}

// Query filters then sorts, leaving the input untouched.
func Query(entries []model.HistoryEntry, f Filter, o Order) []model.HistoryEntry {
	out := Apply(entries, f)
	Sort(out, o)
	return out
}

// Medications lists distinct medication names in first-seen order.
func Medications(entries []model.HistoryEntry) []string {
	return stats.Medications(entries)
}
