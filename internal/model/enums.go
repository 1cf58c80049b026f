package model

import (
	"fmt"
	"time"
)

// Recurrence is the repetition rule of a reminder.
type Recurrence string

const (
	RecurrenceOnce   Recurrence = "once"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceOnce, RecurrenceDaily, RecurrenceWeekly:
		return true
	}
	return false
}

func (r Recurrence) String() string { return string(r) }

// MarshalText implements encoding.TextMarshaler.
func (r Recurrence) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown recurrence %q", string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Recurrence) UnmarshalText(b []byte) error {
	v := Recurrence(b)
	if !v.Valid() {
		return fmt.Errorf("unknown recurrence %q", string(b))
	}
	*r = v
	return nil
}

// step returns the calendar increment as (years, months, days).
func (r Recurrence) step() (int, int, int) {
	switch r {
	case RecurrenceDaily:
		return 0, 0, 1
	case RecurrenceWeekly:
		return 0, 0, 7
	}
	return 0, 0, 0
}

// Next returns the first occurrence after now, advancing scheduled by whole
// periods. At least one period is always added. For RecurrenceOnce it returns
// scheduled unchanged.
func (r Recurrence) Next(scheduled, now time.Time) time.Time {
	y, m, d := r.step()
	if y == 0 && m == 0 && d == 0 {
		return scheduled
	}
	next := scheduled.AddDate(y, m, d)
	for !next.After(now) {
		next = next.AddDate(y, m, d)
	}
	return next
}

// Action is the kind of state transition recorded in history.
type Action string

const (
	ActionCreated Action = "created"
	ActionTaken   Action = "taken"
	ActionMissed  Action = "missed"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionTaken, ActionMissed:
		return true
	}
	return false
}

func (a Action) String() string { return string(a) }

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("unknown action %q", string(a))
	}
	return []byte(a), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	v := Action(b)
	if !v.Valid() {
		return fmt.Errorf("unknown action %q", string(b))
	}
	*a = v
	return nil
}

// DoseStatus is the adherence classification of a history entry.
type DoseStatus string

const (
	DoseTaken   DoseStatus = "taken"
	DoseLate    DoseStatus = "late"
	DoseMissed  DoseStatus = "missed"
	DosePending DoseStatus = "pending"
)

// Valid reports whether s is a known dose status.
func (s DoseStatus) Valid() bool {
	switch s {
	case DoseTaken, DoseLate, DoseMissed, DosePending:
		return true
	}
	return false
}

func (s DoseStatus) String() string { return string(s) }

// ParseDoseStatus parses s; the empty string is rejected.
func ParseDoseStatus(s string) (DoseStatus, error) {
	v := DoseStatus(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return v, nil
}

// Theme is the persisted UI preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

func (t Theme) String() string { return string(t) }

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme parses s.
func ParseTheme(s string) (Theme, error) {
	v := Theme(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown theme %q", s)
	}
	return v, nil
}

// ReminderStatus is informational and not used by transition logic.
type ReminderStatus string

// ReminderActive is the only status assigned by the tracker.
const ReminderActive ReminderStatus = "active"
