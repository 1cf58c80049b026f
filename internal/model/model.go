// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Reminder is a scheduled medication dose with a recurrence rule.
type Reminder struct {
	ID         uuid.UUID      `json:"id"`                   // assigned at creation
	Medication string         `json:"medication"`           // display name, required
	Dosage     string         `json:"dosage,omitempty"`     // free-form amount
	DosageUnit string         `json:"dosageUnit,omitempty"` // e.g. "mg"
	Time       time.Time      `json:"time"`                 // next pending occurrence
	Recurrence Recurrence     `json:"recurrence"`           // immutable after creation
	Notes      string         `json:"notes,omitempty"`
	LastTaken  *time.Time     `json:"lastTaken,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	Status     ReminderStatus `json:"status"`
}

// DosageLabel returns dosage and unit concatenated, or "" when no dosage is set.
func (r *Reminder) DosageLabel() string {
	if r.Dosage == "" {
		return ""
	}
	return r.Dosage + r.DosageUnit
}

// NewReminder is the creation intent for a reminder.
type NewReminder struct {
	Medication string
	Dosage     string
	DosageUnit string
	Time       time.Time
	Recurrence Recurrence
	Notes      string
}

// HistoryEntry is an immutable record of a reminder state transition.
// Medication, Dosage and Notes are snapshots taken at transition time.
type HistoryEntry struct {
	ID            uuid.UUID  `json:"id"`
	ReminderID    uuid.UUID  `json:"reminderId"`
	Medication    string     `json:"medication"`
	Dosage        string     `json:"dosage,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Action        Action     `json:"action"`
	RecordedAt    time.Time  `json:"recordedAt"`
	TakenAt       *time.Time `json:"takenAt,omitempty"` // set for taken entries only
	ScheduledTime time.Time  `json:"scheduledTime"`
}

// Snapshot builds a history entry for r recorded at now.
// TakenAt is populated only for ActionTaken.
func Snapshot(id uuid.UUID, r *Reminder, action Action, now time.Time) HistoryEntry {
	e := HistoryEntry{
		ID:            id,
		ReminderID:    r.ID,
		Medication:    r.Medication,
		Dosage:        r.DosageLabel(),
		Notes:         r.Notes,
		Action:        action,
		RecordedAt:    now,
		ScheduledTime: r.Time,
	}
	if action == ActionTaken {
		t := now
		e.TakenAt = &t
	}
	return e
}

// Alert is a surfaced reminder for a scheduled instant.
type Alert struct {
	ReminderID uuid.UUID
	Medication string
	Dosage     string
	Scheduled  time.Time
	RaisedAt   time.Time
}
