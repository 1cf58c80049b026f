// Package repository defines persistence interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
)

// ReminderRepository persists the ordered reminder list as a whole.
type ReminderRepository interface {
	// LoadReminders returns the stored list, empty when absent or unreadable.
	LoadReminders(ctx context.Context) ([]model.Reminder, error)
	// SaveReminders overwrites the stored list.
	SaveReminders(ctx context.Context, reminders []model.Reminder) error
}

// HistoryRepository persists the append-only history log.
type HistoryRepository interface {
	// LoadHistory returns entries in insertion order.
	LoadHistory(ctx context.Context) ([]model.HistoryEntry, error)
	// SaveHistory overwrites the stored log.
	SaveHistory(ctx context.Context, entries []model.HistoryEntry) error
}

// PreferenceRepository persists user preferences.
type PreferenceRepository interface {
	// Theme returns the stored theme, light when unset.
	Theme(ctx context.Context) (model.Theme, error)
	// SetTheme stores the theme.
	SetTheme(ctx context.Context, t model.Theme) error
}

// AlertGuardRepository stores the one-shot alert flag per reminder.
type AlertGuardRepository interface {
	// HasGuard reports whether an alert was already raised for the reminder's current time.
	HasGuard(ctx context.Context, reminderID uuid.UUID) (bool, error)
	// SetGuard records that an alert was raised.
	SetGuard(ctx context.Context, reminderID uuid.UUID) error
	// ClearGuard forgets the flag so the next scheduled instant can alert.
	ClearGuard(ctx context.Context, reminderID uuid.UUID) error
}

// Store bundles every repository the tracker needs.
type Store interface {
	ReminderRepository
	HistoryRepository
	PreferenceRepository
	AlertGuardRepository
}
