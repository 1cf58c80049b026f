// Package kvrepo maps repositories onto a storage.KV as JSON documents.
package kvrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
	"github.com/Samantha1101854/pilltime-pro2/internal/model"
	"github.com/Samantha1101854/pilltime-pro2/internal/repository"
	"github.com/Samantha1101854/pilltime-pro2/internal/storage"
)

// Storage keys.
const (
	KeyReminders   = "pilltime-reminders"
	KeyHistory     = "pilltime-history"
	KeyTheme       = "pilltime-theme"
	alertKeyPrefix = "alert-"
)

// AlertKey returns the guard key for a reminder.
func AlertKey(id uuid.UUID) string { return alertKeyPrefix + id.String() }

// Store implements repository.Store over a KV.
type Store struct {
	kv  storage.KV
	log *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// New constructs a Store. A nil logger disables read-path warnings.
func New(kv storage.KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// LoadReminders returns the reminder list.
func (s *Store) LoadReminders(ctx context.Context) ([]model.Reminder, error) {
	out, err := load(ctx, s, KeyReminders, []model.Reminder{})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Reminder{}
	}
	return out, nil
}

// SaveReminders overwrites the reminder list.
func (s *Store) SaveReminders(ctx context.Context, reminders []model.Reminder) error {
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	return s.save(ctx, KeyReminders, reminders)
}

// LoadHistory returns the history log in insertion order.
func (s *Store) LoadHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	out, err := load(ctx, s, KeyHistory, []model.HistoryEntry{})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.HistoryEntry{}
	}
	return out, nil
}

// SaveHistory overwrites the history log.
func (s *Store) SaveHistory(ctx context.Context, entries []model.HistoryEntry) error {
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return s.save(ctx, KeyHistory, entries)
}

// Theme returns the stored theme; light when unset or unreadable.
func (s *Store) Theme(ctx context.Context) (model.Theme, error) {
	raw, err := load(ctx, s, KeyTheme, string(model.ThemeLight))
	if err != nil {
		return "", err
	}
	th, err := model.ParseTheme(raw)
	if err != nil {
		return model.ThemeLight, nil
	}
	return th, nil
}

// SetTheme stores t.
func (s *Store) SetTheme(ctx context.Context, t model.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("%w: theme %q", errs.ErrValidation, string(t))
	}
	return s.save(ctx, KeyTheme, string(t))
}

// HasGuard reports presence of the alert flag.
func (s *Store) HasGuard(ctx context.Context, reminderID uuid.UUID) (bool, error) {
	_, err := s.kv.Get(ctx, AlertKey(reminderID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errs.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// SetGuard writes the alert flag.
func (s *Store) SetGuard(ctx context.Context, reminderID uuid.UUID) error {
	return s.kv.Set(ctx, AlertKey(reminderID), []byte("true"))
}

// ClearGuard removes the alert flag.
func (s *Store) ClearGuard(ctx context.Context, reminderID uuid.UUID) error {
	return s.kv.Remove(ctx, AlertKey(reminderID))
}

// load decodes key, falling back to def when the key is absent or the
// stored document does not decode.
func load[T any](ctx context.Context, s *Store, key string, def T) (T, error) {
	b, err := s.kv.Get(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("load %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		s.log.Warn("discarding unreadable value", zap.String("key", key), zap.Error(err))
		return def, nil
	}
	return v, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
