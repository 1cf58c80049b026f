package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
	"github.com/Samantha1101854/pilltime-pro2/internal/model"
	"github.com/Samantha1101854/pilltime-pro2/internal/repository"
	"github.com/Samantha1101854/pilltime-pro2/internal/stats"
)

// Defaults applied when TrackerOptions leaves a field zero.
const (
	DefaultSnooze      = 5 * time.Minute
	DefaultMissedAfter = 60 * time.Minute
	// DisplayMissedAfter is how long past due a reminder is shown as missed.
	DisplayMissedAfter = 30 * time.Minute
	// ExportVersion is written into every export document.
	ExportVersion = "1.0"
)

// Tracker owns the reminder list and the history log.
type Tracker interface {
	// Create validates and stores a new reminder, logging a created entry.
	Create(ctx context.Context, in model.NewReminder) (*model.Reminder, error)
	// MarkTaken records a dose and advances or removes the reminder.
	// Unknown ids return (nil, nil).
	MarkTaken(ctx context.Context, id uuid.UUID) (*model.HistoryEntry, error)
	// Snooze postpones the reminder. Unknown ids return (nil, nil).
	Snooze(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
	// Delete removes the reminder and reports whether it existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// ClearAll removes every reminder; history is kept.
	ClearAll(ctx context.Context) error
	// ClearHistory empties the history log.
	ClearHistory(ctx context.Context) error
	// Get returns one reminder or (nil, nil).
	Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
	// List returns reminders in stored order.
	List(ctx context.Context) ([]model.Reminder, error)
	// Today returns reminders due on the current calendar day, by time.
	Today(ctx context.Context) ([]model.Reminder, error)
	// History returns the log in insertion order.
	History(ctx context.Context) ([]model.HistoryEntry, error)
	// DetectMissed logs a missed entry for each overdue reminder.
	DetectMissed(ctx context.Context) ([]model.HistoryEntry, error)
	// ClaimAlert sets the alert guard for the reminder's occurrence at
	// scheduled and reports whether the caller should raise the alert.
	ClaimAlert(ctx context.Context, id uuid.UUID, scheduled time.Time) (bool, error)
	Theme(ctx context.Context) (model.Theme, error)
	SetTheme(ctx context.Context, t model.Theme) error
	// Overview returns the dashboard figures.
	Overview(ctx context.Context) (stats.Overview, error)
	// Insights returns the trend figures.
	Insights(ctx context.Context) (stats.Insights, error)
	// Export returns a full snapshot of reminders and history.
	Export(ctx context.Context) (*Export, error)
	// Now returns the tracker clock in its configured location.
	Now() time.Time
}

// Export is the document produced by Tracker.Export.
type Export struct {
	Reminders  []model.Reminder     `json:"reminders"`
	History    []model.HistoryEntry `json:"history"`
	Stats      stats.Snapshot       `json:"stats"`
	ExportedAt time.Time            `json:"exportedAt"`
	Version    string               `json:"version"`
}

// TrackerOptions tunes a Tracker. Zero values select defaults.
type TrackerOptions struct {
	Location    *time.Location
	Snooze      time.Duration
	MissedAfter time.Duration
}

type TrackerImpl struct {
	mu    sync.Mutex
	store repository.Store
	clk   clock.Clock
	log   *zap.Logger
	loc   *time.Location

	snooze      time.Duration
	missedAfter time.Duration
}

var _ Tracker = (*TrackerImpl)(nil)

// NewTracker constructs a Tracker over store.
func NewTracker(store repository.Store, clk clock.Clock, log *zap.Logger, opts TrackerOptions) *TrackerImpl {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Snooze <= 0 {
		opts.Snooze = DefaultSnooze
	}
	if opts.MissedAfter <= 0 {
		opts.MissedAfter = DefaultMissedAfter
	}
	return &TrackerImpl{
		store:       store,
		clk:         clk,
		log:         log,
		loc:         opts.Location,
		snooze:      opts.Snooze,
		missedAfter: opts.MissedAfter,
	}
}

// Now returns the current time in the tracker location.
func (t *TrackerImpl) Now() time.Time { return t.clk.Now().In(t.loc) }

// Create validates input and appends the reminder and its created entry.
// Validation rules:
// - medication not blank
// - recurrence one of once, daily, weekly
// - time set
func (t *TrackerImpl) Create(ctx context.Context, in model.NewReminder) (*model.Reminder, error) {
	in.Medication = strings.TrimSpace(in.Medication)
	if in.Medication == "" {
		return nil, fmt.Errorf("%w: empty medication", errs.ErrValidation)
	}
	if !in.Recurrence.Valid() {
		return nil, fmt.Errorf("%w: recurrence %q", errs.ErrValidation, string(in.Recurrence))
	}
	if in.Time.IsZero() {
		return nil, fmt.Errorf("%w: empty time", errs.ErrValidation)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.Now()
	r := model.Reminder{
		ID:         uuid.Must(uuid.NewV4()),
		Medication: in.Medication,
		Dosage:     strings.TrimSpace(in.Dosage),
		DosageUnit: strings.TrimSpace(in.DosageUnit),
		Time:       in.Time,
		Recurrence: in.Recurrence,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		Status:     model.ReminderActive,
	}

	reminders, history, err := t.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	reminders = append(reminders, r)
	history = append(history, model.Snapshot(uuid.Must(uuid.NewV4()), &r, model.ActionCreated, now))
	if err := t.saveAll(ctx, reminders, history); err != nil {
		return nil, err
	}

	t.log.Info("reminder created",
		zap.String("id", r.ID.String()),
		zap.String("medication", r.Medication),
		zap.Time("time", r.Time),
		zap.String("recurrence", r.Recurrence.String()))
	return &r, nil
}

// MarkTaken records the dose against the pre-mutation time. Once reminders
// are removed; recurring ones move to the next occurrence after now.
func (t *TrackerImpl) MarkTaken(ctx context.Context, id uuid.UUID) (*model.HistoryEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, history, err := t.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(reminders, id)
	if i < 0 {
		return nil, nil
	}

	now := t.Now()
	r := &reminders[i]
	entry := model.Snapshot(uuid.Must(uuid.NewV4()), r, model.ActionTaken, now)
	history = append(history, entry)

	if r.Recurrence == model.RecurrenceOnce {
		reminders = append(reminders[:i], reminders[i+1:]...)
	} else {
		r.Time = r.Recurrence.Next(r.Time, now)
		taken := now
		r.LastTaken = &taken
	}

	if err := t.saveAll(ctx, reminders, history); err != nil {
		return nil, err
	}
	if err := t.store.ClearGuard(ctx, id); err != nil {
		return nil, fmt.Errorf("clear guard: %w", err)
	}

	t.log.Info("dose taken",
		zap.String("id", id.String()),
		zap.String("medication", entry.Medication),
		zap.Duration("delay", stats.Delay(entry)))
	return &entry, nil
}

// ClaimAlert succeeds only while the reminder still sits at scheduled and
// carries no guard. Running under the tracker lock keeps a concurrent take
// or snooze from leaving a guard on the next occurrence.
func (t *TrackerImpl) ClaimAlert(ctx context.Context, id uuid.UUID, scheduled time.Time) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, err := t.store.LoadReminders(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(reminders, id)
	if i < 0 || !reminders[i].Time.Equal(scheduled) {
		return false, nil
	}
	seen, err := t.store.HasGuard(ctx, id)
	if err != nil {
		return false, fmt.Errorf("read guard: %w", err)
	}
	if seen {
		return false, nil
	}
	if err := t.store.SetGuard(ctx, id); err != nil {
		return false, fmt.Errorf("set guard: %w", err)
	}
	return true, nil
}

// Snooze moves the reminder forward by the snooze interval.
func (t *TrackerImpl) Snooze(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, err := t.store.LoadReminders(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(reminders, id)
	if i < 0 {
		return nil, nil
	}
	reminders[i].Time = reminders[i].Time.Add(t.snooze)
	if err := t.store.SaveReminders(ctx, reminders); err != nil {
		return nil, err
	}
	if err := t.store.ClearGuard(ctx, id); err != nil {
		return nil, fmt.Errorf("clear guard: %w", err)
	}

	r := reminders[i]
	t.log.Info("reminder snoozed", zap.String("id", id.String()), zap.Time("time", r.Time))
	return &r, nil
}

// Delete removes the reminder without touching history.
func (t *TrackerImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, err := t.store.LoadReminders(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(reminders, id)
	if i < 0 {
		return false, nil
	}
	reminders = append(reminders[:i], reminders[i+1:]...)
	if err := t.store.SaveReminders(ctx, reminders); err != nil {
		return false, err
	}
	if err := t.store.ClearGuard(ctx, id); err != nil {
		return false, fmt.Errorf("clear guard: %w", err)
	}
	t.log.Info("reminder deleted", zap.String("id", id.String()))
	return true, nil
}

// ClearAll empties the reminder list and drops their alert guards.
func (t *TrackerImpl) ClearAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, err := t.store.LoadReminders(ctx)
	if err != nil {
		return err
	}
	if err := t.store.SaveReminders(ctx, nil); err != nil {
		return err
	}
	for _, r := range reminders {
		if err := t.store.ClearGuard(ctx, r.ID); err != nil {
			return fmt.Errorf("clear guard: %w", err)
		}
	}
	t.log.Info("reminders cleared", zap.Int("count", len(reminders)))
	return nil
}

func (t *TrackerImpl) ClearHistory(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.SaveHistory(ctx, nil); err != nil {
		return err
	}
	t.log.Info("history cleared")
	return nil
}

func (t *TrackerImpl) Get(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, err := t.store.LoadReminders(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(reminders, id)
	if i < 0 {
		return nil, nil
	}
	r := reminders[i]
	return &r, nil
}

func (t *TrackerImpl) List(ctx context.Context) ([]model.Reminder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.LoadReminders(ctx)
}

// Today filters reminders to the calendar day of now in the tracker
// location and orders them by time.
func (t *TrackerImpl) Today(ctx context.Context) ([]model.Reminder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, err := t.store.LoadReminders(ctx)
	if err != nil {
		return nil, err
	}
	y, m, d := t.Now().Date()
	out := make([]model.Reminder, 0, len(reminders))
	for _, r := range reminders {
		ry, rm, rd := r.Time.In(t.loc).Date()
		if ry == y && rm == m && rd == d {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (t *TrackerImpl) History(ctx context.Context) ([]model.HistoryEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.LoadHistory(ctx)
}

// DetectMissed appends a missed entry for every reminder scheduled more than
// MissedAfter before now. A reminder already logged as missed for the same
// scheduled time is skipped. Reminders themselves are not changed.
func (t *TrackerImpl) DetectMissed(ctx context.Context) ([]model.HistoryEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, history, err := t.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	now := t.Now()
	var added []model.HistoryEntry
	for i := range reminders {
		r := &reminders[i]
		if now.Sub(r.Time) <= t.missedAfter || alreadyMissed(history, r) {
			continue
		}
		e := model.Snapshot(uuid.Must(uuid.NewV4()), r, model.ActionMissed, now)
		history = append(history, e)
		added = append(added, e)
		t.log.Info("dose missed",
			zap.String("id", r.ID.String()),
			zap.String("medication", r.Medication),
			zap.Time("scheduled", r.Time))
	}
	if len(added) == 0 {
		return nil, nil
	}
	if err := t.store.SaveHistory(ctx, history); err != nil {
		return nil, err
	}
	return added, nil
}

func (t *TrackerImpl) Theme(ctx context.Context) (model.Theme, error) {
	return t.store.Theme(ctx)
}

func (t *TrackerImpl) SetTheme(ctx context.Context, th model.Theme) error {
	if !th.Valid() {
		return fmt.Errorf("%w: theme %q", errs.ErrValidation, string(th))
	}
	return t.store.SetTheme(ctx, th)
}

func (t *TrackerImpl) Overview(ctx context.Context) (stats.Overview, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, history, err := t.loadAll(ctx)
	if err != nil {
		return stats.Overview{}, err
	}
	return stats.NewOverview(reminders, history, t.Now()), nil
}

func (t *TrackerImpl) Insights(ctx context.Context) (stats.Insights, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, history, err := t.loadAll(ctx)
	if err != nil {
		return stats.Insights{}, err
	}
	return stats.NewInsights(reminders, history, t.Now()), nil
}

// Export snapshots both collections with a summary block.
func (t *TrackerImpl) Export(ctx context.Context) (*Export, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	reminders, history, err := t.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Export{
		Reminders:  reminders,
		History:    history,
		Stats:      stats.Summarize(history, t.loc),
		ExportedAt: t.Now(),
		Version:    ExportVersion,
	}, nil
}

// DisplayStatus is the badge shown next to a scheduled reminder: missed once
// more than DisplayMissedAfter past due, pending otherwise.
func DisplayStatus(r model.Reminder, now time.Time) model.DoseStatus {
	if now.Sub(r.Time) > DisplayMissedAfter {
		return model.DoseMissed
	}
	return model.DosePending
}

// Countdown is the time left until r is due, zero once due.
func Countdown(r model.Reminder, now time.Time) time.Duration {
	if d := r.Time.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (t *TrackerImpl) loadAll(ctx context.Context) ([]model.Reminder, []model.HistoryEntry, error) {
	reminders, err := t.store.LoadReminders(ctx)
	if err != nil {
		return nil, nil, err
	}
	history, err := t.store.LoadHistory(ctx)
	if err != nil {
		return nil, nil, err
	}
	return reminders, history, nil
}

func (t *TrackerImpl) saveAll(ctx context.Context, reminders []model.Reminder, history []model.HistoryEntry) error {
	if err := t.store.SaveHistory(ctx, history); err != nil {
		return err
	}
	return t.store.SaveReminders(ctx, reminders)
}

func indexOf(reminders []model.Reminder, id uuid.UUID) int {
	for i := range reminders {
		if reminders[i].ID == id {
			return i
		}
	}
	return -1
}

func alreadyMissed(history []model.HistoryEntry, r *model.Reminder) bool {
	for _, e := range history {
		if e.Action == model.ActionMissed && e.ReminderID == r.ID && e.ScheduledTime.Equal(r.Time) {
			return true
		}
	}
	return false
}
