// Package alert raises due-reminder alerts on a fixed interval.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
)

// Defaults for Options.
const (
	DefaultInterval = 60 * time.Second
	DefaultLead     = 60 * time.Second
	DefaultWindow   = 300 * time.Second
)

// Source is the part of the tracker the scheduler reads.
type Source interface {
	List(ctx context.Context) ([]model.Reminder, error)
	DetectMissed(ctx context.Context) ([]model.HistoryEntry, error)
	// ClaimAlert sets the guard for the occurrence at scheduled and reports
	// whether it was still unclaimed.
	ClaimAlert(ctx context.Context, id uuid.UUID, scheduled time.Time) (bool, error)
}

// Options tunes the alert window. Zero values select defaults.
type Options struct {
	Interval time.Duration
	Lead     time.Duration // how early before Time an alert may fire
	Window   time.Duration // how long after Time an alert may still fire
}

// Scheduler fires one alert per reminder occurrence.
type Scheduler struct {
	src    Source
	notify Notifier
	clk    clock.Clock
	log    *zap.Logger
	opts   Options
}

// New constructs a Scheduler.
func New(src Source, notify Notifier, clk clock.Clock, log *zap.Logger, opts Options) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if notify == nil {
		notify = NewLogNotifier(log)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Lead <= 0 {
		opts.Lead = DefaultLead
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	return &Scheduler{src: src, notify: notify, clk: clk, log: log, opts: opts}
}

// Due reports whether now falls in [at-lead, at+window).
func Due(at, now time.Time, lead, window time.Duration) bool {
	return !now.Before(at.Add(-lead)) && now.Before(at.Add(window))
}

// Tick raises alerts for every due reminder without a guard and returns
// them. Storage failures are logged and end the tick early.
func (s *Scheduler) Tick(ctx context.Context) []model.Alert {
	reminders, err := s.src.List(ctx)
	if err != nil {
		s.log.Error("alert tick: load reminders", zap.Error(err))
		return nil
	}

	now := s.clk.Now()
	var raised []model.Alert
	for i := range reminders {
		r := &reminders[i]
		if !Due(r.Time, now, s.opts.Lead, s.opts.Window) {
			continue
		}
		claimed, err := s.src.ClaimAlert(ctx, r.ID, r.Time)
		if err != nil {
			s.log.Error("alert tick: claim", zap.String("reminder_id", r.ID.String()), zap.Error(err))
			return raised
		}
		if !claimed {
			continue
		}

		a := model.Alert{
			ReminderID: r.ID,
			Medication: r.Medication,
			Dosage:     r.DosageLabel(),
			Scheduled:  r.Time,
			RaisedAt:   now,
		}
		if err := s.notify.Notify(ctx, a); err != nil {
			s.log.Warn("alert delivery failed", zap.String("reminder_id", r.ID.String()), zap.Error(err))
		}
		raised = append(raised, a)
	}
	return raised
}

// Run flags missed doses once, ticks immediately and then on every
// interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.opts.Interval <= 0 {
		return fmt.Errorf("alert interval must be positive, got %s", s.opts.Interval)
	}
	s.log.Info("alert scheduler started", zap.Duration("interval", s.opts.Interval))

	if missed, err := s.src.DetectMissed(ctx); err != nil {
		s.log.Error("missed detection failed", zap.Error(err))
	} else if len(missed) > 0 {
		s.log.Info("missed doses recorded", zap.Int("count", len(missed)))
	}

	s.Tick(ctx)

	// cadence follows the injected clock
	timer := s.clk.NewTimer(s.opts.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("alert scheduler stopped")
			return nil
		case <-timer.C:
			s.Tick(ctx)
			timer.Reset(s.opts.Interval)
		}
	}
}
