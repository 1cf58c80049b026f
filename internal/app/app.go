// Package app assembles storage, tracker and alert scheduler from config.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/alert"
	"github.com/Samantha1101854/pilltime-pro2/internal/config"
	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
	"github.com/Samantha1101854/pilltime-pro2/internal/migrate"
	"github.com/Samantha1101854/pilltime-pro2/internal/repository/kvrepo"
	"github.com/Samantha1101854/pilltime-pro2/internal/service"
	"github.com/Samantha1101854/pilltime-pro2/internal/storage"
	"github.com/Samantha1101854/pilltime-pro2/internal/storage/memory"
	"github.com/Samantha1101854/pilltime-pro2/internal/storage/postgres"
	"github.com/Samantha1101854/pilltime-pro2/internal/storage/redis"
	"github.com/Samantha1101854/pilltime-pro2/internal/storage/sqlite"
)

// App holds the wired components. Close releases the backend.
type App struct {
	Config    *config.Config
	KV        storage.KV
	Store     *kvrepo.Store
	Tracker   *service.TrackerImpl
	Scheduler *alert.Scheduler
	Log       *zap.Logger
}

type options struct {
	clk      clock.Clock
	notifier alert.Notifier
}

// Option customizes Open.
type Option func(*options)

// WithClock replaces the wall clock.
func WithClock(clk clock.Clock) Option { return func(o *options) { o.clk = clk } }

// WithNotifier replaces the notifier built from config.
func WithNotifier(n alert.Notifier) Option { return func(o *options) { o.notifier = n } }

// Open validates cfg, connects the backend and builds the services.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	o := options{clk: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	kv, err := OpenKV(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Info("storage ready", zap.String("backend", cfg.Storage.Backend))

	if o.notifier == nil {
		o.notifier, err = buildNotifier(cfg.Telegram, log)
		if err != nil {
			_ = kv.Close()
			return nil, err
		}
	}

	store := kvrepo.New(kv, log)
	tracker := service.NewTracker(store, o.clk, log, service.TrackerOptions{
		Location:    loc,
		Snooze:      cfg.Alert.Snooze,
		MissedAfter: cfg.Alert.MissedAfter,
	})
	sched := alert.New(tracker, o.notifier, o.clk, log, alert.Options{
		Interval: cfg.Alert.Interval,
		Lead:     cfg.Alert.Lead,
		Window:   cfg.Alert.Window,
	})

	return &App{
		Config:    cfg,
		KV:        kv,
		Store:     store,
		Tracker:   tracker,
		Scheduler: sched,
		Log:       log,
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error { return a.KV.Close() }

// OpenKV connects the configured backend. Postgres migrations run first.
func OpenKV(ctx context.Context, cfg config.StorageConfig) (storage.KV, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.BackendPostgres:
		if err := migrate.Up(ctx, cfg.PostgresDSN); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.NewKV(db), nil
	case config.BackendRedis:
		return redis.Open(ctx, cfg.RedisURL, cfg.RedisPrefix)
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedBackend, cfg.Backend)
}

func buildNotifier(cfg config.TelegramConfig, log *zap.Logger) (alert.Notifier, error) {
	logN := alert.NewLogNotifier(log)
	if !cfg.Enabled {
		return logN, nil
	}
	tg, err := alert.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	log.Info("telegram notifications enabled", zap.Int64("chat_id", cfg.ChatID))
	return alert.MultiNotifier{logN, tg}, nil
}
