package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/alert"
	"github.com/Samantha1101854/pilltime-pro2/internal/config"
	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
	"github.com/Samantha1101854/pilltime-pro2/internal/model"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Backend = backend
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "data", "pilltime.db")
	cfg.Timezone = "UTC"
	return cfg
}

func TestOpen_SQLitePersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendSQLite)
	clk := clock.NewFake()
	clk.Set(time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC))

	a, err := Open(ctx, cfg, nil, WithClock(clk))
	require.NoError(t, err)
	r, err := a.Tracker.Create(ctx, model.NewReminder{Medication: "Aspirin", Time: clk.Now(), Recurrence: model.RecurrenceDaily})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := Open(ctx, cfg, nil, WithClock(clk))
	require.NoError(t, err)
	defer b.Close()
	got, err := b.Tracker.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Aspirin", got.Medication)
}

func TestOpen_MemoryWiresScheduler(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendMemory)
	clk := clock.NewFake()
	at := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	clk.Set(at)

	var got []model.Alert
	n := notifierFunc(func(_ context.Context, a model.Alert) error { got = append(got, a); return nil })

	a, err := Open(ctx, cfg, nil, WithClock(clk), WithNotifier(n))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Tracker.Create(ctx, model.NewReminder{Medication: "Metformin", Time: at, Recurrence: model.RecurrenceDaily})
	require.NoError(t, err)
	require.Len(t, a.Scheduler.Tick(ctx), 1)
	require.Len(t, got, 1)
}

func TestOpen_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := testConfig(t, config.BackendRedis)
	cfg.Storage.RedisURL = "redis://" + mr.Addr() + "/0"

	a, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Tracker.SetTheme(ctx, model.ThemeDark))
	require.True(t, mr.Exists("pilltime:pilltime-theme"))
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	cfg := testConfig(t, "cassandra")
	_, err := Open(context.Background(), cfg, nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedBackend)
}

func TestOpen_TelegramNotifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"PillTime"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":9,"type":"private"}}}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, config.BackendMemory)
	cfg.Telegram = config.TelegramConfig{Enabled: true, BotToken: "t", ChatID: 9, Endpoint: srv.URL + "/bot%s/%s"}

	n, err := buildNotifier(cfg.Telegram, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, alert.MultiNotifier{}, n)

	n, err = buildNotifier(config.TelegramConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &alert.LogNotifier{}, n)
}

type notifierFunc func(context.Context, model.Alert) error

func (f notifierFunc) Notify(ctx context.Context, a model.Alert) error { return f(ctx, a) }
