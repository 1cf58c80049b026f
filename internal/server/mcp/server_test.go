package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jmhodges/clock"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
	"github.com/Samantha1101854/pilltime-pro2/internal/repository/kvrepo"
	"github.com/Samantha1101854/pilltime-pro2/internal/service"
	"github.com/Samantha1101854/pilltime-pro2/internal/storage/memory"
)

var now = time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (*Server, *service.TrackerImpl, clock.FakeClock) {
	t.Helper()
	clk := clock.NewFake()
	clk.Set(now)
	log := zaptest.NewLogger(t)
	tr := service.NewTracker(kvrepo.New(memory.New(), log), clk, log, service.TrackerOptions{Location: time.UTC})
	return New(tr, log), tr, clk
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return ""
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var v T
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &v))
	return v
}

func TestAddListTakeFlow(t *testing.T) {
	ctx := context.Background()
	s, tr, clk := newServer(t)

	res, err := s.handleAddReminder(ctx, call(map[string]any{
		"medication":  "Metformin",
		"time":        "08:00",
		"dosage":      "500",
		"dosage_unit": "mg",
	}))
	require.NoError(t, err)
	r := decode[model.Reminder](t, res)
	require.Equal(t, model.RecurrenceDaily, r.Recurrence)
	require.True(t, r.Time.Equal(now))

	res, err = s.handleListReminders(ctx, call(nil))
	require.NoError(t, err)
	require.Len(t, decode[[]model.Reminder](t, res), 1)

	res, err = s.handleTodaySchedule(ctx, call(nil))
	require.NoError(t, err)
	items := decode[[]map[string]any](t, res)
	require.Len(t, items, 1)
	require.Equal(t, "pending", items[0]["displayStatus"])

	clk.Add(3 * time.Minute)
	res, err = s.handleMarkTaken(ctx, call(map[string]any{"id": r.ID.String()}))
	require.NoError(t, err)
	e := decode[model.HistoryEntry](t, res)
	require.Equal(t, model.ActionTaken, e.Action)

	got, err := tr.Get(ctx, r.ID)
	require.NoError(t, err)
	require.True(t, got.Time.Equal(now.AddDate(0, 0, 1)))

	res, err = s.handleStats(ctx, call(nil))
	require.NoError(t, err)
	ov := decode[map[string]int](t, res)
	require.Equal(t, 1, ov["takenToday"])
	require.Equal(t, 1, ov["streak"])
}

func TestAddReminder_Validation(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newServer(t)

	res, err := s.handleAddReminder(ctx, call(map[string]any{"medication": "", "time": "08:00"}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = s.handleAddReminder(ctx, call(map[string]any{"medication": "A", "time": "soon"}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = s.handleAddReminder(ctx, call(map[string]any{"medication": "A", "time": "08:00", "recurrence": "hourly"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "recurrence")
}

func TestIDTools_BadAndUnknownIDs(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newServer(t)
	unknown := uuid.Must(uuid.NewV4()).String()

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"mark_taken":      s.handleMarkTaken,
		"snooze_reminder": s.handleSnooze,
		"delete_reminder": s.handleDelete,
	}
	for name, h := range handlers {
		res, err := h(ctx, call(map[string]any{}))
		require.NoError(t, err, name)
		require.True(t, res.IsError, name)

		res, err = h(ctx, call(map[string]any{"id": "42"}))
		require.NoError(t, err, name)
		require.Contains(t, text(t, res), "invalid id", name)

		res, err = h(ctx, call(map[string]any{"id": unknown}))
		require.NoError(t, err, name)
		require.True(t, res.IsError, name)
		require.Contains(t, text(t, res), "not found", name)
	}
}

func TestSnoozeDeleteClear(t *testing.T) {
	ctx := context.Background()
	s, tr, _ := newServer(t)

	a, err := tr.Create(ctx, model.NewReminder{Medication: "A", Time: now, Recurrence: model.RecurrenceOnce})
	require.NoError(t, err)
	_, err = tr.Create(ctx, model.NewReminder{Medication: "B", Time: now, Recurrence: model.RecurrenceDaily})
	require.NoError(t, err)

	res, err := s.handleSnooze(ctx, call(map[string]any{"id": a.ID.String()}))
	require.NoError(t, err)
	r := decode[model.Reminder](t, res)
	require.True(t, r.Time.Equal(now.Add(5*time.Minute)))

	res, err = s.handleDelete(ctx, call(map[string]any{"id": a.ID.String()}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = s.handleClear(ctx, call(map[string]any{"confirm": false}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = s.handleClear(ctx, call(map[string]any{"confirm": true}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	rs, err := tr.List(ctx)
	require.NoError(t, err)
	require.Empty(t, rs)
	h, err := tr.History(ctx)
	require.NoError(t, err)
	require.Len(t, h, 2, "created entries survive clear")
}

func TestHistoryFilters(t *testing.T) {
	ctx := context.Background()
	s, tr, clk := newServer(t)

	a, err := tr.Create(ctx, model.NewReminder{Medication: "Aspirin", Time: now, Recurrence: model.RecurrenceDaily})
	require.NoError(t, err)
	_, err = tr.Create(ctx, model.NewReminder{Medication: "Zinc", Time: now, Recurrence: model.RecurrenceDaily})
	require.NoError(t, err)
	clk.Add(20 * time.Minute)
	_, err = tr.MarkTaken(ctx, a.ID)
	require.NoError(t, err)

	res, err := s.handleHistory(ctx, call(map[string]any{"status": "late"}))
	require.NoError(t, err)
	es := decode[[]model.HistoryEntry](t, res)
	require.Len(t, es, 1)
	require.Equal(t, "Aspirin", es[0].Medication)

	res, err = s.handleHistory(ctx, call(map[string]any{"medication": "zinc", "sort": "oldest"}))
	require.NoError(t, err)
	require.Len(t, decode[[]model.HistoryEntry](t, res), 1)

	res, err = s.handleHistory(ctx, call(map[string]any{"from": now.Add(time.Hour).Format(time.RFC3339)}))
	require.NoError(t, err)
	require.Equal(t, "No history entries found.", text(t, res))

	for _, bad := range []map[string]any{{"status": "lost"}, {"sort": "random"}, {"to": "yesterday"}} {
		res, err = s.handleHistory(ctx, call(bad))
		require.NoError(t, err)
		require.True(t, res.IsError, bad)
	}
}

func TestSummaryInsightsExport(t *testing.T) {
	ctx := context.Background()
	s, tr, _ := newServer(t)

	res, err := s.handleSummary(ctx, call(nil))
	require.NoError(t, err)
	require.Equal(t, "No medications tracked yet.", text(t, res))

	a, err := tr.Create(ctx, model.NewReminder{Medication: "Aspirin", Time: now, Recurrence: model.RecurrenceDaily})
	require.NoError(t, err)
	_, err = tr.MarkTaken(ctx, a.ID)
	require.NoError(t, err)

	res, err = s.handleSummary(ctx, call(nil))
	require.NoError(t, err)
	sums := decode[[]map[string]any](t, res)
	require.Len(t, sums, 1)
	require.Equal(t, "Aspirin", sums[0]["medication"])

	res, err = s.handleInsights(ctx, call(nil))
	require.NoError(t, err)
	in := decode[map[string]any](t, res)
	require.EqualValues(t, 8, in["bestHour"])
	require.Equal(t, "Monday", in["bestWeekday"])

	res, err = s.handleExport(ctx, call(nil))
	require.NoError(t, err)
	doc := decode[service.Export](t, res)
	require.Equal(t, "1.0", doc.Version)
	require.Len(t, doc.Reminders, 1)
	require.Len(t, doc.History, 2)
	require.Equal(t, 1, doc.Stats.TotalDoses)
}

func TestSetTheme(t *testing.T) {
	ctx := context.Background()
	s, tr, _ := newServer(t)

	res, err := s.handleSetTheme(ctx, call(map[string]any{"theme": "toggle"}))
	require.NoError(t, err)
	require.Equal(t, "Theme set to dark.", text(t, res))

	res, err = s.handleSetTheme(ctx, call(map[string]any{"theme": "light"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	th, err := tr.Theme(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ThemeLight, th)

	res, err = s.handleSetTheme(ctx, call(map[string]any{"theme": "sepia"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestServer_ToolsListedAndCallable(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newServer(t)

	list := s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(list)
	require.NoError(t, err)
	for _, name := range []string{
		"add_reminder", "list_reminders", "today_schedule", "mark_taken", "snooze_reminder",
		"delete_reminder", "clear_reminders", "get_history", "get_stats", "get_summary",
		"get_insights", "export_data", "set_theme",
	} {
		require.True(t, strings.Contains(string(raw), `"`+name+`"`), "tool %s not listed", name)
	}

	resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_reminders","arguments":{}}}`))
	raw, err = json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(raw), "No reminders found.")
}
