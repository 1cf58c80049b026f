// Package mcpserver exposes the tracker as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
	"github.com/Samantha1101854/pilltime-pro2/internal/history"
	"github.com/Samantha1101854/pilltime-pro2/internal/model"
	"github.com/Samantha1101854/pilltime-pro2/internal/service"
)

const (
	serverName    = "pilltime"
	serverVersion = "1.0.0"
)

// Server is the MCP server for medication reminders.
type Server struct {
	mcpServer *server.MCPServer
	tracker   service.Tracker
	log       *zap.Logger
}

// New creates the server and registers every tool.
func New(tracker service.Tracker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{tracker: tracker, log: log}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithToolHandlerMiddleware(RecoverTool(log)),
		server.WithToolHandlerMiddleware(LoggingTool(log)),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	idArg := mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID (UUID)"))

	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Create a medication reminder"),
			mcp.WithString("medication", mcp.Required(), mcp.Description("Medication name")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Scheduled time: RFC3339, 2006-01-02T15:04 or 15:04 for today")),
			mcp.WithString("dosage", mcp.Description("Amount, e.g. 500")),
			mcp.WithString("dosage_unit", mcp.Description("Unit, e.g. mg")),
			mcp.WithString("recurrence", mcp.Enum("once", "daily", "weekly"), mcp.Description("Repetition (default: daily)")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders", mcp.WithDescription("List all reminders in stored order")),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("today_schedule", mcp.WithDescription("Reminders due today with status and time remaining")),
		s.handleTodaySchedule,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("mark_taken", mcp.WithDescription("Record a dose as taken and advance the reminder"), idArg),
		s.handleMarkTaken,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("snooze_reminder", mcp.WithDescription("Postpone a reminder by the snooze interval"), idArg),
		s.handleSnooze,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder", mcp.WithDescription("Delete a reminder; history is kept"), idArg),
		s.handleDelete,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clear_reminders",
			mcp.WithDescription("Delete every reminder; history is kept"),
			mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
		),
		s.handleClear,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_history",
			mcp.WithDescription("Browse dose history"),
			mcp.WithString("medication", mcp.Description("Filter by medication name")),
			mcp.WithString("status", mcp.Enum("taken", "late", "missed", "pending"), mcp.Description("Filter by dose status")),
			mcp.WithString("from", mcp.Description("Earliest event time (RFC3339)")),
			mcp.WithString("to", mcp.Description("Latest event time (RFC3339)")),
			mcp.WithString("sort", mcp.Enum("newest", "oldest", "medication", "delay"), mcp.Description("Order (default: newest)")),
		),
		s.handleHistory,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_stats", mcp.WithDescription("Dashboard figures: streak, adherence, doses today")),
		s.handleStats,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_summary", mcp.WithDescription("Per-medication adherence summary")),
		s.handleSummary,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_insights", mcp.WithDescription("Trends: best hour and weekday, delays, weekly and monthly adherence")),
		s.handleInsights,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("export_data", mcp.WithDescription("Export reminders and history as one JSON document")),
		s.handleExport,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_theme",
			mcp.WithDescription("Set the display theme"),
			mcp.WithString("theme", mcp.Required(), mcp.Enum("light", "dark", "toggle")),
		),
		s.handleSetTheme,
	)
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	when, err := service.ParseWhen(req.GetString("time", ""), s.tracker.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.tracker.Create(ctx, model.NewReminder{
		Medication: req.GetString("medication", ""),
		Dosage:     req.GetString("dosage", ""),
		DosageUnit: req.GetString("dosage_unit", ""),
		Time:       when,
		Recurrence: model.Recurrence(req.GetString("recurrence", string(model.RecurrenceDaily))),
		Notes:      req.GetString("notes", ""),
	})
	if err != nil {
		return toolError("add reminder", err), nil
	}
	return jsonResult(r)
}

func (s *Server) handleListReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rs, err := s.tracker.List(ctx)
	if err != nil {
		return toolError("list reminders", err), nil
	}
	if len(rs) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(rs)
}

// scheduleItem is a reminder as shown on the today view.
type scheduleItem struct {
	model.Reminder
	DisplayStatus model.DoseStatus `json:"displayStatus"`
	DueIn         string           `json:"dueIn"`
}

func (s *Server) handleTodaySchedule(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rs, err := s.tracker.Today(ctx)
	if err != nil {
		return toolError("today schedule", err), nil
	}
	if len(rs) == 0 {
		return mcp.NewToolResultText("Nothing scheduled today."), nil
	}
	now := s.tracker.Now()
	items := make([]scheduleItem, 0, len(rs))
	for _, r := range rs {
		items = append(items, scheduleItem{
			Reminder:      r,
			DisplayStatus: service.DisplayStatus(r, now),
			DueIn:         service.Countdown(r, now).Round(time.Minute).String(),
		})
	}
	return jsonResult(items)
}

func (s *Server) handleMarkTaken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := reminderID(req)
	if res != nil {
		return res, nil
	}
	e, err := s.tracker.MarkTaken(ctx, id)
	if err != nil {
		return toolError("mark taken", err), nil
	}
	if e == nil {
		return notFound(id), nil
	}
	return jsonResult(e)
}

func (s *Server) handleSnooze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := reminderID(req)
	if res != nil {
		return res, nil
	}
	r, err := s.tracker.Snooze(ctx, id)
	if err != nil {
		return toolError("snooze", err), nil
	}
	if r == nil {
		return notFound(id), nil
	}
	return jsonResult(r)
}

func (s *Server) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := reminderID(req)
	if res != nil {
		return res, nil
	}
	ok, err := s.tracker.Delete(ctx, id)
	if err != nil {
		return toolError("delete", err), nil
	}
	if !ok {
		return notFound(id), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !req.GetBool("confirm", false) {
		return mcp.NewToolResultError("confirm must be true to clear all reminders"), nil
	}
	if err := s.tracker.ClearAll(ctx); err != nil {
		return toolError("clear reminders", err), nil
	}
	return mcp.NewToolResultText("All reminders cleared. History kept."), nil
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f history.Filter
	f.Medication = req.GetString("medication", "")
	if v := req.GetString("status", ""); v != "" {
		st, err := model.ParseDoseStatus(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Status = st
	}
	for _, b := range []struct {
		arg string
		dst *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		if v := req.GetString(b.arg, ""); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid %s: %v", b.arg, err)), nil
			}
			*b.dst = t
		}
	}
	order, err := history.ParseOrder(req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	all, err := s.tracker.History(ctx)
	if err != nil {
		return toolError("history", err), nil
	}
	out := history.Query(all, f, order)
	if len(out) == 0 {
		return mcp.NewToolResultText("No history entries found."), nil
	}
	return jsonResult(out)
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ov, err := s.tracker.Overview(ctx)
	if err != nil {
		return toolError("stats", err), nil
	}
	return jsonResult(ov)
}

func (s *Server) handleSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := s.tracker.Insights(ctx)
	if err != nil {
		return toolError("summary", err), nil
	}
	if len(in.Medications) == 0 {
		return mcp.NewToolResultText("No medications tracked yet."), nil
	}
	return jsonResult(in.Medications)
}

func (s *Server) handleInsights(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := s.tracker.Insights(ctx)
	if err != nil {
		return toolError("insights", err), nil
	}
	return jsonResult(in)
}

func (s *Server) handleExport(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.tracker.Export(ctx)
	if err != nil {
		return toolError("export", err), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleSetTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := req.GetString("theme", "")
	var th model.Theme
	if v == "toggle" {
		cur, err := s.tracker.Theme(ctx)
		if err != nil {
			return toolError("theme", err), nil
		}
		th = cur.Toggle()
	} else {
		th = model.Theme(v)
	}
	if err := s.tracker.SetTheme(ctx, th); err != nil {
		return toolError("theme", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Theme set to %s.", th)), nil
}

func reminderID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw := req.GetString("id", "")
	if raw == "" {
		return uuid.Nil, mcp.NewToolResultError("id is required")
	}
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func notFound(id uuid.UUID) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("reminder %s not found", id))
}

func toolError(op string, err error) *mcp.CallToolResult {
	if errors.Is(err, errs.ErrValidation) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", op, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(output)), nil
}
