// Command pilltime-mcp exposes the medication tracker as an MCP server over
// stdio. The alert scheduler runs alongside the server for its lifetime.
//
// Usage:
//
//	./pilltime-mcp          # Start MCP server (stdio)
//	./pilltime-mcp --help   # Show help
//
// Environment:
//
//	PILLTIME_CONFIG  Path to the YAML config (default: ~/.config/pilltime/config.yaml)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/app"
	"github.com/Samantha1101854/pilltime-pro2/internal/config"
	"github.com/Samantha1101854/pilltime-pro2/internal/logging"
	mcpserver "github.com/Samantha1101854/pilltime-pro2/internal/server/mcp"
)

func configPath() string {
	if v := os.Getenv("PILLTIME_CONFIG"); v != "" {
		return v
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "pilltime", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pilltime", "config.yaml")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}
	_ = godotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("open", zap.Error(err))
	}
	defer a.Close()

	go func() {
		if err := a.Scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("scheduler stopped", zap.Error(err))
		}
	}()

	s := mcpserver.New(a.Tracker, log)
	log.Info("mcp server starting", zap.String("backend", cfg.Storage.Backend))
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		log.Error("server error", zap.Error(err))
		stop()
		_ = a.Close()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`PillTime MCP Server - medication reminders via MCP protocol

USAGE:
    pilltime-mcp          Start MCP server (communicates via stdio)
    pilltime-mcp --help   Show this help

ENVIRONMENT:
    PILLTIME_CONFIG              Path to the YAML config file
    PILLTIME_STORAGE__BACKEND    memory, sqlite, postgres or redis
    PILLTIME_TIMEZONE            IANA zone for day boundaries, default Local

TOOLS:
    add_reminder      Add a reminder (medication, time, dosage, unit, recurrence, notes)
    list_reminders    List all reminders
    today_schedule    Reminders due today with status and countdown
    mark_taken        Record a dose and advance the reminder
    snooze_reminder   Push a reminder back five minutes
    delete_reminder   Delete a reminder
    clear_reminders   Delete all reminders (confirm=true)
    get_history       Filtered, sorted dose history
    get_stats         Dashboard numbers
    get_summary       Per-medication summaries
    get_insights      Best hour, best weekday, trends
    export_data       Full JSON export
    set_theme         light, dark or toggle

CONFIGURATION:
    {
      "mcpServers": {
        "pilltime": {
          "command": "/path/to/pilltime-mcp",
          "args": []
        }
      }
    }`)
}
