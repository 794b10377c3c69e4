// Command mcp-motivator serves reminder and goal-plan management over MCP.
//
// Usage:
//
//	./mcp-motivator                    # Start MCP server (stdio)
//	./mcp-motivator --config cfg.yaml  # Use another config file
//	./mcp-motivator --help             # Show help
//
// Notifications fire while the server runs. Console notifications and logs
// go to stderr because stdout carries the protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/motivator/internal/app"
	"github.com/notexe/motivator/internal/config"
	"github.com/notexe/motivator/internal/logging"
	"github.com/notexe/motivator/internal/motivation"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	flag.Usage = printHelp
	flag.Parse()

	app.LoadDotEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.UI.ColoredOutput = false
	if cfg.Notify.Owner == "" {
		cfg.Notify.Owner = "mcp"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, os.Stderr)

	a, err := app.New(cfg, logger, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := motivation.NewServer(a.Service)
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Fprintln(os.Stderr, `MCP Motivator Server - reminders and goal plans via MCP

USAGE:
    mcp-motivator [--config path]   Start MCP server (communicates via stdio)
    mcp-motivator --help            Show this help

ENVIRONMENT:
    DEEPSEEK_API_KEY, GEMINI_API_KEY    AI provider keys
    TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID Telegram notification target
    MOTIVATOR_<SECTION>__<KEY>          Override any config key

TOOLS:
    create_reminder     Schedule one reminder (message, scheduled_time)
    create_plan         Build a reminder plan for a goal (goal, timeframe)
    list_reminders      List reminders (filter: all, active, goal, category)
    upcoming_reminders  Active reminders due within the next hours
    cancel_reminder     Cancel a reminder and its notification
    delete_reminder     Delete a reminder
    clear_reminders     Delete every reminder (confirm: true)
    sync_notifications  Reschedule missing notifications
    reminder_stats      Counts by status, category and goal`)
}
