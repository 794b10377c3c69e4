package motivation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/motivator/internal/reminder"
	"github.com/notexe/motivator/internal/timeframe"
)

const (
	serverName    = "motivator"
	serverVersion = "1.0.0"
)

// Server exposes the Service as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	svc       *Service
}

// NewServer creates a new MCP server backed by the given service.
func NewServer(svc *Service) *Server {
	s := &Server{
		svc: svc,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("create_reminder",
			mcp.WithDescription("Schedule a single motivational reminder"),
			mcp.WithString("message", mcp.Required(), mcp.Description("Reminder text, at most 500 characters")),
			mcp.WithString("scheduled_time", mcp.Required(),
				mcp.Description("When to fire: RFC3339 (2026-01-15T09:00:00Z), '+2h', 'in 3 days' or 'tomorrow 9am'")),
		),
		s.handleCreateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("create_plan",
			mcp.WithDescription("Turn a goal into a schedule of motivational reminders (AI with template fallback)"),
			mcp.WithString("goal", mcp.Required(), mcp.Description("The goal, e.g. 'Learn Go'")),
			mcp.WithString("timeframe", mcp.Required(), mcp.Description("Timeframe, e.g. '2 weeks', '3 months'")),
		),
		s.handleCreatePlan,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders ordered by time"),
			mcp.WithString("filter", mcp.Description("all (default), active, goal or category")),
			mcp.WithString("goal", mcp.Description("Goal to match when filter is goal")),
			mcp.WithString("category", mcp.Description("Category to match when filter is category")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("upcoming_reminders",
			mcp.WithDescription("List active reminders due within the next hours"),
			mcp.WithNumber("hours", mcp.Description("Window in hours (default: 24)")),
		),
		s.handleUpcomingReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("cancel_reminder",
			mcp.WithDescription("Cancel a reminder and its notification, keeping it in the history"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID or unique prefix")),
		),
		s.handleCancelReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID or unique prefix")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clear_reminders",
			mcp.WithDescription("Delete every reminder and cancel every notification"),
			mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
		),
		s.handleClearReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("sync_notifications",
			mcp.WithDescription("Reschedule notifications missing for active reminders"),
		),
		s.handleSync,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("reminder_stats",
			mcp.WithDescription("Counts of reminders by state, category and goal"),
		),
		s.handleStats,
	)
}

func jsonResult(v any) *mcp.CallToolResult {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output))
}

func (s *Server) handleCreateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := req.GetString("message", "")
	when := req.GetString("scheduled_time", "")

	at, err := timeframe.ParseWhen(when, s.svc.now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scheduled_time: %v", err)), nil
	}

	rec, err := s.svc.CreateManual(ctx, message, at)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create reminder: %v", err)), nil
	}
	return jsonResult(rec), nil
}

type planOutput struct {
	Goal                 string            `json:"goal"`
	TimeframeDays        int               `json:"timeframeDays"`
	Source               reminder.Source   `json:"source"`
	Strategy             string            `json:"strategy"`
	RecommendedTimeframe string            `json:"recommendedTimeframe,omitempty"`
	AIError              string            `json:"aiError,omitempty"`
	Created              []reminder.Record `json:"created"`
	Failures             []string          `json:"failures,omitempty"`
}

func (s *Server) handleCreatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal := req.GetString("goal", "")
	tf := req.GetString("timeframe", "")

	result, err := s.svc.CreateFromGoal(ctx, goal, tf)
	if result == nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create plan: %v", err)), nil
	}

	out := planOutput{
		Goal:                 result.Goal,
		TimeframeDays:        result.TimeframeDays,
		Source:               result.Source,
		Strategy:             result.Strategy,
		RecommendedTimeframe: result.RecommendedTimeframe,
		Created:              result.Created,
	}
	if result.GatewayErr != nil {
		out.AIError = result.GatewayErr.Error()
	}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, fmt.Sprintf("%s (%s): %v", f.Message, f.ScheduledTime.Format(time.RFC3339), f.Err))
	}

	if err != nil {
		output, _ := json.MarshalIndent(out, "", "  ")
		return mcp.NewToolResultError(fmt.Sprintf("failed to create plan: %v\n%s", err, output)), nil
	}
	return jsonResult(out), nil
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		records []reminder.Record
		err     error
	)

	switch filter := req.GetString("filter", "all"); filter {
	case "", "all":
		records, err = s.svc.List(ctx)
	case "active":
		records, err = s.svc.ListActive(ctx)
	case "goal":
		records, err = s.svc.ListByGoal(ctx, req.GetString("goal", ""))
	case "category":
		records, err = s.svc.ListByCategory(ctx, reminder.ParseCategory(req.GetString("category", "")))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown filter %q (use all, active, goal or category)", filter)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(records), nil
}

func (s *Server) handleUpcomingReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hours := int(min(req.GetFloat("hours", DefaultUpcomingHours), MaxUpcomingHours))

	records, err := s.svc.Upcoming(ctx, hours)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list upcoming reminders: %v", err)), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No upcoming reminders."), nil
	}
	return jsonResult(records), nil
}

func (s *Server) handleCancelReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := s.svc.Resolve(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to find reminder: %v", err)), nil
	}

	if err := s.svc.Cancel(ctx, rec.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to cancel reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s cancelled.", rec.ID)), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := s.svc.Resolve(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to find reminder: %v", err)), nil
	}

	if err := s.svc.Delete(ctx, rec.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", rec.ID)), nil
}

func (s *Server) handleClearReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !req.GetBool("confirm", false) {
		return mcp.NewToolResultError("confirm must be true to clear all reminders"), nil
	}

	if err := s.svc.ClearAll(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear reminders: %v", err)), nil
	}
	return mcp.NewToolResultText("All reminders cleared."), nil
}

func (s *Server) handleSync(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Sync(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to sync notifications: %v", err)), nil
	}
	return jsonResult(report), nil
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute stats: %v", err)), nil
	}
	return jsonResult(stats), nil
}
