package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/motivator/internal/gateway"
	"github.com/notexe/motivator/internal/motivation"
	"github.com/notexe/motivator/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")).
			Bold(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// TimeLayout is how reminder times are shown in listings.
const TimeLayout = "Mon Jan 02 15:04"

// ShortIDLength is how many id characters the listings show. Front ends
// accept any unique prefix, so the short form can be typed back.
const ShortIDLength = 8

const maxListMessage = 60

type Formatter struct {
	colored    bool
	timestamps bool
}

func NewFormatter(colored, showTimestamps bool) *Formatter {
	return &Formatter{colored: colored, timestamps: showTimestamps}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if !f.colored {
		return s
	}
	return style.Render(s)
}

// formatProviderName returns a display-friendly provider name.
func formatProviderName(provider string) string {
	switch provider {
	case "deepseek":
		return "DeepSeek"
	case "ollama":
		return "Ollama"
	case "gemini":
		return "Gemini"
	case "":
		return "AI"
	default:
		return strings.ToUpper(provider[:1]) + provider[1:]
	}
}

// FormatError prints GatewayErrors with their short user message.
func (f *Formatter) FormatError(err error) string {
	msg := err.Error()
	var gwErr *gateway.GatewayError
	if errors.As(err, &gwErr) {
		msg = gwErr.UserMessage()
	}
	return f.render(ErrorStyle, "Error: ") + msg
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSystem(msg string) string {
	return f.render(SystemStyle, msg)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, "✓ ") + msg
}

func (f *Formatter) FormatWarning(msg string) string {
	return f.render(WarningStyle, "! ") + msg
}

func (f *Formatter) FormatWelcome(provider, model string, active int) string {
	title := fmt.Sprintf("Motivator • %s", formatProviderName(provider))
	lines := []string{
		f.render(HeaderStyle, title),
		f.render(DimStyle, "Model: ") + f.render(SuccessStyle, model),
		f.render(DimStyle, "Active reminders: ") + f.render(AccentStyle, fmt.Sprintf("%d", active)),
		"",
		f.render(DimStyle, "Type /help for commands"),
	}
	body := strings.Join(lines, "\n")

	if f.colored {
		return "\n" + BoxStyle.Render(body) + "\n\n"
	}
	return "\n" + body + "\n\n"
}

func (f *Formatter) FormatHelp() string {
	cmd := func(name, desc string) string {
		return "  " + f.render(SuccessStyle, fmt.Sprintf("%-32s", name)) + " " + desc
	}
	section := func(name string) string {
		return f.render(AccentStyle, name)
	}

	lines := []string{
		"",
		f.render(HeaderStyle, "Commands"),
		"",
		section("Reminders"),
		cmd("/add <when> | <message>", "Schedule one reminder (in 2 hours, +1d3h, tomorrow 9:00)"),
		cmd("/goal <timeframe> | <goal>", "Build a reminder plan for a goal"),
		cmd("/list [active|goal <g>|category <c>]", "List reminders"),
		cmd("/upcoming [hours]", "Reminders due soon (default 24h)"),
		cmd("/cancel <id>", "Cancel a reminder"),
		cmd("/delete <id>", "Delete a reminder"),
		cmd("/clear", "Delete every reminder"),
		cmd("/sync", "Reschedule missing notifications"),
		cmd("/stats", "Reminder statistics"),
		"",
		section("AI"),
		cmd("/apikey <key>", "Store the AI API key"),
		cmd("/test", "Test the AI connection"),
		"",
		section("General"),
		cmd("/help", "Show this help"),
		cmd("/quit", "Exit"),
		"",
		f.render(DimStyle, "  Ids can be shortened to any unique prefix."),
		"",
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) FormatPrompt() string {
	if f.colored {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render("motivator") +
			lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true).Render(" > ")
	}
	return "motivator > "
}

// Status is the display state of a record at now.
func Status(r reminder.Record, now time.Time) string {
	switch {
	case !r.IsActive:
		return "cancelled"
	case r.Expired(now):
		return "expired"
	default:
		return "active"
	}
}

func shortID(id string) string {
	if len(id) > ShortIDLength {
		return id[:ShortIDLength]
	}
	return id
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// FormatRecords renders records as an aligned table.
func (f *Formatter) FormatRecords(records []reminder.Record, now time.Time) string {
	if len(records) == 0 {
		return f.FormatInfo("No reminders found.")
	}

	var sb strings.Builder
	header := fmt.Sprintf("%-8s  %-16s  %-17s  %-9s  %s", "ID", "WHEN", "CATEGORY", "STATUS", "MESSAGE")
	sb.WriteString(f.render(HeaderStyle, header))
	sb.WriteString("\n")

	for _, r := range records {
		status := Status(r, now)
		statusStyle := SuccessStyle
		switch status {
		case "cancelled":
			statusStyle = DimStyle
		case "expired":
			statusStyle = WarningStyle
		}

		line := fmt.Sprintf("%-8s  %-16s  %-17s  ",
			shortID(r.ID), r.ScheduledTime.Format(TimeLayout), r.Category)
		sb.WriteString(f.render(DimStyle, line))
		sb.WriteString(f.render(statusStyle, fmt.Sprintf("%-9s", status)))
		sb.WriteString("  ")
		sb.WriteString(truncate(r.Message, maxListMessage))
		if f.timestamps {
			sb.WriteString(f.render(DimStyle, " (created "+r.CreatedAt.Format(TimeLayout)+")"))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(f.render(DimStyle, fmt.Sprintf("%d reminder(s)", len(records))))
	return sb.String()
}

func (f *Formatter) FormatCreated(r *reminder.Record) string {
	return f.FormatSuccess(fmt.Sprintf("Reminder %s scheduled for %s",
		shortID(r.ID), r.ScheduledTime.Format(TimeLayout)))
}

// PlanMarkdown describes a goal plan as markdown.
func PlanMarkdown(res *motivation.PlanResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s\n\n", res.Goal)
	if res.Strategy != "" {
		sb.WriteString(res.Strategy)
		sb.WriteString("\n\n")
	}

	source := "AI plan"
	if res.Source == reminder.SourceFallback {
		source = "built-in template"
	}
	fmt.Fprintf(&sb, "**Timeframe:** %d days · **Source:** %s\n", res.TimeframeDays, source)
	if res.RecommendedTimeframe != "" {
		fmt.Fprintf(&sb, "\n**Recommended timeframe:** %s\n", res.RecommendedTimeframe)
	}

	if len(res.Created) > 0 {
		sb.WriteString("\n### Scheduled\n\n")
		for _, r := range res.Created {
			fmt.Fprintf(&sb, "- `%s` **%s** (%s) %s\n",
				shortID(r.ID), r.ScheduledTime.Format(TimeLayout), r.Category, r.Message)
		}
	}

	if len(res.Failures) > 0 {
		sb.WriteString("\n### Not scheduled\n\n")
		for _, fl := range res.Failures {
			fmt.Fprintf(&sb, "- %s: %v\n", fl.ScheduledTime.Format(TimeLayout), fl.Err)
		}
	}
	return sb.String()
}

// FormatPlan renders the plan markdown through glamour when colors are on.
func (f *Formatter) FormatPlan(res *motivation.PlanResult) string {
	md := PlanMarkdown(res)

	var notes []string
	if res.GatewayErr != nil {
		var gwErr *gateway.GatewayError
		reason := res.GatewayErr.Error()
		if errors.As(res.GatewayErr, &gwErr) {
			reason = gwErr.UserMessage()
		}
		notes = append(notes, f.FormatWarning("AI unavailable ("+reason+"), used the built-in template"))
	}
	if res.Rejected > 0 || res.Duplicates > 0 {
		notes = append(notes, f.render(DimStyle,
			fmt.Sprintf("Dropped %d invalid and %d duplicate AI suggestion(s)", res.Rejected, res.Duplicates)))
	}

	out := f.RenderMarkdown(md)
	if len(notes) > 0 {
		out = strings.Join(notes, "\n") + "\n" + out
	}
	return out
}

// RenderMarkdown renders md for the terminal. Plain mode returns md as is.
func (f *Formatter) RenderMarkdown(md string) string {
	if !f.colored {
		return strings.TrimSpace(md)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(rendered)
}

func (f *Formatter) FormatStats(st *motivation.Stats) string {
	var sb strings.Builder
	label := func(name string, n int) {
		sb.WriteString(f.render(DimStyle, fmt.Sprintf("  %-12s", name)))
		sb.WriteString(f.render(AccentStyle, fmt.Sprintf("%d", n)))
		sb.WriteString("\n")
	}

	sb.WriteString(f.render(HeaderStyle, "Statistics"))
	sb.WriteString("\n")
	label("Total", st.Total)
	label("Active", st.Active)
	label("Expired", st.Expired)
	label("Cancelled", st.Cancelled)

	if len(st.ByCategory) > 0 {
		sb.WriteString(f.render(HeaderStyle, "By category"))
		sb.WriteString("\n")
		for _, c := range reminder.Categories {
			if n := st.ByCategory[c]; n > 0 {
				label(string(c), n)
			}
		}
	}

	if len(st.ByGoal) > 0 {
		sb.WriteString(f.render(HeaderStyle, "By goal"))
		sb.WriteString("\n")
		goals := make([]string, 0, len(st.ByGoal))
		for g := range st.ByGoal {
			goals = append(goals, g)
		}
		sort.Strings(goals)
		for _, g := range goals {
			sb.WriteString(f.render(DimStyle, "  "+truncate(g, 40)+": "))
			sb.WriteString(f.render(AccentStyle, fmt.Sprintf("%d", st.ByGoal[g])))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (f *Formatter) FormatSyncReport(r *motivation.SyncReport) string {
	msg := fmt.Sprintf("Sync: %d checked, %d rescheduled, %d failed", r.Checked, r.Rescheduled, r.Failed)
	if r.Failed > 0 {
		return f.FormatWarning(msg)
	}
	return f.FormatSuccess(msg)
}
