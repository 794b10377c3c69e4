package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notexe/motivator/internal/motivation"
	"github.com/notexe/motivator/internal/reminder"
	"github.com/notexe/motivator/internal/timeframe"
)

// timeframeChoices are offered when /goal is given without a timeframe.
var timeframeChoices = []string{"1 week", "2 weeks", "1 month", "3 months", "6 months"}

func (r *REPL) handleAdd(ctx context.Context, args string) error {
	when, message, ok := splitPipe(args)
	if !ok || when == "" || message == "" {
		return fmt.Errorf("usage: /add <when> | <message>  (e.g. /add in 2 hours | stretch)")
	}

	at, err := timeframe.ParseWhen(when, r.now())
	if err != nil {
		return err
	}

	rec, err := r.svc.CreateManual(ctx, message, at)
	if err != nil {
		return err
	}
	r.println(r.formatter.FormatCreated(rec))
	return nil
}

func (r *REPL) handleGoal(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: /goal <timeframe> | <goal>  (e.g. /goal 3 weeks | run a 5k)")
	}

	tf, goal, ok := splitPipe(args)
	if !ok {
		goal = tf
		choice, err := r.choose("Over what timeframe?", timeframeChoices)
		if err != nil {
			return err
		}
		tf = choice
	}

	r.spinner.Start("Building your plan...")
	res, err := r.svc.CreateFromGoal(ctx, goal, tf)
	r.spinner.Stop()

	if res != nil {
		r.println(r.formatter.FormatPlan(res))
		r.println("")
	}
	if err != nil {
		var batchErr *motivation.BatchError
		if errors.As(err, &batchErr) {
			return fmt.Errorf("no reminders could be scheduled: %w", err)
		}
		return err
	}

	r.println(r.formatter.FormatSuccess(fmt.Sprintf("%d reminder(s) scheduled", len(res.Created))))
	return nil
}

func (r *REPL) handleList(ctx context.Context, args string) error {
	filter, value, _ := strings.Cut(args, " ")
	value = strings.TrimSpace(value)

	var (
		records []reminder.Record
		err     error
	)
	switch strings.ToLower(filter) {
	case "", "all":
		records, err = r.svc.List(ctx)
	case "active":
		records, err = r.svc.ListActive(ctx)
	case "goal":
		if value == "" {
			return fmt.Errorf("usage: /list goal <goal>")
		}
		records, err = r.svc.ListByGoal(ctx, value)
	case "category":
		if value == "" {
			return fmt.Errorf("usage: /list category <category>")
		}
		records, err = r.svc.ListByCategory(ctx, reminder.ParseCategory(value))
	default:
		return fmt.Errorf("unknown filter %q (use active, goal <g> or category <c>)", filter)
	}
	if err != nil {
		return err
	}

	r.println(r.formatter.FormatRecords(records, r.now()))
	return nil
}

func (r *REPL) handleUpcoming(ctx context.Context, args string) error {
	hours := motivation.DefaultUpcomingHours
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: /upcoming [hours]")
		}
		hours = n
	}

	records, err := r.svc.Upcoming(ctx, hours)
	if err != nil {
		return err
	}
	r.println(r.formatter.FormatRecords(records, r.now()))
	return nil
}

func (r *REPL) handleCancel(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: /cancel <id>")
	}
	rec, err := r.svc.Resolve(ctx, args)
	if err != nil {
		return err
	}
	if err := r.svc.Cancel(ctx, rec.ID); err != nil {
		return err
	}
	r.println(r.formatter.FormatSuccess("Cancelled: " + rec.Message))
	return nil
}

func (r *REPL) handleDelete(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: /delete <id>")
	}
	rec, err := r.svc.Resolve(ctx, args)
	if err != nil {
		return err
	}
	if err := r.svc.Delete(ctx, rec.ID); err != nil {
		return err
	}
	r.println(r.formatter.FormatSuccess("Deleted: " + rec.Message))
	return nil
}

func (r *REPL) handleClear(ctx context.Context) error {
	ok, err := r.confirm("Delete every reminder and cancel its notification?")
	if err != nil {
		return err
	}
	if !ok {
		r.displayInfo("Nothing deleted.")
		return nil
	}

	if err := r.svc.ClearAll(ctx); err != nil {
		return err
	}
	r.println(r.formatter.FormatSuccess("All reminders deleted."))
	return nil
}

func (r *REPL) handleSync(ctx context.Context) error {
	report, err := r.svc.Sync(ctx)
	if err != nil {
		return err
	}
	r.println(r.formatter.FormatSyncReport(report))
	return nil
}

func (r *REPL) handleStats(ctx context.Context) error {
	st, err := r.svc.Stats(ctx)
	if err != nil {
		return err
	}
	r.println(r.formatter.FormatStats(st))
	return nil
}

func (r *REPL) handleAPIKey(ctx context.Context, args string) error {
	if r.keys == nil {
		return fmt.Errorf("settings are not available")
	}
	if args == "" {
		return fmt.Errorf("usage: /apikey <key>")
	}
	if err := r.keys.SetAPIKey(ctx, args); err != nil {
		return err
	}
	r.println(r.formatter.FormatSuccess("API key saved (" + maskKey(args) + ")"))
	return nil
}

func (r *REPL) handleTest(ctx context.Context) error {
	if r.ai == nil {
		return fmt.Errorf("no AI provider configured")
	}

	r.spinner.Start("Testing AI connection...")
	ok := r.ai.TestConnection(ctx)
	if !ok {
		r.spinner.StopWithError("AI connection failed")
		return nil
	}
	r.spinner.StopWithMessage("AI connection works")
	return nil
}

// maskKey keeps the last four characters.
func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 4) + key[len(key)-4:]
}
