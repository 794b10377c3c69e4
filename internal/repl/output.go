package repl

import (
	"context"
	"fmt"
	"time"
)

func (r *REPL) println(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *REPL) displayError(err error) {
	r.spinner.Stop()
	r.println(r.formatter.FormatError(err))
	r.println("")
}

func (r *REPL) displayWelcome(ctx context.Context) {
	active := 0
	if records, err := r.svc.ListActive(ctx); err == nil {
		active = len(records)
	}
	fmt.Fprint(r.out, r.formatter.FormatWelcome(r.config.Provider, r.config.Model.Name, active))

	if greeting := r.greeting(ctx); greeting != "" {
		r.displaySystem(greeting)
	}
}

// greeting asks the AI for a short greeting. Failures are silent.
func (r *REPL) greeting(ctx context.Context) string {
	if r.ai == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, greetingTimeout)
	defer cancel()

	g, err := r.ai.Greeting(ctx, timeOfDay(r.now()))
	if err != nil {
		return ""
	}
	return g
}

func timeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	case h >= 17 && h < 22:
		return "evening"
	default:
		return "night"
	}
}

func (r *REPL) displayHelp() {
	fmt.Fprint(r.out, r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	r.println(r.formatter.FormatInfo(msg))
	r.println("")
}

func (r *REPL) displaySystem(msg string) {
	r.println(r.formatter.FormatSystem(msg))
	r.println("")
}
