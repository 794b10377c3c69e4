package motivation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrAmbiguous is returned by Resolve when a prefix matches several records.
var ErrAmbiguous = errors.New("id prefix matches more than one reminder")

// ItemFailure explains why one draft of a goal plan was not created.
type ItemFailure struct {
	Message       string
	ScheduledTime time.Time
	Err           error
}

// BatchError is returned by CreateFromGoal when no record could be created.
type BatchError struct {
	Failures []ItemFailure
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 0 {
		return "no reminders created"
	}
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.Err.Error())
	}
	return fmt.Sprintf("no reminders created (%d failed): %s", len(e.Failures), strings.Join(dedupe(reasons), "; "))
}

// Unwrap exposes every item error to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
