// Package notify schedules reminder notifications and delivers them when due.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Scheduler is the notification platform seen by the reminder service.
// Handles are opaque strings owned by the implementation.
type Scheduler interface {
	Schedule(ctx context.Context, title, body string, fireAt time.Time) (string, error)
	Cancel(ctx context.Context, handle string) error
	CancelAll(ctx context.Context) error
	ListScheduled(ctx context.Context) ([]string, error)
}

// Owner is implemented by schedulers whose handles are only valid in the
// process that issued them.
type Owner interface {
	Owns(handle string) bool
}

// Notification is what a Sender delivers.
type Notification struct {
	Handle string
	Title  string
	Body   string
	FireAt time.Time
}

// Sender delivers a due notification to the user.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Kind classifies scheduling failures.
type Kind string

const (
	KindPastTime         Kind = "past_time"
	KindPermissionDenied Kind = "permission_denied"
	KindPlatform         Kind = "platform"
)

// SchedulingError fails the creation of a single reminder.
type SchedulingError struct {
	Kind Kind
	Err  error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("scheduling failed (%s): %v", e.Kind, e.Err)
}

func (e *SchedulingError) Unwrap() error {
	return e.Err
}
