package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	sendTimeout = 30 * time.Second

	// settleTime is how long a freshly scheduled notification is delivered
	// without consulting LocalOptions.Deliverable, so a record still being
	// saved is not mistaken for a deleted one.
	settleTime = time.Minute

	ownerSep = ":"
)

// LocalOptions tune a Local scheduler. Zero values are usable.
type LocalOptions struct {
	// Now replaces time.Now, for tests.
	Now func() time.Time
	// Allowed reports whether the user permits notifications. nil means always.
	Allowed func(ctx context.Context) bool
	// Owner prefixes every handle. Processes sharing one store use distinct
	// owners so each reconciles only its own timers.
	Owner string
	// Deliverable is asked at fire time whether the handle still belongs to
	// an active reminder. nil delivers everything.
	Deliverable func(ctx context.Context, handle string) bool
}

// Local keeps scheduled notifications as in-process timers and hands them
// to a Sender when they fire. Fired and cancelled handles are forgotten.
type Local struct {
	sender  Sender
	now     func() time.Time
	allowed func(ctx context.Context) bool
	owner   string
	deliver func(ctx context.Context, handle string) bool
	logger  zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

type pendingNotification struct {
	Notification
	scheduledAt time.Time
}

func NewLocal(sender Sender, opts LocalOptions, logger zerolog.Logger) *Local {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Local{
		sender:  sender,
		now:     opts.Now,
		allowed: opts.Allowed,
		owner:   opts.Owner,
		deliver: opts.Deliverable,
		logger:  logger.With().Str("component", "notify").Logger(),
		pending: make(map[string]*time.Timer),
	}
}

func (l *Local) Schedule(ctx context.Context, title, body string, fireAt time.Time) (string, error) {
	now := l.now()
	if !fireAt.After(now) {
		return "", &SchedulingError{
			Kind: KindPastTime,
			Err:  fmt.Errorf("fire time %s is not after %s", fireAt.Format(time.RFC3339), now.Format(time.RFC3339)),
		}
	}
	if l.allowed != nil && !l.allowed(ctx) {
		return "", &SchedulingError{Kind: KindPermissionDenied, Err: errors.New("notifications are disabled")}
	}
	if l.sender == nil {
		return "", &SchedulingError{Kind: KindPlatform, Err: errors.New("no notification sender configured")}
	}

	handle := uuid.NewString()
	if l.owner != "" {
		handle = l.owner + ownerSep + handle
	}
	n := pendingNotification{
		Notification: Notification{
			Handle: handle,
			Title:  title,
			Body:   body,
			FireAt: fireAt,
		},
		scheduledAt: now,
	}

	l.mu.Lock()
	l.pending[n.Handle] = time.AfterFunc(fireAt.Sub(now), func() { l.fire(n) })
	l.mu.Unlock()

	l.logger.Debug().Str("handle", n.Handle).Time("fire_at", fireAt).Msg("notification scheduled")
	return n.Handle, nil
}

// Owns reports whether handle was issued by this owner. Handles without an
// owner prefix belong to everyone, and an unnamed scheduler owns all handles.
func (l *Local) Owns(handle string) bool {
	if l.owner == "" {
		return true
	}
	owner, _, tagged := strings.Cut(handle, ownerSep)
	return !tagged || owner == l.owner
}

func (l *Local) fire(n pendingNotification) {
	l.mu.Lock()
	_, ok := l.pending[n.Handle]
	delete(l.pending, n.Handle)
	l.mu.Unlock()

	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if l.deliver != nil && l.now().Sub(n.scheduledAt) >= settleTime && !l.deliver(ctx, n.Handle) {
		l.logger.Info().Str("handle", n.Handle).Msg("notification dropped, reminder no longer live")
		return
	}

	if err := l.sender.Send(ctx, n.Notification); err != nil {
		l.logger.Error().Err(err).Str("handle", n.Handle).Msg("failed to deliver notification")
		return
	}
	l.logger.Info().Str("handle", n.Handle).Msg("notification delivered")
}

// Cancel stops a pending notification. Unknown handles are ignored.
func (l *Local) Cancel(_ context.Context, handle string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.pending[handle]; ok {
		t.Stop()
		delete(l.pending, handle)
		l.logger.Debug().Str("handle", handle).Msg("notification cancelled")
	}
	return nil
}

func (l *Local) CancelAll(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for handle, t := range l.pending {
		t.Stop()
		delete(l.pending, handle)
	}
	return nil
}

// ListScheduled returns the pending handles in a stable order.
func (l *Local) ListScheduled(_ context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	handles := make([]string, 0, len(l.pending))
	for handle := range l.pending {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return handles, nil
}

// Close stops every pending timer.
func (l *Local) Close() error {
	return l.CancelAll(context.Background())
}
