// Package motivation is the reminder management facade used by the front
// ends: creation (manual or from a goal), cancellation, queries and the
// reconciliation of stored reminders with scheduled notifications.
package motivation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/notexe/motivator/internal/bounded"
	"github.com/notexe/motivator/internal/gateway"
	"github.com/notexe/motivator/internal/notify"
	"github.com/notexe/motivator/internal/reminder"
	"github.com/notexe/motivator/internal/settings"
	"github.com/notexe/motivator/internal/timeframe"
)

const DefaultNotifyTimeout = 10 * time.Second

// Store is the persistence the service needs; *reminder.Store implements it.
type Store interface {
	LoadAll(ctx context.Context) ([]reminder.Record, error)
	Get(ctx context.Context, id string) (*reminder.Record, error)
	Add(ctx context.Context, r reminder.Record) error
	Update(ctx context.Context, r reminder.Record) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	MigrateLegacy(ctx context.Context) (int, error)
}

// Gateway expands goals into AI candidates; *gateway.Gateway implements it.
type Gateway interface {
	RequestCandidates(ctx context.Context, goal, timeframeHint string) (*gateway.Result, error)
}

// SettingsReader supplies the notification title.
type SettingsReader interface {
	Load(ctx context.Context) (settings.AppSettings, error)
}

// Deps are the collaborators of a Service. Gateway and Settings may be nil.
type Deps struct {
	Store         Store
	Scheduler     notify.Scheduler
	Gateway       Gateway
	Generator     *reminder.Generator
	Settings      SettingsReader
	Logger        zerolog.Logger
	Now           func() time.Time
	NotifyTimeout time.Duration
	// Title is used when settings carry no notification title.
	Title string
}

type Service struct {
	store         Store
	scheduler     notify.Scheduler
	gateway       Gateway
	generator     *reminder.Generator
	settings      SettingsReader
	logger        zerolog.Logger
	now           func() time.Time
	notifyTimeout time.Duration
	defaultTitle  string
}

func New(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Generator == nil {
		d.Generator = reminder.NewGenerator(d.Now)
	}
	if d.NotifyTimeout <= 0 {
		d.NotifyTimeout = DefaultNotifyTimeout
	}
	if d.Title == "" {
		d.Title = settings.DefaultTitle
	}
	return &Service{
		store:         d.Store,
		scheduler:     d.Scheduler,
		gateway:       d.Gateway,
		generator:     d.Generator,
		settings:      d.Settings,
		logger:        d.Logger.With().Str("component", "motivation").Logger(),
		now:           d.Now,
		notifyTimeout: d.NotifyTimeout,
		defaultTitle:  d.Title,
	}
}

// Migrate moves records saved under the legacy key, if any.
func (s *Service) Migrate(ctx context.Context) (int, error) {
	return s.store.MigrateLegacy(ctx)
}

// CreateManual schedules and stores a single reminder at the given time.
// A scheduling failure leaves nothing stored.
func (s *Service) CreateManual(ctx context.Context, message string, at time.Time) (*reminder.Record, error) {
	msg, err := reminder.ValidateMessage("message", message)
	if err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, &reminder.ValidationError{Field: "scheduledTime", Reason: "must be in the future"}
	}

	return s.create(ctx, reminder.Draft{
		Message:       msg,
		ScheduledTime: at,
		Category:      reminder.CategoryCustom,
	})
}

// PlanResult reports what CreateFromGoal did.
type PlanResult struct {
	Goal                 string
	TimeframeDays        int
	Strategy             string
	RecommendedTimeframe string
	Source               reminder.Source
	Created              []reminder.Record
	Failures             []ItemFailure
	Rejected             int
	Duplicates           int
	// GatewayErr is why the AI plan was not used, when the gateway failed.
	GatewayErr error
}

// CreateFromGoal expands goal into a plan over timeframeText and creates
// every draft through the manual creation path. Individual failures are
// collected in the result; when nothing was created a *BatchError is returned.
// A storage failure stops the batch and is returned with the partial result.
func (s *Service) CreateFromGoal(ctx context.Context, goal, timeframeText string) (*PlanResult, error) {
	goal, err := reminder.ValidateMessage("goal", goal)
	if err != nil {
		return nil, err
	}
	hint := strings.TrimSpace(timeframeText)
	if hint == "" {
		return nil, &reminder.ValidationError{Field: "timeframe", Reason: "must not be empty"}
	}

	days := timeframe.Parse(hint)
	result := &PlanResult{Goal: goal, TimeframeDays: days}

	var candidates []reminder.Candidate
	if s.gateway != nil {
		ai, err := s.gateway.RequestCandidates(ctx, goal, hint)
		if err != nil {
			result.GatewayErr = err
			s.logger.Warn().Err(err).Msg("AI plan unavailable, using template")
		} else {
			candidates = ai.Candidates
			result.Strategy = ai.Strategy
			result.RecommendedTimeframe = ai.RecommendedTimeframe
		}
	}

	plan := s.generator.Generate(goal, days, candidates)
	result.Source = plan.Source
	result.Rejected = plan.Rejected
	result.Duplicates = plan.Duplicates
	if plan.Source == reminder.SourceFallback {
		result.Strategy = plan.Strategy
	}

	for _, d := range plan.Drafts {
		rec, err := s.create(ctx, d)
		if err != nil {
			result.Failures = append(result.Failures, ItemFailure{
				Message:       d.Message,
				ScheduledTime: d.ScheduledTime,
				Err:           err,
			})

			var storageErr *reminder.StorageError
			if errors.As(err, &storageErr) {
				return result, err
			}
			continue
		}
		result.Created = append(result.Created, *rec)
	}

	s.logger.Info().
		Str("source", string(plan.Source)).
		Int("days", days).
		Int("created", len(result.Created)).
		Int("failed", len(result.Failures)).
		Msg("goal plan created")

	if len(result.Created) == 0 {
		return result, &BatchError{Failures: result.Failures}
	}
	return result, nil
}

// create schedules the notification first and persists only on success.
func (s *Service) create(ctx context.Context, d reminder.Draft) (*reminder.Record, error) {
	handle, err := s.schedule(ctx, d.Message, d.ScheduledTime)
	if err != nil {
		return nil, err
	}

	rec := reminder.Record{
		ID:                 uuid.NewString(),
		Message:            d.Message,
		ScheduledTime:      d.ScheduledTime,
		NotificationHandle: handle,
		IsActive:           true,
		Category:           d.Category,
		CreatedAt:          s.now(),
		Goal:               d.Goal,
		IsAIGenerated:      d.IsAIGenerated,
	}

	if err := s.store.Add(ctx, rec); err != nil {
		s.cancelQuietly(ctx, handle)
		return nil, err
	}

	s.logger.Debug().Str("id", rec.ID).Time("at", rec.ScheduledTime).Msg("reminder created")
	return &rec, nil
}

// Cancel deactivates a reminder and its notification. Cancelling an
// inactive reminder succeeds without doing anything.
func (s *Service) Cancel(ctx context.Context, id string) error {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !rec.IsActive {
		return nil
	}

	if rec.NotificationHandle != "" {
		if err := s.cancelNotification(ctx, rec.NotificationHandle); err != nil {
			return fmt.Errorf("failed to cancel notification: %w", err)
		}
	}

	rec.IsActive = false
	rec.NotificationHandle = ""
	return s.store.Update(ctx, *rec)
}

// Delete removes a reminder. Its notification is cancelled best effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.NotificationHandle != "" {
		s.cancelQuietly(ctx, rec.NotificationHandle)
	}
	return s.store.Delete(ctx, id)
}

// ClearAll cancels every notification and removes every reminder.
func (s *Service) ClearAll(ctx context.Context) error {
	err := bounded.Do(ctx, s.notifyTimeout, s.scheduler.CancelAll)
	if err != nil {
		return fmt.Errorf("failed to cancel notifications: %w", err)
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("all reminders cleared")
	return nil
}

func (s *Service) title(ctx context.Context) string {
	if s.settings == nil {
		return s.defaultTitle
	}
	prefs, err := s.settings.Load(ctx)
	if err != nil || prefs.Notifications.Title == "" {
		return s.defaultTitle
	}
	return prefs.Notifications.Title
}

// schedule calls the notifier under the notify timeout. Every failure comes
// back as a *notify.SchedulingError.
func (s *Service) schedule(ctx context.Context, body string, at time.Time) (string, error) {
	title := s.title(ctx)
	handle, err := bounded.Call(ctx, s.notifyTimeout, func(ctx context.Context) (string, error) {
		return s.scheduler.Schedule(ctx, title, body, at)
	})
	if err != nil {
		var schedErr *notify.SchedulingError
		if errors.As(err, &schedErr) {
			return "", err
		}
		return "", &notify.SchedulingError{Kind: notify.KindPlatform, Err: err}
	}
	return handle, nil
}

func (s *Service) cancelNotification(ctx context.Context, handle string) error {
	return bounded.Do(ctx, s.notifyTimeout, func(ctx context.Context) error {
		return s.scheduler.Cancel(ctx, handle)
	})
}

func (s *Service) cancelQuietly(ctx context.Context, handle string) {
	if err := s.cancelNotification(ctx, handle); err != nil {
		s.logger.Warn().Err(err).Str("handle", handle).Msg("failed to cancel notification")
	}
}
