package motivation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/motivator/internal/bounded"
	"github.com/notexe/motivator/internal/notify"
)

// SyncReport counts what one reconciliation pass did.
type SyncReport struct {
	Checked     int `json:"checked"`
	Rescheduled int `json:"rescheduled"`
	Failed      int `json:"failed"`
}

// Sync schedules a notification again for every live reminder whose handle
// is missing from the scheduler. Past reminders are left alone, as are
// reminders whose handle another process owns. Running it twice in a row
// reschedules nothing the second time.
func (s *Service) Sync(ctx context.Context) (*SyncReport, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	handles, err := bounded.Call(ctx, s.notifyTimeout, s.scheduler.ListScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled notifications: %w", err)
	}
	scheduled := make(map[string]bool, len(handles))
	for _, h := range handles {
		scheduled[h] = true
	}

	owner, _ := s.scheduler.(notify.Owner)

	now := s.now()
	report := &SyncReport{}

	for _, r := range records {
		if !r.Live(now) {
			continue
		}
		if r.NotificationHandle != "" && owner != nil && !owner.Owns(r.NotificationHandle) {
			continue
		}
		report.Checked++

		if r.NotificationHandle != "" && scheduled[r.NotificationHandle] {
			continue
		}

		handle, err := s.schedule(ctx, r.Message, r.ScheduledTime)
		if err != nil {
			report.Failed++
			s.logger.Warn().Err(err).Str("id", r.ID).Msg("failed to reschedule reminder")
			continue
		}

		r.NotificationHandle = handle
		if err := s.store.Update(ctx, r); err != nil {
			report.Failed++
			s.cancelQuietly(ctx, handle)
			s.logger.Warn().Err(err).Str("id", r.ID).Msg("failed to save new notification handle")
			continue
		}
		report.Rescheduled++
	}

	s.logger.Info().
		Int("checked", report.Checked).
		Int("rescheduled", report.Rescheduled).
		Int("failed", report.Failed).
		Msg("sync finished")
	return report, nil
}

// Deliverable reports whether handle still belongs to an active reminder.
// It runs at fire time, when the reminder is due, so expiry is not checked.
// Store errors answer true so a reminder is never lost to a failed read.
func (s *Service) Deliverable(ctx context.Context, handle string) bool {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("handle", handle).Msg("failed to check notification, delivering")
		return true
	}
	for _, r := range records {
		if r.NotificationHandle == handle {
			return r.IsActive
		}
	}
	return false
}

// Syncer runs Sync on an interval.
type Syncer struct {
	svc      *Service
	interval time.Duration
	logger   zerolog.Logger
}

func NewSyncer(svc *Service, interval time.Duration, logger zerolog.Logger) *Syncer {
	return &Syncer{
		svc:      svc,
		interval: interval,
		logger:   logger.With().Str("component", "syncer").Logger(),
	}
}

// Run blocks and syncs immediately and then on every interval.
// It exits when ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", s.interval)
	}

	s.logger.Info().Dur("interval", s.interval).Msg("syncer started")

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("syncer stopping")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Syncer) tick(ctx context.Context) {
	if _, err := s.svc.Sync(ctx); err != nil {
		s.logger.Error().Err(err).Msg("sync failed")
	}
}
