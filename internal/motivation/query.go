package motivation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/notexe/motivator/internal/reminder"
	"github.com/notexe/motivator/internal/timeframe"
)

const (
	DefaultUpcomingHours = 24
	// MaxUpcomingHours bounds the window to the longest plan.
	MaxUpcomingHours = timeframe.MaxDays * 24
)

// List returns every reminder ordered by scheduled time.
func (s *Service) List(ctx context.Context) ([]reminder.Record, error) {
	return s.filter(ctx, func(reminder.Record, time.Time) bool { return true })
}

// ListActive returns reminders that are active and not yet due.
func (s *Service) ListActive(ctx context.Context) ([]reminder.Record, error) {
	return s.filter(ctx, func(r reminder.Record, now time.Time) bool { return r.Live(now) })
}

// ListByGoal returns the reminders produced for goal, compared case-insensitively.
func (s *Service) ListByGoal(ctx context.Context, goal string) ([]reminder.Record, error) {
	goal = strings.TrimSpace(goal)
	return s.filter(ctx, func(r reminder.Record, _ time.Time) bool {
		return strings.EqualFold(r.Goal, goal)
	})
}

func (s *Service) ListByCategory(ctx context.Context, c reminder.Category) ([]reminder.Record, error) {
	return s.filter(ctx, func(r reminder.Record, _ time.Time) bool { return r.Category == c })
}

// Upcoming returns live reminders due within the next hours.
// A non-positive value selects DefaultUpcomingHours and larger values are
// capped at MaxUpcomingHours.
func (s *Service) Upcoming(ctx context.Context, hours int) ([]reminder.Record, error) {
	if hours <= 0 {
		hours = DefaultUpcomingHours
	}
	hours = min(hours, MaxUpcomingHours)
	return s.filter(ctx, func(r reminder.Record, now time.Time) bool {
		return r.Live(now) && !r.ScheduledTime.After(now.Add(time.Duration(hours)*time.Hour))
	})
}

func (s *Service) filter(ctx context.Context, keep func(reminder.Record, time.Time) bool) ([]reminder.Record, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := records[:0]
	for _, r := range records {
		if keep(r, now) {
			out = append(out, r)
		}
	}
	reminder.SortRecords(out)
	return out, nil
}

// Stats summarises the stored reminders.
type Stats struct {
	Total      int                       `json:"total"`
	Active     int                       `json:"active"`
	Expired    int                       `json:"expired"`
	Cancelled  int                       `json:"cancelled"`
	ByCategory map[reminder.Category]int `json:"byCategory"`
	ByGoal     map[string]int            `json:"byGoal"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	st := &Stats{
		Total:      len(records),
		ByCategory: make(map[reminder.Category]int),
		ByGoal:     make(map[string]int),
	}
	for _, r := range records {
		switch {
		case !r.IsActive:
			st.Cancelled++
		case r.Expired(now):
			st.Expired++
		default:
			st.Active++
		}
		st.ByCategory[r.Category]++
		if r.Goal != "" {
			st.ByGoal[r.Goal]++
		}
	}
	return st, nil
}

// Resolve finds the reminder whose id starts with prefix, so front ends can
// accept the short ids they display.
func (s *Service) Resolve(ctx context.Context, prefix string) (*reminder.Record, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, &reminder.ValidationError{Field: "id", Reason: "must not be empty"}
	}

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	var match *reminder.Record
	for i := range records {
		if records[i].ID == prefix {
			return &records[i], nil
		}
		if strings.HasPrefix(records[i].ID, prefix) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
			}
			match = &records[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", reminder.ErrNotFound, prefix)
	}
	return match, nil
}
