package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/motivator/internal/bounded"
	"github.com/notexe/motivator/internal/kv"
)

const (
	// StorageKey holds the whole reminder collection as one JSON array.
	StorageKey = "motivations"
	// LegacyStorageKey is where older releases kept the collection.
	LegacyStorageKey = "reminders"

	DefaultStorageTimeout = 5 * time.Second
)

// Store keeps the reminder collection in a single kv entry. Every mutation
// loads the array, changes it in memory and writes it back under mu.
type Store struct {
	kv      kv.Store
	timeout time.Duration
	logger  zerolog.Logger

	mu sync.Mutex
}

// NewStore wraps backend. A non-positive timeout selects DefaultStorageTimeout.
func NewStore(backend kv.Store, timeout time.Duration, logger zerolog.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultStorageTimeout
	}
	return &Store{
		kv:      backend,
		timeout: timeout,
		logger:  logger.With().Str("component", "store").Logger(),
	}
}

// LoadAll returns every stored record. A missing collection is an empty list.
func (s *Store) LoadAll(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	records, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(records, id); i >= 0 {
		return &records[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add appends r to the collection.
func (s *Store) Add(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(records, r.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
	}
	records = append(records, r)
	if err := s.save(ctx, records); err != nil {
		return err
	}
	s.logger.Debug().Str("id", r.ID).Int("total", len(records)).Msg("record added")
	return nil
}

// Update replaces the stored record carrying r.ID. Only the notification
// handle, the active flag and the goal may change, and a cancelled record
// stays cancelled.
func (s *Store) Update(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(records, r.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}
	if err := checkUpdate(records[i], r); err != nil {
		return err
	}
	records[i] = r
	return s.save(ctx, records)
}

func checkUpdate(old, updated Record) error {
	switch {
	case !old.ScheduledTime.Equal(updated.ScheduledTime):
		return fmt.Errorf("%w: scheduledTime", ErrImmutable)
	case old.Message != updated.Message:
		return fmt.Errorf("%w: message", ErrImmutable)
	case old.Category != updated.Category:
		return fmt.Errorf("%w: category", ErrImmutable)
	case !old.CreatedAt.Equal(updated.CreatedAt):
		return fmt.Errorf("%w: createdAt", ErrImmutable)
	case !old.IsActive && updated.IsActive:
		return fmt.Errorf("%w: %s", ErrReactivate, old.ID)
	}
	return nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	records = append(records[:i], records[i+1:]...)
	return s.save(ctx, records)
}

// Clear drops the whole collection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := bounded.Do(ctx, s.timeout, func(ctx context.Context) error {
		return s.kv.Delete(ctx, StorageKey)
	})
	if err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}

// legacyRecord accepts both the current field names and the old dateTime one.
type legacyRecord struct {
	Record
	DateTime *time.Time `json:"dateTime,omitempty"`
}

// MigrateLegacy moves records from LegacyStorageKey to StorageKey when only
// the legacy entry exists. It returns the number of records migrated.
func (s *Store) MigrateLegacy(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(ctx, StorageKey); err == nil {
		return 0, nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return 0, &StorageError{Op: "load", Err: err}
	}

	raw, err := s.get(ctx, LegacyStorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, &StorageError{Op: "load legacy", Err: err}
	}

	var legacy []legacyRecord
	if err := json.Unmarshal(raw, &legacy); err != nil {
		s.logger.Warn().Err(err).Msg("dropping undecodable legacy reminders")
		return 0, s.dropLegacy(ctx)
	}

	records := make([]Record, 0, len(legacy))
	for _, l := range legacy {
		r := l.Record
		if r.ScheduledTime.IsZero() && l.DateTime != nil {
			r.ScheduledTime = *l.DateTime
		}
		if r.ID == "" || r.ScheduledTime.IsZero() {
			s.logger.Warn().Str("id", r.ID).Msg("skipping incomplete legacy reminder")
			continue
		}
		if r.Category == "" {
			r.Category = CategoryCustom
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = r.ScheduledTime
		}
		records = append(records, r)
	}

	if err := s.save(ctx, records); err != nil {
		return 0, err
	}
	if err := s.dropLegacy(ctx); err != nil {
		return len(records), err
	}
	s.logger.Info().Int("count", len(records)).Msg("migrated legacy reminders")
	return len(records), nil
}

func (s *Store) dropLegacy(ctx context.Context) error {
	err := bounded.Do(ctx, s.timeout, func(ctx context.Context) error {
		return s.kv.Delete(ctx, LegacyStorageKey)
	})
	if err != nil {
		return &StorageError{Op: "delete legacy", Err: err}
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	return bounded.Call(ctx, s.timeout, func(ctx context.Context) ([]byte, error) {
		return s.kv.Get(ctx, key)
	})
}

func (s *Store) load(ctx context.Context) ([]Record, error) {
	raw, err := s.get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *Store) save(ctx context.Context, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	err = bounded.Do(ctx, s.timeout, func(ctx context.Context) error {
		return s.kv.Put(ctx, StorageKey, data)
	})
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

func indexOf(records []Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
