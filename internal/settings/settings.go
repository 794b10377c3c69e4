// Package settings stores the user's app settings (API key, notification and
// AI preferences) as one JSON document in the kv store.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/motivator/internal/bounded"
	"github.com/notexe/motivator/internal/kv"
)

// StorageKey is the kv key holding the settings document.
const StorageKey = "app_settings"

const (
	DefaultTitle    = "💪 Motivation"
	DefaultLanguage = "en"
)

type NotificationPreferences struct {
	Enabled bool   `json:"enabled"`
	Title   string `json:"title"`
}

type AIPreferences struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Language string `json:"language"`
}

type AppSettings struct {
	APIKey        string                  `json:"apiKey"`
	Notifications NotificationPreferences `json:"notificationPreferences"`
	AI            AIPreferences           `json:"aiPreferences"`
}

// Defaults returns the settings used for any field never saved.
func Defaults() AppSettings {
	return AppSettings{
		Notifications: NotificationPreferences{Enabled: true, Title: DefaultTitle},
		AI:            AIPreferences{Language: DefaultLanguage},
	}
}

// Service loads and saves AppSettings.
type Service struct {
	kv      kv.Store
	timeout time.Duration
	logger  zerolog.Logger

	mu sync.Mutex
}

func New(backend kv.Store, timeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		kv:      backend,
		timeout: timeout,
		logger:  logger.With().Str("component", "settings").Logger(),
	}
}

// Load returns the stored settings merged over Defaults.
func (s *Service) Load(ctx context.Context) (AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) (AppSettings, error) {
	out := Defaults()

	raw, err := bounded.Call(ctx, s.timeout, func(ctx context.Context) ([]byte, error) {
		return s.kv.Get(ctx, StorageKey)
	})
	if errors.Is(err, kv.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Warn().Err(err).Msg("stored settings are unreadable, using defaults")
		return Defaults(), nil
	}
	if out.Notifications.Title == "" {
		out.Notifications.Title = DefaultTitle
	}
	if out.AI.Language == "" {
		out.AI.Language = DefaultLanguage
	}
	return out, nil
}

// Save replaces the stored settings.
func (s *Service) Save(ctx context.Context, settings AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, settings)
}

func (s *Service) save(ctx context.Context, settings AppSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	err = bounded.Do(ctx, s.timeout, func(ctx context.Context) error {
		return s.kv.Put(ctx, StorageKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Update applies fn to the current settings and saves the result.
func (s *Service) Update(ctx context.Context, fn func(*AppSettings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}
	fn(&current)
	return s.save(ctx, current)
}

// SetAPIKey stores the LLM API key. An empty key removes it.
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if err := s.Update(ctx, func(a *AppSettings) { a.APIKey = key }); err != nil {
		return err
	}
	s.logger.Info().Bool("set", key != "").Msg("api key updated")
	return nil
}

// APIKey returns the stored key, or "" when none is saved or the store fails.
func (s *Service) APIKey(ctx context.Context) string {
	a, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not read api key")
		return ""
	}
	return a.APIKey
}

// NotificationsEnabled reports the notification preference. Store failures
// read as enabled so a flaky store does not silently drop reminders.
func (s *Service) NotificationsEnabled(ctx context.Context) bool {
	a, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not read notification preference")
		return true
	}
	return a.Notifications.Enabled
}
