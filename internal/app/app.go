// Package app wires configuration, storage, notifications and the AI
// gateway into a motivation.Service for the binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/notexe/motivator/internal/api"
	"github.com/notexe/motivator/internal/config"
	"github.com/notexe/motivator/internal/gateway"
	"github.com/notexe/motivator/internal/kv"
	"github.com/notexe/motivator/internal/motivation"
	"github.com/notexe/motivator/internal/notify"
	"github.com/notexe/motivator/internal/reminder"
	"github.com/notexe/motivator/internal/settings"
)

// App holds the wired components. Close releases them.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	KV        kv.Store
	Settings  *settings.Service
	Gateway   *gateway.Gateway
	Scheduler *notify.Local
	Service   *motivation.Service
}

// LoadDotEnv loads the first .env found next to the executable, its parent
// directory or the working directory. A missing file is not an error.
func LoadDotEnv() string {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append([]string{filepath.Join(filepath.Dir(dir), ".env"), filepath.Join(dir, ".env")}, paths...)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if godotenv.Load(p) == nil {
				return p
			}
		}
	}
	return ""
}

// New builds every component from cfg. Console notifications are written to consoleOut.
func New(cfg *config.Config, logger zerolog.Logger, consoleOut io.Writer) (*App, error) {
	store, err := kv.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	settingsSvc := settings.New(store, cfg.StorageTimeout(), logger)

	providers := gateway.Keyed(settingsSvc.APIKey, func(apiKey string) (api.Provider, error) {
		return api.NewProvider(cfg.GetProviderConfig(apiKey))
	})
	gw := gateway.New(providers, settingsSvc, gateway.Options{
		Model:       cfg.Model.Name,
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
		Timeout:     cfg.AITimeout(),
		Language:    cfg.AI.Language,
	}, logger)

	var sender notify.Sender
	switch cfg.Notify.Sender {
	case config.SenderTelegram:
		sender = notify.NewTelegramSender(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	default:
		sender = notify.NewConsoleSender(consoleOut, cfg.UI.ColoredOutput)
	}
	// Timers ask the service whether their reminder is still active, since
	// another process may have cancelled it in the shared store.
	var svc *motivation.Service
	scheduler := notify.NewLocal(sender, notify.LocalOptions{
		Allowed: settingsSvc.NotificationsEnabled,
		Owner:   cfg.Notify.Owner,
		Deliverable: func(ctx context.Context, handle string) bool {
			return svc.Deliverable(ctx, handle)
		},
	}, logger)

	svc = motivation.New(motivation.Deps{
		Store:         reminder.NewStore(store, cfg.StorageTimeout(), logger),
		Scheduler:     scheduler,
		Gateway:       gw,
		Settings:      settingsSvc,
		Logger:        logger,
		NotifyTimeout: cfg.NotifyTimeout(),
		Title:         cfg.Notify.Title,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		KV:        store,
		Settings:  settingsSvc,
		Gateway:   gw,
		Scheduler: scheduler,
		Service:   svc,
	}, nil
}

// Start migrates legacy data, reschedules notifications lost with the
// previous process and starts the periodic sync when enabled. The syncer
// stops with ctx.
func (a *App) Start(ctx context.Context) error {
	if n, err := a.Service.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate legacy reminders: %w", err)
	} else if n > 0 {
		a.Logger.Info().Int("count", n).Msg("legacy reminders migrated")
	}

	if !a.Config.Sync.Enabled {
		if _, err := a.Service.Sync(ctx); err != nil {
			return fmt.Errorf("failed to sync notifications: %w", err)
		}
		return nil
	}

	// Run syncs once immediately, which restores the timers of this process.
	syncer := motivation.NewSyncer(a.Service, a.Config.SyncInterval(), a.Logger)
	go func() {
		if err := syncer.Run(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("syncer stopped")
		}
	}()
	return nil
}

func (a *App) Close() error {
	if err := a.Scheduler.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to stop notification timers")
	}
	return a.KV.Close()
}
