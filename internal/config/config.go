package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Provider type constants (duplicated from api package to avoid import cycle)
const (
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
	ProviderGemini   = "gemini"
)

// Storage drivers (mirrors kv package constants).
const (
	StorageSQLite = "sqlite"
	StorageBolt   = "bolt"
	StorageMemory = "memory"
)

// Notification senders.
const (
	SenderConsole  = "console"
	SenderTelegram = "telegram"
)

// EnvPrefix marks environment variables that override config keys.
// MOTIVATOR_STORAGE__DRIVER sets storage.driver.
const EnvPrefix = "MOTIVATOR_"

type Config struct {
	Provider string         `koanf:"provider"`
	DeepSeek DeepSeekConfig `koanf:"deepseek"`
	Ollama   OllamaConfig   `koanf:"ollama"`
	Gemini   GeminiConfig   `koanf:"gemini"`
	Model    ModelConfig    `koanf:"model"`
	AI       AIConfig       `koanf:"ai"`
	Storage  StorageConfig  `koanf:"storage"`
	Notify   NotifyConfig   `koanf:"notify"`
	Sync     SyncConfig     `koanf:"sync"`
	UI       UIConfig       `koanf:"ui"`
	Log      LogConfig      `koanf:"log"`
}

type DeepSeekConfig struct {
	APIKey string `koanf:"api_key"`
}

type OllamaConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type GeminiConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type ModelConfig struct {
	Name        string  `koanf:"name"`
	MaxTokens   int     `koanf:"max_tokens"`
	Temperature float64 `koanf:"temperature"`
}

type AIConfig struct {
	Timeout  int    `koanf:"timeout"`  // Seconds to wait for a plan before falling back
	Language string `koanf:"language"` // Default reply language when settings have none
}

type StorageConfig struct {
	Driver  string `koanf:"driver"`
	Path    string `koanf:"path"`
	Timeout int    `koanf:"timeout"` // Seconds
}

type NotifyConfig struct {
	Sender   string         `koanf:"sender"`
	Title    string         `koanf:"title"`
	Timeout  int            `koanf:"timeout"` // Seconds
	Owner    string         `koanf:"owner"`   // Handle prefix, one per process sharing a store
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type SyncConfig struct {
	Enabled  bool `koanf:"enabled"`
	Interval int  `koanf:"interval"` // Seconds between reconciliation passes
}

type UIConfig struct {
	ColoredOutput  bool   `koanf:"colored_output"`
	ShowTimestamps bool   `koanf:"show_timestamps"`
	HistoryFile    string `koanf:"history_file"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Well-known variables shared with other tools
	for envName, key := range map[string]string{
		"DEEPSEEK_API_KEY":   "deepseek.api_key",
		"GEMINI_API_KEY":     "gemini.api_key",
		"TELEGRAM_BOT_TOKEN": "notify.telegram.bot_token",
		"TELEGRAM_CHAT_ID":   "notify.telegram.chat_id",
	} {
		if v := os.Getenv(envName); v != "" {
			k.Set(key, v)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.UI.HistoryFile = expandPath(cfg.UI.HistoryFile)

	return &cfg, nil
}

// envKey maps MOTIVATOR_NOTIFY__TELEGRAM__CHAT_ID to notify.telegram.chat_id.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderDeepSeek, ProviderGemini:
		// The key may also come from the stored app settings, so it is checked at call time.
	case ProviderOllama:
		if c.Ollama.BaseURL == "" {
			c.Ollama.BaseURL = "http://localhost:11434"
		}
	default:
		return fmt.Errorf("unknown provider: %s (supported: %s, %s, %s)",
			c.Provider, ProviderDeepSeek, ProviderOllama, ProviderGemini)
	}

	if c.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}

	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	switch c.Storage.Driver {
	case StorageSQLite, StorageBolt:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", c.Storage.Driver)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver: %s (supported: %s, %s, %s)",
			c.Storage.Driver, StorageSQLite, StorageBolt, StorageMemory)
	}

	if strings.Contains(c.Notify.Owner, ":") {
		return fmt.Errorf("notify.owner must not contain ':'")
	}

	switch c.Notify.Sender {
	case SenderConsole:
	case SenderTelegram:
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("telegram sender needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
	default:
		return fmt.Errorf("unknown notification sender: %s (supported: %s, %s)",
			c.Notify.Sender, SenderConsole, SenderTelegram)
	}

	if c.AI.Timeout <= 0 || c.Storage.Timeout <= 0 || c.Notify.Timeout <= 0 {
		return fmt.Errorf("ai, storage and notify timeouts must be positive")
	}

	if c.Sync.Enabled && c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}

	return nil
}

func (c *Config) AITimeout() time.Duration      { return seconds(c.AI.Timeout) }
func (c *Config) StorageTimeout() time.Duration { return seconds(c.Storage.Timeout) }
func (c *Config) NotifyTimeout() time.Duration  { return seconds(c.Notify.Timeout) }
func (c *Config) SyncInterval() time.Duration   { return seconds(c.Sync.Interval) }

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// ProviderConfig contains provider-specific configuration for the API package.
type ProviderConfig struct {
	Type     string
	DeepSeek DeepSeekConfig
	Ollama   OllamaConfig
	Gemini   GeminiConfig
	Model    ModelSettings
}

// ModelSettings contains model parameters used by all providers.
type ModelSettings struct {
	Name        string
	MaxTokens   int
	Temperature float64
}

// GetProviderConfig returns the provider configuration for the API package.
// apiKey, when set, overrides the configured key of the selected provider;
// it comes from the stored app settings.
func (c *Config) GetProviderConfig(apiKey string) *ProviderConfig {
	pc := &ProviderConfig{
		Type:     c.Provider,
		DeepSeek: c.DeepSeek,
		Ollama:   c.Ollama,
		Gemini:   c.Gemini,
		Model: ModelSettings{
			Name:        c.Model.Name,
			MaxTokens:   c.Model.MaxTokens,
			Temperature: c.Model.Temperature,
		},
	}
	if apiKey != "" {
		switch c.Provider {
		case ProviderDeepSeek:
			pc.DeepSeek.APIKey = apiKey
		case ProviderGemini:
			pc.Gemini.APIKey = apiKey
		}
	}
	return pc
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
