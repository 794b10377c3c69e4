package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"provider": "deepseek",
		"deepseek": map[string]interface{}{
			"api_key": "",
		},
		"ollama": map[string]interface{}{
			"base_url": "http://localhost:11434",
			"timeout":  120,
		},
		"gemini": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://generativelanguage.googleapis.com",
			"timeout":  60,
		},
		"model": map[string]interface{}{
			"name":        "deepseek-chat",
			"max_tokens":  2048,
			"temperature": 0.7,
		},
		"ai": map[string]interface{}{
			"timeout":  30,
			"language": "en",
		},
		"storage": map[string]interface{}{
			"driver":  "sqlite",
			"path":    "~/.motivator/motivator.db",
			"timeout": 5,
		},
		"notify": map[string]interface{}{
			"sender":  "console",
			"title":   "💪 Motivation",
			"timeout": 10,
			"owner":   "",
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"sync": map[string]interface{}{
			"enabled":  true,
			"interval": 900,
		},
		"ui": map[string]interface{}{
			"colored_output":  true,
			"show_timestamps": false,
			"history_file":    "~/.motivator/history",
		},
		"log": map[string]interface{}{
			"level": "info",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.motivator/config.yaml"
}
