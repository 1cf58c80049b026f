package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"storage": map[string]interface{}{
			"backend":      BackendSQLite,
			"sqlite_path":  "~/.pilltime/pilltime.db",
			"postgres_dsn": "",
			"redis_url":    "redis://localhost:6379/0",
			"redis_prefix": "pilltime:",
		},
		"alert": map[string]interface{}{
			"interval":     "60s",
			"lead":         "60s",
			"window":       "300s",
			"snooze":       "5m",
			"missed_after": "60m",
		},
		"timezone": "Local",
		"log": map[string]interface{}{
			"level":  "info",
			"format": "console",
		},
		"telegram": map[string]interface{}{
			"enabled":   false,
			"bot_token": "",
			"chat_id":   0,
			"endpoint":  "",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}
