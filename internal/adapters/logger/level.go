package logger_adapter

import (
	"log/slog"
	"strings"
)

// ParseLevel переводит строку из конфигурации в уровень slog. Неизвестные значения - info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
