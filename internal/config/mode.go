package config

import (
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

// Mode selects development or production output.
type Mode string

const (
	// ModeDevelopment prefixes links with the output directory name and renders drafts.
	ModeDevelopment Mode = "development"
	// ModeProduction uses root-relative links and excludes drafts.
	ModeProduction Mode = "production"
)

var modeNormalizer = normalization.NewNormalizer("mode", map[string]Mode{
	"dev":         ModeDevelopment,
	"development": ModeDevelopment,
	"prod":        ModeProduction,
	"production":  ModeProduction,
}, ModeDevelopment)

// ParseMode accepts dev, development, prod or production in any case.
// Blank input is development.
func ParseMode(raw string) (Mode, error) {
	return modeNormalizer.Parse(raw)
}

// ModeFromEnv interprets the ENV variable: PROD (any case) or production
// selects production, anything else development.
func ModeFromEnv(value string) Mode {
	return modeNormalizer.Normalize(value)
}

// IsProduction reports whether m is production.
func (m Mode) IsProduction() bool { return m == ModeProduction }

// IncludeDrafts reports whether draft records are rendered.
func (m Mode) IncludeDrafts() bool { return !m.IsProduction() }

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel returns the level for raw, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel converts the level for slog handlers.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
