package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/teranos/docwatcher/errors"
)

// Verbosity level constants for CLI flag counts (-v, -vv).
// A non-zero verbosity overrides the configured LOG_LEVEL.
const (
	VerbosityConfigured = 0 // No flags: use LOG_LEVEL
	VerbosityInfo       = 1 // -v
	VerbosityDebug      = 2 // -vv
)

// ParseLevel maps a LOG_LEVEL name to a zap level.
//
// Accepts zap names (debug, info, warn, error) in any case, the empty string
// (info), and the loguru names the service historically used:
//
//	TRACE    -> debug
//	SUCCESS  -> info
//	WARNING  -> warn
//	CRITICAL -> error
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "INFO", "SUCCESS":
		return zapcore.InfoLevel, nil
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, nil
	case "ERROR", "CRITICAL", "FATAL":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, errors.Newf("unknown log level %q (use debug, info, warning, error)", name)
}

// LevelForVerbosity returns the level name to use given the configured
// level and the -v flag count.
func LevelForVerbosity(configured string, verbosity int) string {
	switch {
	case verbosity >= VerbosityDebug:
		return "debug"
	case verbosity == VerbosityInfo:
		return "info"
	default:
		return configured
	}
}
