package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// Flag to track if JSON output is enabled
	JSONOutput bool
	// Shared by every core so SetLevel applies without rebuilding the logger
	atomicLevel = zap.NewAtomicLevel()
)

// Defaults for the rotating log file
const (
	DefaultLogFile    = "/app/logs/watcher.log"
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 5
)

// Options configures the global logger.
type Options struct {
	Level      string // LOG_LEVEL style name, see ParseLevel
	File       string // Rotating log file; empty disables file output
	MaxSizeMB  int    // Rotation threshold (default 10 MB)
	MaxBackups int    // Rotated files kept (default 5)
	JSON       bool   // JSON console output instead of human-readable
}

func init() {
	// Initialize with a safe no-op logger at package load time
	// This prevents nil pointer panics if logger is used before Initialize() is called
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger: console output on stdout plus,
// when opts.File is set, a size-rotated plain-text file.
func Initialize(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	JSONOutput = opts.JSON
	atomicLevel.SetLevel(level)

	cores := []zapcore.Core{newConsoleCore(opts.JSON, atomicLevel)}

	if opts.File != "" {
		fileCore, err := newFileCore(opts, atomicLevel)
		if err != nil {
			return err
		}
		cores = append(cores, fileCore)
	}

	Logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	return nil
}

func newConsoleCore(jsonOutput bool, level zapcore.LevelEnabler) zapcore.Core {
	var encoder zapcore.Encoder
	if jsonOutput {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
}

// newFileCore creates a zap core for file logging without colors
func newFileCore(opts Options, level zapcore.LevelEnabler) (zapcore.Core, error) {
	// lumberjack creates the file lazily; make the directory failure visible now
	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, err
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}

	writer := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder // No color codes in files
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(writer), level), nil
}

// SetLevel changes the level of the running logger
func SetLevel(name string) error {
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	atomicLevel.SetLevel(level)
	return nil
}

// Level returns the current log level
func Level() zapcore.Level {
	return atomicLevel.Level()
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		Logger.Sync()
	}
}

// Infow logs an info message with structured fields
func Infow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, keysAndValues...)
	}
}

// Errorw logs an error message with structured fields
func Errorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Errorw(msg, keysAndValues...)
	}
}

// Warnw logs a warning message with structured fields
func Warnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, keysAndValues...)
	}
}

// Debugw logs a debug message with structured fields
func Debugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, keysAndValues...)
	}
}
