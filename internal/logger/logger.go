// Package logger provides structured logging for the sirix engine
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with sirix-specific functionality
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	// Set global log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Pretty printing for development
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	// Create logger
	zlog := zerolog.New(output).
		With().
		Timestamp().
		Str("service", "sirixd").
		Logger()

	// Add caller information if requested
	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info logs an info message
func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) *zerolog.Event {
	return l.zlog.Debug().Str("msg", msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) *zerolog.Event {
	return l.zlog.Warn().Str("msg", msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string) *zerolog.Event {
	return l.zlog.Fatal().Str("msg", msg)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// CacheLogger returns a logger scoped to the two-tier page cache.
func (l *Logger) CacheLogger(tier string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "cache").
			Str("tier", tier).
			Logger(),
	}
}

// VersioningLogger returns a logger scoped to a versioning strategy.
func (l *Logger) VersioningLogger(strategy string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "versioning").
			Str("strategy", strategy).
			Logger(),
	}
}

// EngineLogger returns a logger scoped to engine-level orchestration.
func (l *Logger) EngineLogger(operation string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "engine").
			Str("operation", operation).
			Logger(),
	}
}

// LogFold logs a fold (combine_for_read/combine_for_modify) with structured fields.
func (l *Logger) LogFold(strategy, operation string, fragmentCount int, duration time.Duration, err error) {
	event := l.zlog.Debug().
		Str("component", "versioning").
		Str("strategy", strategy).
		Str("operation", operation).
		Int("fragment_count", fragmentCount).
		Dur("duration_ms", duration)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "versioning").
			Str("strategy", strategy).
			Str("operation", operation).
			Int("fragment_count", fragmentCount).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("fold completed")
}

// LogDrain logs a second-tier drain with structured fields.
func (l *Logger) LogDrain(pageCount int, duration time.Duration, err error) {
	event := l.zlog.Debug().
		Str("component", "cache").
		Str("operation", "drain_to_secondary").
		Int("page_count", pageCount).
		Dur("duration_ms", duration)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "cache").
			Str("operation", "drain_to_secondary").
			Int("page_count", pageCount).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("drain to second tier completed")
}

// LogEngineStart logs engine startup
func (l *Logger) LogEngineStart(strategy string, revsToRestore, nodeCount int) {
	l.zlog.Info().
		Str("event", "engine_start").
		Str("strategy", strategy).
		Int("revs_to_restore", revsToRestore).
		Int("node_count", nodeCount).
		Msg("sirix engine starting")
}

// LogEngineReady logs when the engine is ready to accept transactions
func (l *Logger) LogEngineReady() {
	l.zlog.Info().
		Str("event", "engine_ready").
		Msg("sirix engine ready")
}

// LogEngineShutdown logs engine shutdown
func (l *Logger) LogEngineShutdown() {
	l.zlog.Info().
		Str("event", "engine_shutdown").
		Msg("sirix engine shutting down")
}

// Global logger instance
var globalLogger *Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg Config) {
	globalLogger = NewLogger(cfg)
	log.Logger = *globalLogger.GetZerolog()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		// Initialize with defaults if not set
		InitGlobalLogger(Config{
			Level:  "info",
			Pretty: true,
		})
	}
	return globalLogger
}
