package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger with additional methods
type Logger struct {
	zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level   string
	Pretty  bool
	Service string
	Version string
}

// New creates a new structured logger
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var output io.Writer
	if cfg.Pretty {
		// Pretty output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	} else {
		// JSON output for production
		output = os.Stdout
	}

	l := zerolog.New(output).
		With().
		Timestamp().
		Str("service", cfg.Service).
		Str("version", cfg.Version).
		Logger()

	return &Logger{l}, nil
}

// NewDefault creates a logger with default configuration
func NewDefault(service string) *Logger {
	cfg := Config{
		Level:   getEnv("LOG_LEVEL", "info"),
		Pretty:  getEnv("LOG_PRETTY", "false") == "true",
		Service: service,
		Version: getEnv("APP_VERSION", "dev"),
	}

	l, err := New(cfg)
	if err != nil {
		fallback := log.With().Str("service", service).Logger()
		return &Logger{fallback}
	}
	return l
}

// WithField adds a single contextual field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	nl := l.With().Interface(key, value).Logger()
	return &Logger{nl}
}

// WithError adds an error to the logger context
func (l *Logger) WithError(err error) *Logger {
	nl := l.With().Err(err).Logger()
	return &Logger{nl}
}

// WithStage adds the pipeline stage name to the logger context
func (l *Logger) WithStage(stage string) *Logger {
	nl := l.With().Str("stage", stage).Logger()
	return &Logger{nl}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Global logger instance
var globalLogger *Logger

// InitDefault initializes the global logger with defaults
func InitDefault(service string) {
	globalLogger = NewDefault(service)
}

// Get returns the global logger instance
func Get() *Logger {
	if globalLogger == nil {
		InitDefault("projectlens")
	}
	return globalLogger
}

// Info logs an info message
func Info(msg string) {
	Get().Info().Msg(msg)
}

// Warn logs a warning message
func Warn(msg string) {
	Get().Warn().Msg(msg)
}

// Error logs an error message
func Error(msg string) {
	Get().Error().Msg(msg)
}

// Fatal logs a fatal message and exits
func Fatal(msg string) {
	Get().Fatal().Msg(msg)
}

// WithField creates a logger with a single contextual field
func WithField(key string, value interface{}) *Logger {
	return Get().WithField(key, value)
}

// WithError creates a logger with an error context
func WithError(err error) *Logger {
	return Get().WithError(err)
}
