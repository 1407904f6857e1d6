package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// global is the shared logger instance used throughout the application.
	global *zap.SugaredLogger

	// defaultLevel is the minimum log level for messages to be processed.
	defaultLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() {
	SetLogger(New(defaultLevel))
}

// New creates a *zap.SugaredLogger writing console-formatted lines to
// stderr: ISO-8601 timestamp, severity, the install-nginx identity, then
// the message. User-facing output goes through the ui package instead;
// everything diagnostic goes here.
func New(level zapcore.LevelEnabler, options ...zap.Option) *zap.SugaredLogger {
	if level == nil {
		level = defaultLevel
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})

	core := zapcore.NewCore(
		encoder,
		zapcore.AddSync(os.Stderr),
		level,
	)

	return zap.New(core, options...).Named("install-nginx").Sugar()
}

// ParseLevel converts string input to a zap log level.
func ParseLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Level returns the current logging level of the global logger.
func Level() zapcore.Level {
	return defaultLevel.Level()
}

// SetLevel sets the log level for the global logger.
func SetLevel(level zapcore.Level) {
	defaultLevel.SetLevel(level)
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return global
}

// SetLogger sets the global logger. Not thread-safe; call at startup.
func SetLogger(l *zap.SugaredLogger) {
	global = l
}

// Debugf writes a formatted debug level message.
func Debugf(format string, args ...any) {
	global.Debugf(format, args...)
}

// Infof writes a formatted info level message.
func Infof(format string, args ...any) {
	global.Infof(format, args...)
}

// Warnf writes a formatted warning level message.
func Warnf(format string, args ...any) {
	global.Warnf(format, args...)
}

// Errorf writes a formatted error level message.
func Errorf(format string, args ...any) {
	global.Errorf(format, args...)
}

// InfoKV writes a message and key-value pairs at the info level.
func InfoKV(message string, kvs ...any) {
	global.Infow(message, kvs...)
}

// ErrorKV writes a message and key-value pairs at the error level.
func ErrorKV(message string, kvs ...any) {
	global.Errorw(message, kvs...)
}
