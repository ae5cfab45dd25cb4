package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger handles leveled logging to the console with optional rotating
// file output.
type Logger struct {
	Verbose bool

	mu      sync.Mutex
	sugar   *zap.SugaredLogger
	console zapcore.Core
	rotator *lumberjack.Logger
	quiet   atomic.Bool
}

// New creates a new Logger instance
func New(verbose bool) *Logger {
	l := &Logger{Verbose: verbose}
	l.console = l.consoleCore()
	l.sugar = zap.New(l.console).Sugar()
	return l
}

func (l *Logger) consoleCore() zapcore.Core {
	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      bracketLevel,
		ConsoleSeparator: " ",
	}

	stdout := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		if lvl >= zapcore.ErrorLevel || l.quiet.Load() {
			return false
		}
		return lvl >= zapcore.InfoLevel || l.Verbose
	})
	stderr := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	return zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stdout), stdout),
		zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), stderr),
	)
}

// bracketLevel prints "[LEVEL]" before every message except plain info.
func bracketLevel(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if lvl != zapcore.InfoLevel {
		enc.AppendString("[" + lvl.CapitalString() + "]")
	}
}

// SetFileLog enables logging to a rotating file. The file always receives
// debug output, even when the logger is not verbose.
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	l.rotator = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
	}

	fileCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(l.rotator), zapcore.DebugLevel)

	l.sugar = zap.New(zapcore.NewTee(l.console, fileCore)).Sugar()
	return nil
}

// SetQuiet suppresses non-error console output while another component owns
// the screen. File logging is unaffected.
func (l *Logger) SetQuiet(quiet bool) {
	l.quiet.Store(quiet)
}

// Close flushes and closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.sugar.Sync()
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

func (l *Logger) logger() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sugar
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger().Infof(format, args...)
}

// Debug logs detailed messages; they reach the console only in verbose mode
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger().Debugf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger().Warnf(format, args...)
}

// Error logs error messages to stderr
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger().Errorf(format, args...)
}
