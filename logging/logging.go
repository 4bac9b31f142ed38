// Package logging builds the process logger
// The terminal owns stdout, so logs go to a file and are discarded unless debug is on
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultDir      = "logs"
	DefaultFileName = "gridshooter.log"
	// MaxLogSize triggers rotation of an existing log file at startup
	MaxLogSize = 10 * 1024 * 1024
)

// Config selects level and destination
type Config struct {
	Debug bool   `toml:"debug"`
	Level string `toml:"level"`
	Dir   string `toml:"dir"`
}

// DefaultConfig returns logging disabled, debug level when enabled
func DefaultConfig() Config {
	return Config{Level: "debug", Dir: DefaultDir}
}

// Logger pairs the zap logger with its file so main can close it on exit
type Logger struct {
	*zap.Logger
	file *os.File
	path string
}

// Path is the log file path, empty when logging is disabled
func (l *Logger) Path() string { return l.path }

// Close flushes and closes the log file
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// New returns a Nop logger when debug is off, otherwise a JSON logger appending to Dir/DefaultFileName
func New(cfg Config) (*Logger, error) {
	if !cfg.Debug {
		return &Logger{Logger: zap.NewNop()}, nil
	}
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create dir: %w", err)
	}
	path := filepath.Join(cfg.Dir, DefaultFileName)
	if err := rotate(path, time.Now()); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(f), parseLevel(cfg.Level))
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return &Logger{Logger: logger, file: f, path: path}, nil
}

// rotate renames an oversized log to a timestamped name
func rotate(path string, now time.Time) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("logging: stat: %w", err)
	}
	if info.Size() <= MaxLogSize {
		return nil
	}
	ext := filepath.Ext(path)
	rotated := fmt.Sprintf("%s.%s%s", path[:len(path)-len(ext)], now.Format("20060102-150405"), ext)
	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("logging: rotate: %w", err)
	}
	return nil
}

func parseLevel(level string) zap.AtomicLevel {
	switch level {
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
}
