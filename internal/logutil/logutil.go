package logutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/viper"
)

type loggerConfig struct {
	Level     string
	Format    string
	AddSource bool
	File      string
}

// LoggerFromViper builds the process logger from the logging.* keys. The
// returned closer flushes the optional log file and is never nil.
func LoggerFromViper() (*slog.Logger, io.Closer, error) {
	cfg := loggerConfig{
		Level:     viper.GetString("logging.level"),
		Format:    viper.GetString("logging.format"),
		AddSource: viper.GetBool("logging.add_source"),
		File:      viper.GetString("logging.file"),
	}
	if !viper.IsSet("logging.level") && viper.GetBool("trace") {
		cfg.Level = "debug"
	}
	return newLoggerFromConfig(cfg, os.Stderr)
}

func newLoggerFromConfig(cfg loggerConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := parseSlogLevel(cfg.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text":
		h = slog.NewTextHandler(stderr, opts)
	case "json":
		h = slog.NewJSONHandler(stderr, opts)
	default:
		return nil, nopCloser{}, fmt.Errorf("unknown logging.format: %s", cfg.Format)
	}

	path := strings.TrimSpace(cfg.File)
	if path == "" {
		return slog.New(h), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nopCloser{}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("open logging.file: %w", err)
	}
	// The file always gets JSON so it can be shipped as is.
	fileHandler := slog.NewJSONHandler(f, opts)
	return slog.New(slogmulti.Fanout(h, fileHandler)), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func parseSlogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown logging.level: %s", s)
	}
}
