// Package logger builds the process-wide slog logger on top of
// charmbracelet/log handlers.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmLog "github.com/charmbracelet/log"

	"turnkit/pkg/config"
)

const (
	defaultFormat = "text"
	defaultLevel  = "info"
)

// New builds a logger from config, with TURNKIT_LOG_* env overrides on top.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	return newWithWriter(cfg, os.Stderr)
}

func newWithWriter(cfg config.LoggingConfig, writer io.Writer) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if value := strings.TrimSpace(os.Getenv("TURNKIT_LOG_FORMAT")); value != "" {
		format = strings.ToLower(value)
	}
	if format == "" {
		format = defaultFormat
	}

	var formatter charmLog.Formatter
	switch format {
	case "text":
		formatter = charmLog.TextFormatter
	case "json":
		formatter = charmLog.JSONFormatter
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	addSource := cfg.AddSource
	if env := strings.TrimSpace(os.Getenv("TURNKIT_LOG_ADD_SOURCE")); env != "" {
		addSource = parseBool(env)
	}

	handler := charmLog.NewWithOptions(writer, charmLog.Options{
		Level:           level,
		ReportTimestamp: true,
		ReportCaller:    addSource,
		Formatter:       formatter,
	})

	return slog.New(handler), nil
}

func parseLevel(input string) (charmLog.Level, error) {
	levelText := strings.ToLower(strings.TrimSpace(input))
	if value := strings.TrimSpace(os.Getenv("TURNKIT_LOG_LEVEL")); value != "" {
		levelText = strings.ToLower(value)
	}
	if levelText == "" {
		levelText = defaultLevel
	}

	switch levelText {
	case "debug":
		return charmLog.DebugLevel, nil
	case "info":
		return charmLog.InfoLevel, nil
	case "warn", "warning":
		return charmLog.WarnLevel, nil
	case "error":
		return charmLog.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unsupported log level %q", levelText)
	}
}

func parseBool(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
