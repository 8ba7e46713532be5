// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
)

// Setup creates a logrus logger configured per cfg: level, JSON or text
// formatting, and the output destination.
func Setup(cfg *config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	switch cfg.Output {
	case "stderr":
		logger.SetOutput(os.Stderr)
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log output is \"file\" but file_path is empty")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(f)
	default:
		logger.SetOutput(os.Stdout)
	}

	logger.SetReportCaller(cfg.IncludeCaller)
	return logger, nil
}
