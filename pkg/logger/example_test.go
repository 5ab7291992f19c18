package logger_test

import (
	"errors"
	"os"

	"github.com/wonny/ipo-scorecard/pkg/config"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.NewWithWriter(cfg, os.Stderr)

	log.Debug("This won't appear (level is info)")
	log.Info("Application started")
	log.Infof("Read %d pages of PDF", 12)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.NewWithWriter(cfg, os.Stderr).WithComponent("analyze")

	log.WithFields(map[string]interface{}{
		"file_id": "9f86d081",
		"bytes":   1048576,
	}).Info("Saved uploaded PDF")

	log.WithError(errors.New("disk full")).Warn("Failed to write cache")
}
