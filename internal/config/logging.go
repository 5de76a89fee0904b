package config

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/openbge-client/internal/domain"
)

// NewLogger builds the process logger. Output goes to stderr so that the
// stdio MCP transport keeps stdout to itself.
func NewLogger(cfg domain.LoggingConfig) *logrus.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg domain.LoggingConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
