package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. An empty level means info.
func New(level string, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	trimmed := strings.TrimSpace(level)
	if trimmed == "" {
		trimmed = "info"
	}
	parsed, err := logrus.ParseLevel(trimmed)
	if err != nil {
		return nil, err
	}
	log.SetLevel(parsed)
	return log, nil
}

// OrDefault returns log, or a fresh logrus logger when log is nil.
func OrDefault(log *logrus.Logger) *logrus.Logger {
	if log == nil {
		return logrus.New()
	}
	return log
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
