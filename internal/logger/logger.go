package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var defaultLogger *logrus.Logger

// Initialize sets up the global logger with the specified level and format ("json" or "text").
func Initialize(level, format string) {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	defaultLogger = l
}

// Get returns the default logger
func Get() *logrus.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}

func Debugf(format string, args ...any) {
	Get().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	Get().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	Get().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	Get().Errorf(format, args...)
}

func Fatalf(format string, args ...any) {
	Get().Fatalf(format, args...)
}
