// Package logging builds the logrus loggers handed to every component.
//
// There is no package-level logger: callers construct one with New and pass
// it (or a component logger derived from it) down explicitly.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	// Verbose enables debug output.
	Verbose bool

	// Out receives log output. Defaults to os.Stderr.
	Out io.Writer

	// File, when set, is opened in append mode and receives a copy of the output.
	File string
}

// New creates a logger writing text lines with full timestamps.
//
// The returned close function releases the log file, if one was opened.
func New(opts Options) (*logrus.Logger, func() error, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	closeFn := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(out, f)
		closeFn = f.Close
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger, closeFn, nil
}

// Discard returns a logger that drops everything. Useful in tests and
// for callers that report through callbacks only.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// WithComponent tags a logger with a component field.
func WithComponent(logger logrus.FieldLogger, component string) logrus.FieldLogger {
	if logger == nil {
		logger = Discard()
	}
	return logger.WithField("component", component)
}
