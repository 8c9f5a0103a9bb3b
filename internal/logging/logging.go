// ABOUTME: Logger setup shared by all commands
// ABOUTME: Streams to stderr, optionally tees into a log file
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options control where log lines go
type Options struct {
	Verbose bool

	// File, when set, receives a copy of every line
	File string

	// Quiet keeps lines off the terminal, e.g. while the TUI owns it
	Quiet bool

	// Console is the terminal stream; defaults to os.Stderr
	Console io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the standard logrus logger. The returned closer flushes
// and closes the log file.
func Setup(opts Options) (io.Closer, error) {
	logger := logrus.StandardLogger()

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	level := logrus.InfoLevel
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	if opts.Quiet {
		console = io.Discard
	}

	if opts.File == "" {
		logger.SetOutput(console)
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(opts.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	if opts.Quiet {
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.MultiWriter(console, f))
	}
	return f, nil
}
